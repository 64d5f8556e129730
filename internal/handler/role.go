package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/newswire/internal/rbac"
	"github.com/iliyamo/newswire/internal/repository"
)

// RoleHandler implements role selection and publishing house membership.
type RoleHandler struct {
	Members    *repository.MemberRepo
	Publishers *repository.PublisherRepo
}

func NewRoleHandler(m *repository.MemberRepo, p *repository.PublisherRepo) *RoleHandler {
	if m == nil || p == nil {
		panic("nil repository passed to NewRoleHandler")
	}
	return &RoleHandler{Members: m, Publishers: p}
}

// ChooseRole handles POST /v1/roles. It creates the profile row for the
// requested role. Reader is additive, but the three operating roles are
// mutually exclusive: a user who already operates as one of them cannot
// pick another. Selecting publisher also creates the publishing house.
func (h *RoleHandler) ChooseRole(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	role := rbac.Role(strings.ToUpper(strings.TrimSpace(body.Role)))
	if !rbac.ValidRole(string(role)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	// Operating exclusivity: picking a second operating role is a conflict,
	// re-picking the one already held is a no-op.
	if role != rbac.RoleReader {
		for _, held := range []rbac.Role{rbac.RoleJournalist, rbac.RoleEditor, rbac.RolePublisher} {
			if actor.Has(held) && held != role {
				return c.JSON(http.StatusConflict, echo.Map{"error": "operating role already selected"})
			}
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch role {
	case rbac.RoleReader:
		err = h.Members.EnsureReader(ctx, uid)
	case rbac.RoleJournalist:
		err = h.Members.EnsureJournalist(ctx, uid)
	case rbac.RoleEditor:
		err = h.Members.EnsureEditor(ctx, uid)
	case rbac.RolePublisher:
		_, err = h.Publishers.EnsureForUser(ctx, uid)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not select role"})
	}
	return c.JSON(http.StatusOK, echo.Map{"role": role})
}

// JoinPublisher handles POST /v1/publishers/join. Journalists and editors
// bind their profile to a house; joining again simply overwrites the
// previous membership.
func (h *RoleHandler) JoinPublisher(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		PublisherID uint64 `json:"publisher_id"`
	}
	if err := c.Bind(&body); err != nil || body.PublisherID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "publisher_id required"})
	}

	if err := rbac.Authorize(actor, rbac.ActionJoinPublisher, rbac.Target{}); err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Publishers.GetByID(ctx, body.PublisherID); err != nil {
		if errors.Is(err, repository.ErrPublisherNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "publisher not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	role := rbac.RoleJournalist
	if !actor.Has(rbac.RoleJournalist) {
		role = rbac.RoleEditor
	}
	if err := h.Members.JoinPublisher(ctx, role, uid, body.PublisherID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "join failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"role": role, "publisher_id": body.PublisherID})
}
