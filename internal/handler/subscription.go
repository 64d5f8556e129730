package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/newswire/internal/model"
	"github.com/iliyamo/newswire/internal/rbac"
	"github.com/iliyamo/newswire/internal/repository"
)

// SubscriptionStore is satisfied by repository.SubscriptionRepo.
type SubscriptionStore interface {
	Subscribe(ctx context.Context, userID uint64, kind string, targetID uint64) (created bool, err error)
	ListByUser(ctx context.Context, userID uint64) ([]*model.Subscription, error)
}

// PublisherSource resolves publisher ids for target validation.
type PublisherSource interface {
	GetByID(ctx context.Context, id uint64) (*model.Publisher, error)
}

// JournalistSource resolves journalist ids for target validation.
type JournalistSource interface {
	GetJournalistByID(ctx context.Context, id uint64) (*model.Journalist, error)
}

// SubscriptionHandler manages a reader's follow list. A request may name a
// publisher, a journalist, or both at once; each named target becomes its
// own subscription row and re-subscribing is a no-op.
type SubscriptionHandler struct {
	Subs        SubscriptionStore
	Publishers  PublisherSource
	Journalists JournalistSource
}

func NewSubscriptionHandler(subs SubscriptionStore, publishers PublisherSource, journalists JournalistSource) *SubscriptionHandler {
	if subs == nil || publishers == nil || journalists == nil {
		panic("nil dependency passed to NewSubscriptionHandler")
	}
	return &SubscriptionHandler{Subs: subs, Publishers: publishers, Journalists: journalists}
}

// Create handles POST /v1/subscriptions.
func (h *SubscriptionHandler) Create(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := rbac.Authorize(actor, rbac.ActionSubscribe, rbac.Target{}); err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var body struct {
		PublisherID  uint64 `json:"publisher_id"`
		JournalistID uint64 `json:"journalist_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.PublisherID == 0 && body.JournalistID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "publisher_id or journalist_id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp := echo.Map{}
	if body.PublisherID != 0 {
		if _, err := h.Publishers.GetByID(ctx, body.PublisherID); err != nil {
			if errors.Is(err, repository.ErrPublisherNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "publisher not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		created, err := h.Subs.Subscribe(ctx, actor.UserID, model.SubscriptionKindPublisher, body.PublisherID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not subscribe"})
		}
		resp["publisher_created"] = created
	}
	if body.JournalistID != 0 {
		if _, err := h.Journalists.GetJournalistByID(ctx, body.JournalistID); err != nil {
			if errors.Is(err, repository.ErrJournalistNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "journalist not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		created, err := h.Subs.Subscribe(ctx, actor.UserID, model.SubscriptionKindJournalist, body.JournalistID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not subscribe"})
		}
		resp["journalist_created"] = created
	}
	return c.JSON(http.StatusCreated, resp)
}

// List handles GET /v1/subscriptions and returns the caller's follow list.
func (h *SubscriptionHandler) List(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Subs.ListByUser(ctx, actor.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	type subResp struct {
		ID       uint64 `json:"id"`
		Kind     string `json:"kind"`
		TargetID uint64 `json:"target_id"`
	}
	out := make([]subResp, 0, len(items))
	for _, s := range items {
		out = append(out, subResp{ID: s.ID, Kind: s.Kind, TargetID: s.TargetID})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
