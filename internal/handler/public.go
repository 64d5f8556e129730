package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/newswire/internal/model"
	"github.com/iliyamo/newswire/internal/repository"
)

// ApprovedLister exposes the published feed of the post store.
type ApprovedLister interface {
	ListApproved(ctx context.Context, kind string) ([]*model.Post, error)
}

// PublicHandler serves the directory and feed endpoints that need no
// authentication: published articles and newsletters, plus the publisher
// and journalist listings a reader browses before subscribing.
type PublicHandler struct {
	Posts       ApprovedLister
	Publishers  *repository.PublisherRepo
	Journalists *repository.MemberRepo
}

func NewPublicHandler(posts ApprovedLister, publishers *repository.PublisherRepo, journalists *repository.MemberRepo) *PublicHandler {
	if posts == nil || publishers == nil || journalists == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Posts: posts, Publishers: publishers, Journalists: journalists}
}

func (h *PublicHandler) listApproved(c echo.Context, kind string) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Posts.ListApproved(ctx, kind)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]postResp, 0, len(items))
	for _, p := range items {
		out = append(out, toPostResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Articles handles GET /v1/articles: published articles, newest first.
func (h *PublicHandler) Articles(c echo.Context) error {
	return h.listApproved(c, model.PostKindArticle)
}

// Newsletters handles GET /v1/newsletters: published newsletters, newest first.
func (h *PublicHandler) Newsletters(c echo.Context) error {
	return h.listApproved(c, model.PostKindNewsletter)
}

// ListPublishers handles GET /v1/publishers.
func (h *PublicHandler) ListPublishers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Publishers.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListJournalists handles GET /v1/journalists.
func (h *PublicHandler) ListJournalists(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Journalists.ListJournalists(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
