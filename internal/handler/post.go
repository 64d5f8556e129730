package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/newswire/internal/model"
	q "github.com/iliyamo/newswire/internal/queue"
	"github.com/iliyamo/newswire/internal/rbac"
	"github.com/iliyamo/newswire/internal/repository"
)

// PostStore is the persistence surface the publication workflow needs. It
// is satisfied by repository.PostRepo; tests substitute an in-memory fake.
type PostStore interface {
	Create(ctx context.Context, p *model.Post) error
	GetByID(ctx context.Context, id uint64) (*model.Post, error)
	UpdateContent(ctx context.Context, id uint64, title, content string) error
	Delete(ctx context.Context, id uint64) error
	Approve(ctx context.Context, id uint64) (bool, error)
	ApprovalInfo(ctx context.Context, id uint64) (journalistName, publisherName string, err error)
	ListByJournalist(ctx context.Context, journalistID uint64) ([]*model.Post, error)
	ListByPublisher(ctx context.Context, publisherID uint64) ([]*model.Post, error)
}

// ApprovalDispatcher hands the publication event off the request path.
// Satisfied by notify.Dispatcher.
type ApprovalDispatcher interface {
	Dispatch(ev q.PostApprovedEvent)
}

// PostHandler implements the publication workflow endpoints. Every
// mutation authorizes through the RBAC engine before touching the store,
// so a denied request leaves no partial writes behind.
type PostHandler struct {
	Posts    PostStore
	Dispatch ApprovalDispatcher
}

func NewPostHandler(posts PostStore, dispatch ApprovalDispatcher) *PostHandler {
	if posts == nil || dispatch == nil {
		panic("nil dependency passed to NewPostHandler")
	}
	return &PostHandler{Posts: posts, Dispatch: dispatch}
}

type postResp struct {
	ID           uint64    `json:"id"`
	Kind         string    `json:"kind"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	JournalistID uint64    `json:"journalist_id"`
	PublisherID  uint64    `json:"publisher_id"`
	Approved     bool      `json:"approved"`
	CreatedAt    time.Time `json:"created_at"`
}

func toPostResp(p *model.Post) postResp {
	return postResp{
		ID: p.ID, Kind: p.Kind, Title: p.Title, Content: p.Content,
		JournalistID: p.JournalistID, PublisherID: p.PublisherID,
		Approved: p.Approved, CreatedAt: p.CreatedAt,
	}
}

// Create handles POST /v1/posts. Only a journalist joined to a house may
// create, and the post always lands under that house; an unjoined
// journalist is rejected with a distinct not-joined condition.
func (h *PostHandler) Create(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Kind    string `json:"kind"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	kind := strings.ToLower(strings.TrimSpace(body.Kind))
	title := strings.TrimSpace(body.Title)
	if !model.ValidPostKind(kind) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post kind"})
	}
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	if err := rbac.Authorize(actor, rbac.ActionCreatePost, rbac.Target{}); err != nil {
		if errors.Is(err, rbac.ErrNotJoined) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not joined to a publisher"})
		}
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	post := &model.Post{
		Kind:         kind,
		Title:        title,
		Content:      body.Content,
		JournalistID: actor.JournalistID,
		PublisherID:  actor.MemberPublisherID,
	}
	if err := h.Posts.Create(ctx, post); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create post"})
	}
	return c.JSON(http.StatusCreated, toPostResp(post))
}

// Update handles PATCH /v1/posts/:id. Only title and content are mutable;
// the approved flag can never be set through an edit. An empty field keeps
// its current value.
func (h *PostHandler) Update(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	post, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	target := rbac.Target{AuthorID: post.JournalistID, PublisherID: post.PublisherID}
	if err := rbac.Authorize(actor, rbac.ActionEditPost, target); err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	title, content := post.Title, post.Content
	if body.Title != nil && strings.TrimSpace(*body.Title) != "" {
		title = strings.TrimSpace(*body.Title)
	}
	if body.Content != nil {
		content = *body.Content
	}
	if err := h.Posts.UpdateContent(ctx, id, title, content); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	post.Title, post.Content = title, content
	return c.JSON(http.StatusOK, toPostResp(post))
}

// Delete handles DELETE /v1/posts/:id. A hard delete: rejection of a draft
// has no state of its own, the reviewer simply removes the post.
func (h *PostHandler) Delete(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	post, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	target := rbac.Target{AuthorID: post.JournalistID, PublisherID: post.PublisherID}
	if err := rbac.Authorize(actor, rbac.ActionDeletePost, target); err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "post removed"})
}

// Approve handles POST /v1/posts/:id/approve. The store performs the
// draft-to-published transition with a conditional update; only the caller
// that actually flipped the flag dispatches the notification event, so two
// concurrent approvals produce exactly one fan-out. Re-approving an
// already published post is an idempotent no-op that returns the current
// state.
func (h *PostHandler) Approve(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	post, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	target := rbac.Target{AuthorID: post.JournalistID, PublisherID: post.PublisherID}
	if err := rbac.Authorize(actor, rbac.ActionApprovePost, target); err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	transitioned, err := h.Posts.Approve(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "approve failed"})
	}
	post.Approved = true

	if transitioned {
		journalist, publisher, err := h.Posts.ApprovalInfo(ctx, id)
		if err != nil {
			// The approval is committed; missing display names only degrade
			// the notification text.
			c.Logger().Warnf("approval info for post %d: %v", id, err)
		}
		h.Dispatch.Dispatch(q.PostApprovedEvent{
			PostID:         post.ID,
			Kind:           post.Kind,
			Title:          post.Title,
			JournalistName: journalist,
			PublisherID:    post.PublisherID,
			PublisherName:  publisher,
			ApprovedAt:     time.Now().UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, toPostResp(post))
}

// Mine handles GET /v1/posts/mine: journalists see their own posts,
// editors and publishers see everything submitted to their house, drafts
// included.
func (h *PostHandler) Mine(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		items []*model.Post
		err   error
	)
	switch {
	case actor.Has(rbac.RoleJournalist) && actor.JournalistID != 0:
		items, err = h.Posts.ListByJournalist(ctx, actor.JournalistID)
	case actor.Has(rbac.RoleEditor) && actor.MemberPublisherID != 0:
		items, err = h.Posts.ListByPublisher(ctx, actor.MemberPublisherID)
	case actor.Has(rbac.RolePublisher) && actor.PublisherID != 0:
		items, err = h.Posts.ListByPublisher(ctx, actor.PublisherID)
	default:
		items = nil
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]postResp, 0, len(items))
	for _, p := range items {
		out = append(out, toPostResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get handles GET /v1/posts/:id. Published posts are visible to every
// authenticated user; drafts only to their author and their house's staff,
// and a draft is reported as not found to everyone else.
func (h *PostHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	post, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !post.Approved {
		actor, ok := actorFrom(c)
		target := rbac.Target{AuthorID: post.JournalistID, PublisherID: post.PublisherID}
		if !ok || (rbac.Authorize(actor, rbac.ActionEditPost, target) != nil &&
			rbac.Authorize(actor, rbac.ActionApprovePost, target) != nil) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
	}
	return c.JSON(http.StatusOK, toPostResp(post))
}
