package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/newswire/internal/model"
	q "github.com/iliyamo/newswire/internal/queue"
	"github.com/iliyamo/newswire/internal/rbac"
	"github.com/iliyamo/newswire/internal/repository"
)

// fakePostStore keeps posts in a map and records the approve transitions it
// performed, mirroring the conditional-update behavior of the real store.
type fakePostStore struct {
	posts  map[uint64]*model.Post
	nextID uint64
}

func newFakePostStore(seed ...*model.Post) *fakePostStore {
	s := &fakePostStore{posts: map[uint64]*model.Post{}, nextID: 1}
	for _, p := range seed {
		cp := *p
		s.posts[cp.ID] = &cp
		if cp.ID >= s.nextID {
			s.nextID = cp.ID + 1
		}
	}
	return s
}

func (s *fakePostStore) Create(_ context.Context, p *model.Post) error {
	p.ID = s.nextID
	s.nextID++
	p.CreatedAt = time.Now()
	cp := *p
	s.posts[cp.ID] = &cp
	return nil
}

func (s *fakePostStore) GetByID(_ context.Context, id uint64) (*model.Post, error) {
	p, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakePostStore) UpdateContent(_ context.Context, id uint64, title, content string) error {
	p, ok := s.posts[id]
	if !ok {
		return repository.ErrPostNotFound
	}
	p.Title, p.Content = title, content
	return nil
}

func (s *fakePostStore) Delete(_ context.Context, id uint64) error {
	if _, ok := s.posts[id]; !ok {
		return repository.ErrPostNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *fakePostStore) Approve(_ context.Context, id uint64) (bool, error) {
	p, ok := s.posts[id]
	if !ok || p.Approved {
		return false, nil
	}
	p.Approved = true
	return true, nil
}

func (s *fakePostStore) ApprovalInfo(_ context.Context, id uint64) (string, string, error) {
	if _, ok := s.posts[id]; !ok {
		return "", "", repository.ErrPostNotFound
	}
	return "ada", "northern-daily", nil
}

func (s *fakePostStore) ListByJournalist(_ context.Context, journalistID uint64) ([]*model.Post, error) {
	var out []*model.Post
	for _, p := range s.posts {
		if p.JournalistID == journalistID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakePostStore) ListByPublisher(_ context.Context, publisherID uint64) ([]*model.Post, error) {
	var out []*model.Post
	for _, p := range s.posts {
		if p.PublisherID == publisherID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeDispatcher struct {
	events []q.PostApprovedEvent
}

func (d *fakeDispatcher) Dispatch(ev q.PostApprovedEvent) { d.events = append(d.events, ev) }

func journalistActor(joined uint64) rbac.Actor {
	return rbac.Actor{
		UserID:            1,
		Roles:             map[rbac.Role]bool{rbac.RoleReader: true, rbac.RoleJournalist: true},
		JournalistID:      10,
		MemberPublisherID: joined,
	}
}

func editorActor(joined uint64) rbac.Actor {
	return rbac.Actor{
		UserID:            2,
		Roles:             map[rbac.Role]bool{rbac.RoleReader: true, rbac.RoleEditor: true},
		EditorID:          20,
		MemberPublisherID: joined,
	}
}

func readerActor() rbac.Actor {
	return rbac.Actor{UserID: 4, Roles: map[rbac.Role]bool{rbac.RoleReader: true}}
}

// newRequest builds an echo context with the actor preloaded, the way the
// middleware chain would hand it to a protected handler.
func newRequest(t *testing.T, method, target, body string, actor rbac.Actor) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("user_id", actor.UserID)
	c.Set("actor", actor)
	return c, rec
}

func draft(id uint64) *model.Post {
	return &model.Post{
		ID: id, Kind: model.PostKindArticle, Title: "Harbour expansion",
		Content: "body", JournalistID: 10, PublisherID: 100,
	}
}

func TestPostCreate(t *testing.T) {
	t.Run("joined journalist creates under own house", func(t *testing.T) {
		store := newFakePostStore()
		h := NewPostHandler(store, &fakeDispatcher{})
		c, rec := newRequest(t, http.MethodPost, "/v1/posts",
			`{"kind":"article","title":"Harbour expansion","content":"body"}`, journalistActor(100))

		if err := h.Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}
		var got postResp
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.JournalistID != 10 || got.PublisherID != 100 {
			t.Errorf("post attributed to journalist %d / publisher %d, want 10 / 100", got.JournalistID, got.PublisherID)
		}
		if got.Approved {
			t.Error("new post must start as a draft")
		}
	})

	t.Run("unjoined journalist is rejected", func(t *testing.T) {
		h := NewPostHandler(newFakePostStore(), &fakeDispatcher{})
		c, rec := newRequest(t, http.MethodPost, "/v1/posts",
			`{"kind":"article","title":"x"}`, journalistActor(0))

		if err := h.Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "not joined") {
			t.Errorf("body %q should name the not-joined condition", rec.Body.String())
		}
	})

	t.Run("invalid kind is rejected", func(t *testing.T) {
		h := NewPostHandler(newFakePostStore(), &fakeDispatcher{})
		c, rec := newRequest(t, http.MethodPost, "/v1/posts",
			`{"kind":"podcast","title":"x"}`, journalistActor(100))

		if err := h.Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestPostUpdate(t *testing.T) {
	t.Run("missing post is 404", func(t *testing.T) {
		h := NewPostHandler(newFakePostStore(), &fakeDispatcher{})
		c, rec := newRequest(t, http.MethodPatch, "/", `{"title":"new"}`, journalistActor(100))
		c.SetParamNames("id")
		c.SetParamValues("9")

		if err := h.Update(c); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("foreign author is 403 not 404", func(t *testing.T) {
		store := newFakePostStore(draft(1))
		h := NewPostHandler(store, &fakeDispatcher{})
		other := journalistActor(100)
		other.JournalistID = 11
		c, rec := newRequest(t, http.MethodPatch, "/", `{"title":"new"}`, other)
		c.SetParamNames("id")
		c.SetParamValues("1")

		if err := h.Update(c); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("empty patch field keeps current value", func(t *testing.T) {
		store := newFakePostStore(draft(1))
		h := NewPostHandler(store, &fakeDispatcher{})
		c, rec := newRequest(t, http.MethodPatch, "/", `{"content":"rewritten"}`, journalistActor(100))
		c.SetParamNames("id")
		c.SetParamValues("1")

		if err := h.Update(c); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		got, _ := store.GetByID(context.Background(), 1)
		if got.Title != "Harbour expansion" {
			t.Errorf("title changed to %q, want untouched", got.Title)
		}
		if got.Content != "rewritten" {
			t.Errorf("content = %q, want rewritten", got.Content)
		}
	})
}

func TestPostApprove(t *testing.T) {
	t.Run("editor approval dispatches exactly one event", func(t *testing.T) {
		store := newFakePostStore(draft(1))
		disp := &fakeDispatcher{}
		h := NewPostHandler(store, disp)
		c, rec := newRequest(t, http.MethodPost, "/", "", editorActor(100))
		c.SetParamNames("id")
		c.SetParamValues("1")

		if err := h.Approve(c); err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if len(disp.events) != 1 {
			t.Fatalf("dispatched %d events, want 1", len(disp.events))
		}
		ev := disp.events[0]
		if ev.PostID != 1 || ev.JournalistName != "ada" || ev.PublisherName != "northern-daily" {
			t.Errorf("event = %+v, missing identity fields", ev)
		}
	})

	t.Run("re-approval is a no-op without a second event", func(t *testing.T) {
		store := newFakePostStore(draft(1))
		disp := &fakeDispatcher{}
		h := NewPostHandler(store, disp)

		for i := 0; i < 2; i++ {
			c, rec := newRequest(t, http.MethodPost, "/", "", editorActor(100))
			c.SetParamNames("id")
			c.SetParamValues("1")
			if err := h.Approve(c); err != nil {
				t.Fatalf("Approve: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 on every attempt", rec.Code)
			}
		}
		if len(disp.events) != 1 {
			t.Fatalf("dispatched %d events across two approvals, want 1", len(disp.events))
		}
	})

	t.Run("author cannot approve own draft", func(t *testing.T) {
		store := newFakePostStore(draft(1))
		disp := &fakeDispatcher{}
		h := NewPostHandler(store, disp)
		c, rec := newRequest(t, http.MethodPost, "/", "", journalistActor(100))
		c.SetParamNames("id")
		c.SetParamValues("1")

		if err := h.Approve(c); err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		if len(disp.events) != 0 {
			t.Errorf("dispatched %d events on denied approval, want 0", len(disp.events))
		}
	})

	t.Run("editor of another house cannot approve", func(t *testing.T) {
		store := newFakePostStore(draft(1))
		h := NewPostHandler(store, &fakeDispatcher{})
		c, rec := newRequest(t, http.MethodPost, "/", "", editorActor(200))
		c.SetParamNames("id")
		c.SetParamValues("1")

		if err := h.Approve(c); err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})
}

func TestPostGetHidesDrafts(t *testing.T) {
	store := newFakePostStore(draft(1))
	h := NewPostHandler(store, &fakeDispatcher{})

	t.Run("reader sees a draft as missing", func(t *testing.T) {
		c, rec := newRequest(t, http.MethodGet, "/", "", readerActor())
		c.SetParamNames("id")
		c.SetParamValues("1")
		if err := h.Get(c); err != nil {
			t.Fatalf("Get: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("author sees own draft", func(t *testing.T) {
		c, rec := newRequest(t, http.MethodGet, "/", "", journalistActor(100))
		c.SetParamNames("id")
		c.SetParamValues("1")
		if err := h.Get(c); err != nil {
			t.Fatalf("Get: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})
}
