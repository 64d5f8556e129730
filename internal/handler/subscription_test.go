package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/iliyamo/newswire/internal/model"
	"github.com/iliyamo/newswire/internal/repository"
)

type fakeSubStore struct {
	rows map[[2]uint64]string // (userID, targetID) -> kind, good enough for tests
}

func newFakeSubStore() *fakeSubStore { return &fakeSubStore{rows: map[[2]uint64]string{}} }

func (s *fakeSubStore) Subscribe(_ context.Context, userID uint64, kind string, targetID uint64) (bool, error) {
	key := [2]uint64{userID, targetID}
	if s.rows[key] == kind {
		return false, nil
	}
	s.rows[key] = kind
	return true, nil
}

func (s *fakeSubStore) ListByUser(_ context.Context, userID uint64) ([]*model.Subscription, error) {
	var out []*model.Subscription
	for key, kind := range s.rows {
		if key[0] == userID {
			out = append(out, &model.Subscription{UserID: userID, Kind: kind, TargetID: key[1]})
		}
	}
	return out, nil
}

type fakePublisherSource struct{ known map[uint64]bool }

func (f *fakePublisherSource) GetByID(_ context.Context, id uint64) (*model.Publisher, error) {
	if !f.known[id] {
		return nil, repository.ErrPublisherNotFound
	}
	return &model.Publisher{ID: id}, nil
}

type fakeJournalistSource struct{ known map[uint64]bool }

func (f *fakeJournalistSource) GetJournalistByID(_ context.Context, id uint64) (*model.Journalist, error) {
	if !f.known[id] {
		return nil, repository.ErrJournalistNotFound
	}
	return &model.Journalist{ID: id}, nil
}

func newSubHandler(store *fakeSubStore) *SubscriptionHandler {
	return NewSubscriptionHandler(store,
		&fakePublisherSource{known: map[uint64]bool{100: true}},
		&fakeJournalistSource{known: map[uint64]bool{10: true}})
}

func TestSubscriptionCreate(t *testing.T) {
	t.Run("both targets in one request", func(t *testing.T) {
		store := newFakeSubStore()
		h := newSubHandler(store)
		c, rec := newRequest(t, http.MethodPost, "/v1/subscriptions",
			`{"publisher_id":100,"journalist_id":10}`, readerActor())

		if err := h.Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}
		if len(store.rows) != 2 {
			t.Errorf("stored %d subscriptions, want 2", len(store.rows))
		}
	})

	t.Run("resubscribe is a no-op", func(t *testing.T) {
		store := newFakeSubStore()
		h := newSubHandler(store)
		for i := 0; i < 2; i++ {
			c, rec := newRequest(t, http.MethodPost, "/v1/subscriptions",
				`{"publisher_id":100}`, readerActor())
			if err := h.Create(c); err != nil {
				t.Fatalf("Create: %v", err)
			}
			if rec.Code != http.StatusCreated {
				t.Fatalf("status = %d, want 201 on every attempt", rec.Code)
			}
		}
		if len(store.rows) != 1 {
			t.Errorf("stored %d subscriptions after duplicate request, want 1", len(store.rows))
		}
	})

	t.Run("no target is 400", func(t *testing.T) {
		h := newSubHandler(newFakeSubStore())
		c, rec := newRequest(t, http.MethodPost, "/v1/subscriptions", `{}`, readerActor())
		if err := h.Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown publisher is 404", func(t *testing.T) {
		h := newSubHandler(newFakeSubStore())
		c, rec := newRequest(t, http.MethodPost, "/v1/subscriptions",
			`{"publisher_id":999}`, readerActor())
		if err := h.Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("actor without reader role is 403", func(t *testing.T) {
		h := newSubHandler(newFakeSubStore())
		actor := editorActor(100)
		delete(actor.Roles, "READER")
		c, rec := newRequest(t, http.MethodPost, "/v1/subscriptions",
			`{"publisher_id":100}`, actor)
		if err := h.Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})
}

func TestSubscriptionList(t *testing.T) {
	store := newFakeSubStore()
	h := newSubHandler(store)
	actor := readerActor()
	if _, err := store.Subscribe(context.Background(), actor.UserID, model.SubscriptionKindPublisher, 100); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, rec := newRequest(t, http.MethodGet, "/v1/subscriptions", "", actor)
	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	got := rec.Body.String()
	if !strings.Contains(got, `"kind":"publisher"`) || !strings.Contains(got, `"target_id":100`) {
		t.Errorf("body %q missing subscription fields", got)
	}
}
