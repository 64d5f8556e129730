package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/newswire/internal/config"
	"github.com/iliyamo/newswire/internal/model"
	"github.com/iliyamo/newswire/internal/repository"
	"github.com/iliyamo/newswire/internal/utils"
)

type fakeResetUsers struct {
	byEmail map[string]model.User
}

func (f *fakeResetUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

type fakeResetTokens struct {
	tokens    map[string]*model.ResetToken // digest -> token
	nextID    uint64
	passwords map[uint64]string // userID -> last stored hash
}

func newFakeResetTokens() *fakeResetTokens {
	return &fakeResetTokens{tokens: map[string]*model.ResetToken{}, nextID: 1, passwords: map[uint64]string{}}
}

func (f *fakeResetTokens) Store(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	f.tokens[tokenHash] = &model.ResetToken{ID: f.nextID, UserID: userID, TokenHash: tokenHash, ExpiresAt: exp}
	f.nextID++
	return nil
}

func (f *fakeResetTokens) FindActiveByHash(_ context.Context, tokenHash string) (*model.ResetToken, error) {
	tok, ok := f.tokens[tokenHash]
	if !ok || tok.Used {
		return nil, repository.ErrTokenNotFound
	}
	cp := *tok
	return &cp, nil
}

func (f *fakeResetTokens) Consume(_ context.Context, tokenID, userID uint64, newPasswordHash string) error {
	for _, tok := range f.tokens {
		if tok.ID == tokenID {
			if tok.Used {
				return repository.ErrTokenUsed
			}
			tok.Used = true
			f.passwords[userID] = newPasswordHash
			return nil
		}
	}
	return repository.ErrTokenNotFound
}

type fakeSessions struct {
	revokedFor []uint64
}

func (f *fakeSessions) RevokeAllForUser(_ context.Context, userID uint64) error {
	f.revokedFor = append(f.revokedFor, userID)
	return nil
}

type recordingMail struct {
	calls int
	body  string
	to    []string
}

func (m *recordingMail) Send(_ context.Context, _, body string, to []string) error {
	m.calls++
	m.body, m.to = body, to
	return nil
}

func resetFixture() (*ResetHandler, *fakeResetTokens, *fakeSessions, *recordingMail) {
	tokens := newFakeResetTokens()
	sessions := &fakeSessions{}
	mail := &recordingMail{}
	users := &fakeResetUsers{byEmail: map[string]model.User{
		"ada@example.com": {ID: 5, Username: "ada", Email: "ada@example.com"},
	}}
	cfg := config.Config{ResetTTLMin: 30, ResetLinkBase: "http://localhost/reset", BcryptCost: 4}
	return NewResetHandler(cfg, users, tokens, sessions, mail), tokens, sessions, mail
}

func TestResetRequest(t *testing.T) {
	t.Run("known email gets a mail with the link", func(t *testing.T) {
		h, tokens, _, mail := resetFixture()
		c, rec := newRequest(t, http.MethodPost, "/v1/password/reset-request",
			`{"email":"ada@example.com"}`, readerActor())

		if err := h.Request(c); err != nil {
			t.Fatalf("Request: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if mail.calls != 1 {
			t.Fatalf("sent %d mails, want 1", mail.calls)
		}
		if len(tokens.tokens) != 1 {
			t.Fatalf("stored %d tokens, want 1", len(tokens.tokens))
		}
		if !strings.Contains(mail.body, "?token=") {
			t.Errorf("mail body %q carries no reset link", mail.body)
		}
	})

	t.Run("unknown email gets the same answer and no mail", func(t *testing.T) {
		h, tokens, _, mail := resetFixture()
		c, rec := newRequest(t, http.MethodPost, "/v1/password/reset-request",
			`{"email":"nobody@example.com"}`, readerActor())

		if err := h.Request(c); err != nil {
			t.Fatalf("Request: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 for unknown address too", rec.Code)
		}
		if mail.calls != 0 || len(tokens.tokens) != 0 {
			t.Error("unknown address must produce neither mail nor token")
		}
	})
}

func confirmReq(t *testing.T, h *ResetHandler, token, password string) int {
	t.Helper()
	c, rec := newRequest(t, http.MethodPost, "/v1/password/reset-confirm",
		`{"token":"`+token+`","password":"`+password+`"}`, readerActor())
	if err := h.Confirm(c); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	return rec.Code
}

func TestResetConfirm(t *testing.T) {
	issue := func(t *testing.T, tokens *fakeResetTokens, ttlMin int) string {
		t.Helper()
		tok, err := utils.NewResetToken(ttlMin)
		if err != nil {
			t.Fatalf("NewResetToken: %v", err)
		}
		if err := tokens.Store(context.Background(), 5, utils.HashTokenRaw(tok.Raw), tok.Exp); err != nil {
			t.Fatalf("store: %v", err)
		}
		return tok.Raw
	}

	t.Run("valid token updates the password once", func(t *testing.T) {
		h, tokens, _, _ := resetFixture()
		raw := issue(t, tokens, 30)

		if code := confirmReq(t, h, raw, "brand-new-pass"); code != http.StatusOK {
			t.Fatalf("status = %d, want 200", code)
		}
		hash, ok := tokens.passwords[5]
		if !ok || hash == "brand-new-pass" {
			t.Fatalf("password hash not stored or stored in clear: %q", hash)
		}
		if !utils.VerifyPassword(hash, "brand-new-pass") {
			t.Error("stored hash does not verify against the new password")
		}

		// Second use of the same token must fail like an unknown one.
		if code := confirmReq(t, h, raw, "another-pass"); code != http.StatusBadRequest {
			t.Fatalf("replayed token: status = %d, want 400", code)
		}
	})

	t.Run("successful reset ends every refresh session", func(t *testing.T) {
		h, tokens, sessions, _ := resetFixture()
		raw := issue(t, tokens, 30)

		if code := confirmReq(t, h, raw, "brand-new-pass"); code != http.StatusOK {
			t.Fatalf("status = %d, want 200", code)
		}
		if len(sessions.revokedFor) != 1 || sessions.revokedFor[0] != 5 {
			t.Fatalf("revoked sessions for %v, want exactly user 5", sessions.revokedFor)
		}
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		h, tokens, sessions, _ := resetFixture()
		raw := issue(t, tokens, -1)

		if code := confirmReq(t, h, raw, "brand-new-pass"); code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", code)
		}
		if len(sessions.revokedFor) != 0 {
			t.Errorf("sessions revoked on a failed reset: %v", sessions.revokedFor)
		}
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		h, _, _, _ := resetFixture()
		if code := confirmReq(t, h, "bogus", "brand-new-pass"); code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", code)
		}
	})

	t.Run("short password is rejected", func(t *testing.T) {
		h, tokens, _, _ := resetFixture()
		raw := issue(t, tokens, 30)
		if code := confirmReq(t, h, raw, "short"); code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", code)
		}
	})
}
