package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/newswire/internal/config"
	"github.com/iliyamo/newswire/internal/model"
	"github.com/iliyamo/newswire/internal/notify"
	"github.com/iliyamo/newswire/internal/repository"
	"github.com/iliyamo/newswire/internal/utils"
)

// ResetUserStore is the slice of the user repository the reset flow needs.
type ResetUserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// ResetTokenStore is satisfied by repository.ResetTokenRepo.
type ResetTokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	FindActiveByHash(ctx context.Context, tokenHash string) (*model.ResetToken, error)
	Consume(ctx context.Context, tokenID, userID uint64, newPasswordHash string) error
}

// SessionRevoker ends a user's refresh sessions. Satisfied by
// repository.TokenRepo.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// ResetHandler implements the password reset flow. Request always answers
// the same way whether or not the email exists, and Confirm collapses
// every failure mode into one generic rejection, so neither endpoint can
// be used to probe for accounts or tokens.
type ResetHandler struct {
	Cfg      config.Config
	Users    ResetUserStore
	Tokens   ResetTokenStore
	Sessions SessionRevoker
	Mail     notify.MailSender
}

func NewResetHandler(cfg config.Config, users ResetUserStore, tokens ResetTokenStore, sessions SessionRevoker, mail notify.MailSender) *ResetHandler {
	if users == nil || tokens == nil || sessions == nil || mail == nil {
		panic("nil dependency passed to NewResetHandler")
	}
	return &ResetHandler{Cfg: cfg, Users: users, Tokens: tokens, Sessions: sessions, Mail: mail}
}

const resetRequestedMsg = "if the address is registered, a reset link has been sent"

// Request handles POST /v1/password/reset-request. Issuing a new token
// does not invalidate earlier ones; each stays usable until spent or
// expired.
func (h *ResetHandler) Request(c echo.Context) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"message": resetRequestedMsg})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	token, err := utils.NewResetToken(h.Cfg.ResetTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}
	if err := h.Tokens.Store(ctx, user.ID, utils.HashTokenRaw(token.Raw), token.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}

	link := fmt.Sprintf("%s?token=%s", h.Cfg.ResetLinkBase, token.Raw)
	bodyText := fmt.Sprintf("A password reset was requested for your account.\r\n\r\n"+
		"Open the link below within %d minutes to choose a new password:\r\n%s\r\n\r\n"+
		"If you did not request this, ignore this message.", h.Cfg.ResetTTLMin, link)
	if err := h.Mail.Send(ctx, "Password reset", bodyText, []string{user.Email}); err != nil {
		// The token is already stored; a mail hiccup must not reveal
		// anything to the caller.
		c.Logger().Warnf("reset mail to user %d: %v", user.ID, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": resetRequestedMsg})
}

// Confirm handles POST /v1/password/reset-confirm. Unknown, expired and
// already spent tokens all produce the same response.
func (h *ResetHandler) Confirm(c echo.Context) error {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}
	if len(body.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	token, err := h.Tokens.FindActiveByHash(ctx, utils.HashTokenRaw(body.Token))
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			// Unknown and spent tokens share the client response, but the
			// log keeps the cases apart.
			c.Logger().Debugf("reset confirm: unknown or spent token digest")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if time.Now().After(token.ExpiresAt) {
		c.Logger().Debugf("reset confirm: expired token %d for user %d", token.ID, token.UserID)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}

	hash, err := utils.HashPassword(body.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update password"})
	}
	if err := h.Tokens.Consume(ctx, token.ID, token.UserID, hash); err != nil {
		if errors.Is(err, repository.ErrTokenUsed) {
			c.Logger().Debugf("reset confirm: token %d already consumed", token.ID)
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update password"})
	}

	// The credential just changed; end every refresh session so a session
	// stolen before the reset cannot outlive it.
	if err := h.Sessions.RevokeAllForUser(ctx, token.UserID); err != nil {
		c.Logger().Warnf("reset confirm: revoke sessions for user %d: %v", token.UserID, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
