package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/newswire/internal/rbac"
)

// ActorSource assembles the RBAC actor for a user from persisted role and
// membership data. It is satisfied by repository.ActorRepo.
type ActorSource interface {
	Actor(ctx context.Context, userID uint64) (rbac.Actor, error)
}

// LoadActor resolves the authenticated user's actor on every request and
// stores it under the "actor" context key. It must run after JWTAuth. The
// lookup hits the store each time so role evaluation is always a function
// of current persisted data, never of a stale claim or cache.
func LoadActor(src ActorSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, err := contextUserID(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			actor, err := src.Actor(ctx, uid)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load actor failed"})
			}
			c.Set("actor", actor)
			return next(c)
		}
	}
}

// RequireRole aborts the request with 403 unless the loaded actor holds at
// least one of the given roles. It assumes LoadActor ran earlier in the
// chain. Fine-grained, target-scoped decisions stay in rbac.Authorize;
// this gate only keeps obviously unqualified callers out of whole route
// groups.
func RequireRole(roles ...rbac.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := c.Get("actor").(rbac.Actor)
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			for _, r := range roles {
				if actor.Has(r) {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
}

// contextUserID extracts the numeric user id stored by JWTAuth. JWT
// numeric claims decode as float64; string subjects are parsed for
// compatibility with other issuers.
func contextUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}
