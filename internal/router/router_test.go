package router

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/newswire/internal/handler"
)

// The reset flow lives under the auth group next to register and login;
// callers who cannot log in reach it without a token.
func TestAuthRoutePaths(t *testing.T) {
	e := echo.New()
	RegisterAuth(e, &handler.AuthHandler{}, &handler.ResetHandler{})

	want := []string{
		"/v1/auth/register",
		"/v1/auth/login",
		"/v1/auth/refresh",
		"/v1/auth/logout",
		"/v1/auth/reset-request",
		"/v1/auth/reset-confirm",
	}
	registered := map[string]bool{}
	for _, r := range e.Routes() {
		if r.Method == http.MethodPost {
			registered[r.Path] = true
		}
	}
	for _, path := range want {
		if !registered[path] {
			t.Errorf("POST %s not registered", path)
		}
	}
}
