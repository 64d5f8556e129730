package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/newswire/internal/config"
	"github.com/iliyamo/newswire/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/newswire/internal/middleware" // import middleware for JWT authentication and actor loading
	"github.com/iliyamo/newswire/internal/rbac"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes.  Unauthenticated
// operations live under /v1/auth; the password reset endpoints also live
// there since they are used by callers who cannot log in.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, r *handler.ResetHandler) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (register, login, refresh).  Each of
	// these handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", a.Login)
	// Register a POST endpoint to refresh access tokens at /v1/auth/refresh. This rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Register a POST endpoint to log out using a refresh token.  The handler
	// accepts a JSON body containing a `refresh_token` and invalidates it;
	// no JWT is required.
	g.POST("/logout", a.Logout)

	// Password reset is a two step flow: request mails a single-use link,
	// confirm exchanges the token for a new password.
	g.POST("/reset-request", r.Request)
	g.POST("/reset-confirm", r.Confirm)
}

// RegisterProtected registers every endpoint that requires a valid access
// token.  The JWTAuth middleware validates the token and records the caller's
// user id; LoadActor then reads the caller's current roles and memberships
// from the database so that each request is authorized against live state
// rather than against claims minted at login time.
func RegisterProtected(e *echo.Echo, jwtSecret string, src middleware.ActorSource,
	a *handler.AuthHandler, roles *handler.RoleHandler, posts *handler.PostHandler,
	subs *handler.SubscriptionHandler) {

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.LoadActor(src))

	// Session and identity.
	auth.GET("/me", a.Me)

	// Role selection and publisher membership.
	auth.POST("/roles", roles.ChooseRole)
	auth.POST("/publishers/join", roles.JoinPublisher)

	// Publication workflow.  Drafting is restricted to journalists up front;
	// edit, delete and approve authorize per post inside the handler because
	// the decision depends on who wrote the post and which house owns it.
	auth.POST("/posts", posts.Create, middleware.RequireRole(rbac.RoleJournalist))
	auth.GET("/posts/mine", posts.Mine)
	auth.GET("/posts/:id", posts.Get)
	auth.PATCH("/posts/:id", posts.Update)
	auth.DELETE("/posts/:id", posts.Delete)
	auth.POST("/posts/:id/approve", posts.Approve, middleware.RequireRole(rbac.RoleEditor, rbac.RolePublisher))

	// Subscriptions.
	auth.POST("/subscriptions", subs.Create, middleware.RequireRole(rbac.RoleReader))
	auth.GET("/subscriptions", subs.List)
}

// RegisterPublic registers the unauthenticated browse endpoints: published
// feeds plus the publisher and journalist directories.  Responses are served
// through the Redis read cache when one is configured.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	cached := middleware.NewRedisCache(cacheCfg, rdb)
	// Published feeds, newest first.
	e.GET("/v1/articles", p.Articles, cached)
	e.GET("/v1/newsletters", p.Newsletters, cached)
	// Directories a reader browses before subscribing.
	e.GET("/v1/publishers", p.ListPublishers, cached)
	e.GET("/v1/journalists", p.ListJournalists, cached)
}
