package main // Entry point package

import (
	"context"
	"log" // Logging library
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/newswire/internal/config" // Internal config loader
	"github.com/iliyamo/newswire/internal/database"
	"github.com/iliyamo/newswire/internal/handler"
	"github.com/iliyamo/newswire/internal/middleware"
	"github.com/iliyamo/newswire/internal/notify"
	"github.com/iliyamo/newswire/internal/queue"
	"github.com/iliyamo/newswire/internal/repository"
	"github.com/iliyamo/newswire/internal/router" // Internal router setup
	queuepub "github.com/iliyamo/newswire/internal/service"
)

func main() {
	// A missing .env is fine in environments that inject real variables.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	// Seed the role catalogue so membership rows always have a target.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repository.NewRoleRepo(db).EnsureRoles(ctx); err != nil {
		cancel()
		log.Fatalf("seed roles: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	resetTokens := repository.NewResetTokenRepo(db)
	publishers := repository.NewPublisherRepo(db)
	members := repository.NewMemberRepo(db)
	actors := repository.NewActorRepo(db)
	posts := repository.NewPostRepo(db)
	subs := repository.NewSubscriptionRepo(db)

	// Outbound channels degrade to log-only senders when unconfigured, so a
	// bare development box still shows what would have gone out.
	var mail notify.MailSender = notify.LogSender{}
	if cfg.SMTPAddr != "" {
		mail = &notify.SMTPSender{Addr: cfg.SMTPAddr, From: cfg.MailFrom}
	}
	var social notify.SocialPoster = notify.LogPoster{}
	if cfg.SocialWebhookURL != "" {
		social = notify.NewWebhookPoster(cfg.SocialWebhookURL, cfg.SocialToken)
	}
	fanout := notify.NewFanout(subs, mail, social)
	dispatcher := notify.NewDispatcher(queuepub.PublishPostApproved, fanout, 0)

	// The consumer drains the approval queue and performs the same fan-out
	// the dispatcher falls back to when the broker is down.
	go func() {
		if err := queue.StartApprovalConsumer(fanout.PostApproved); err != nil {
			log.Printf("approval consumer stopped: %v", err)
		}
	}()

	authH := handler.NewAuthHandler(cfg, users, tokens)
	resetH := handler.NewResetHandler(cfg, users, resetTokens, tokens, mail)
	roleH := handler.NewRoleHandler(members, publishers)
	postH := handler.NewPostHandler(posts, dispatcher)
	subH := handler.NewSubscriptionHandler(subs, publishers, members)
	publicH := handler.NewPublicHandler(posts, publishers, members)

	e := echo.New() // Create Echo instance
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e) // Register application routes
	router.RegisterAuth(e, authH, resetH)
	router.RegisterProtected(e, cfg.JWTSecret, actors, authH, roleH, postH, subH)
	router.RegisterPublic(e, publicH, config.LoadCacheConfig(), rdb)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
