package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cmsmall/internal/auth"
	"cmsmall/internal/config"
	"cmsmall/internal/db"
	"cmsmall/internal/image"
	"cmsmall/internal/message"
	"cmsmall/internal/message/nats"
	"cmsmall/internal/middleware"
	"cmsmall/internal/page"
	"cmsmall/internal/site"
	"cmsmall/internal/user"
	"cmsmall/internal/worker"
	"cmsmall/redis"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const (
	ExitError       = 2
	taskQueueSize   = 256
	taskTimeout     = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

func runMigrate(c *cli.Context) error {
	cfg := config.AppConfig
	if err := db.ConnectDb(cfg); err != nil {
		return cli.Exit(err.Error(), ExitError)
	}
	defer db.CloseDb()

	if err := db.Migrate(db.AppDb); err != nil {
		return cli.Exit(err.Error(), ExitError)
	}
	if c.Bool("seed") {
		if err := db.SeedData(c.Context, db.AppDb); err != nil {
			return cli.Exit(err.Error(), ExitError)
		}
	}
	return nil
}

func runServer(c *cli.Context) error {
	cfg := config.AppConfig
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	if err := db.ConnectDb(cfg); err != nil {
		return cli.Exit(err.Error(), ExitError)
	}
	defer db.CloseDb()

	// Migrate database schema
	if err := db.Migrate(db.AppDb); err != nil {
		return cli.Exit(err.Error(), ExitError)
	}

	// Initialize Redis
	redisClient := redis.InitRedis(c.Context, cfg.RedisAddress)
	if redisClient != nil {
		defer redisClient.Close()
	}
	cache := redis.NewCache(redisClient, "cms:")

	publisher := newPublisher(cfg.NATSURL)
	defer publisher.Close()

	pool := worker.NewPool(cfg.WorkerPoolSize, taskQueueSize, taskTimeout)
	defer pool.Shutdown()
	events := message.NewEmitter(pool, publisher)

	// Initialize repository
	userRepo := user.NewRepository(db.AppDb)
	imageRepo := image.NewRepository(db.AppDb)
	siteRepo := site.NewRepository(db.AppDb)
	pageRepo := page.NewRepository(db.AppDb)
	// Initialize service
	userService := user.NewService(userRepo)
	imageService := image.NewService(imageRepo)
	siteService := site.NewService(siteRepo, cache, cfg.CacheTTL, events)
	pageService := page.NewService(pageRepo, userService, imageService, cache, cfg.CacheTTL, events)

	tokens := auth.NewManager(cfg.JWTSecret, cfg.SessionTTL)
	router := newRouter(routerParams{
		frontendAddress: cfg.FrontendAddress,
		staticDir:       cfg.StaticDir,
		auth:            &middleware.Auth{UserService: userService, Tokens: tokens},
		users:           user.NewHandler(userService, tokens, cfg.Environment == "production"),
		pages:           page.NewHandler(pageService),
		images:          image.NewHandler(imageService),
		site:            site.NewHandler(siteService),
	})

	// Server configuration
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router.Handler(),
	}

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return cli.Exit(fmt.Sprintf("server failed to start: %s", err), ExitError)
	case <-quit:
	}
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	log.Info().Int64("failed_tasks", pool.Failed()).Msg("server shutdown complete")
	return nil
}

// newPublisher connects to NATS when an address is configured. Events are
// dropped when it is not.
func newPublisher(url string) message.Publisher {
	if url == "" {
		log.Info().Msg("NATS_URL not set, page events are not published")
		return message.NewNoopPublisher()
	}
	publisher, err := nats.NewPublisher(url)
	if err != nil {
		log.Warn().Err(err).Msg("nats not available, page events are not published")
		return message.NewNoopPublisher()
	}
	log.Info().Str("url", url).Msg("nats connected")
	return publisher
}
