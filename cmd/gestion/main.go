package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gestion-users/gestion-users/internal/app"
	"github.com/gestion-users/gestion-users/internal/auth"
	"github.com/gestion-users/gestion-users/internal/observability"
	"github.com/gestion-users/gestion-users/internal/platform/cache"
	"github.com/gestion-users/gestion-users/internal/platform/db"
	"github.com/gestion-users/gestion-users/internal/shared"
	"github.com/gestion-users/gestion-users/internal/users"
	"github.com/gestion-users/gestion-users/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	var store shared.SessionStore
	switch cfg.SessionStore {
	case app.SessionStoreMemory:
		memStore := shared.NewMemorySessionStore()
		go sweepSessions(ctx, logger, memStore, time.Minute)
		store = memStore
	default:
		redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		store = shared.NewRedisSessionStore(redisClient)
	}

	sessionManager := shared.NewSessionManager(store, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	pages, err := view.NewEngine()
	if err != nil {
		logger.Error("load pages", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	authService := auth.NewService(auth.NewRepository(dbpool))
	authHandler := auth.NewHandler(logger, authService, pages, sessionManager, metrics)

	usersService := users.NewService(users.NewRepository(dbpool))
	usersHandler := users.NewHandler(logger, usersService, pages)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		AuthHandler:    authHandler,
		UsersHandler:   usersHandler,
		Metrics:        metrics,
		AccessLog:      true,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("session_store", cfg.SessionStore))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func sweepSessions(ctx context.Context, logger *slog.Logger, store *shared.MemorySessionStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				logger.Debug("expired sessions removed", slog.Int("count", n))
			}
		}
	}
}
