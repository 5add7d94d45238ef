package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/taskboard-api/internal/config"
	"github.com/dimitrije/taskboard-api/internal/database"
	"github.com/dimitrije/taskboard-api/internal/handlers"
	"github.com/dimitrije/taskboard-api/internal/logger"
	"github.com/dimitrije/taskboard-api/internal/metrics"
	authmw "github.com/dimitrije/taskboard-api/internal/middleware"
	"github.com/dimitrije/taskboard-api/internal/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		Production: cfg.IsProduction(),
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	sessions, closeSessions, err := newSessionStore(ctx, cfg, db, zlog)
	if err != nil {
		zlog.Fatal("failed to set up session store", zap.Error(err))
	}
	defer closeSessions()

	m := metrics.New()
	signer := services.NewSessionSigner(cfg.Session.Secret, cfg.Session.TTL)

	userService := services.NewUserService(db, cfg.BcryptCost)
	teamService := services.NewTeamService(db)
	taskService := services.NewTaskService(db)

	cookie := handlers.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.IsProduction(),
		TTL:    cfg.Session.TTL,
	}

	router := newRouter(routeDeps{
		Users:           handlers.NewUserHandler(userService, sessions, signer, cookie, m, zlog),
		Teams:           handlers.NewTeamHandler(teamService, m, zlog),
		Tasks:           handlers.NewTaskHandler(taskService, m, zlog),
		Health:          handlers.NewHealthHandler(db, zlog),
		Session:         authmw.Session(signer, sessions, cfg.Session.CookieName, zlog),
		OptionalSession: authmw.OptionalSession(signer, sessions, cfg.Session.CookieName, zlog),
		Metrics:         m,
		Logger:          zlog,
		Production:      cfg.IsProduction(),
		CORSOrigin:      cfg.CORSOrigin,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newSessionStore picks the configured backend. The returned func releases
// whatever the store holds open.
func newSessionStore(ctx context.Context, cfg *config.Config, db *database.DB, zlog *zap.Logger) (services.SessionStore, func(), error) {
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		zlog.Info("using redis session store")
		return services.NewRedisSessionStore(client, cfg.Session.TTL), func() { _ = client.Close() }, nil

	case config.SessionStorePostgres:
		store := services.NewPostgresSessionStore(db, cfg.Session.TTL)
		cleanupCtx, cancel := context.WithCancel(ctx)
		go sweepSessions(cleanupCtx, store, zlog)
		zlog.Info("using postgres session store")
		return store, cancel, nil

	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}

func sweepSessions(ctx context.Context, store *services.PostgresSessionStore, zlog *zap.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.CleanupExpired(ctx)
			if err != nil {
				zlog.Warn("failed to remove expired sessions", zap.Error(err))
				continue
			}
			zlog.Debug("expired sessions removed", zap.Int64("count", removed))
		}
	}
}
