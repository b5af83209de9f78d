package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/sanmarcoclinic/portal/internal/admin"
	"github.com/sanmarcoclinic/portal/internal/api/router"
	"github.com/sanmarcoclinic/portal/internal/backend"
	appconfig "github.com/sanmarcoclinic/portal/internal/config"
	"github.com/sanmarcoclinic/portal/internal/login"
	"github.com/sanmarcoclinic/portal/internal/observability/metrics"
	"github.com/sanmarcoclinic/portal/internal/patient"
	"github.com/sanmarcoclinic/portal/internal/session"
	"github.com/sanmarcoclinic/portal/pkg/logging"
)

func main() {
	// .env is for local development only; absence is fine.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic portal",
		"env", cfg.Env,
		"port", cfg.Port,
		"backend", cfg.BackendBaseURL,
	)

	if cfg.SessionSecret == "" {
		logger.Error("SESSION_SECRET is required")
		os.Exit(1)
	}

	portalMetrics := metrics.NewPortalMetrics(nil)

	backendClient, err := backend.New(backend.Config{
		BaseURL: cfg.BackendBaseURL,
		Timeout: cfg.BackendTimeout,
		Logger:  logger,
		Metrics: portalMetrics,
	})
	if err != nil {
		logger.Error("backend client init failed", "error", err)
		os.Exit(1)
	}

	var store session.Store
	switch cfg.SessionStore {
	case "memory":
		store = session.NewMemoryStore()
	default:
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		rdb := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			cancel()
			logger.Error("redis unavailable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		cancel()
		store = session.NewRedisStore(rdb)
	}

	sessions := session.NewManager(store, cfg.SessionSecret, cfg.SessionTTL, cfg.CookieName, cfg.Production(), logger)

	r := router.New(router.Deps{
		Logger:   logger,
		Metrics:  portalMetrics,
		Sessions: sessions,
		Login:    login.NewHandler(backendClient, sessions, logger),
		Patient:  patient.NewHandler(backendClient, logger),
		Admin:    admin.NewHandler(backendClient, logger),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
