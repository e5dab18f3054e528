package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/centsible/centsible-go/internal/config"
	"github.com/centsible/centsible-go/internal/credstore"
	"github.com/centsible/centsible-go/internal/domain"
	"github.com/centsible/centsible-go/internal/gateway"
	"github.com/centsible/centsible-go/internal/handler"
	"github.com/centsible/centsible-go/internal/infra/cache"
	"github.com/centsible/centsible-go/internal/infra/observability"
	"github.com/centsible/centsible-go/internal/infra/resilience"
	"github.com/centsible/centsible-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "centsible")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	categoryCache := cache.New[[]domain.Category](cfg.CacheTTL)
	defer categoryCache.Stop()

	// --- Credential store & session ---
	var store credstore.Store
	if cfg.TokenStorePath != "" {
		fileStore, err := credstore.NewFile(cfg.TokenStorePath, cfg.TokenStoreSecret)
		if err != nil {
			logger.Fatal("failed to open token store", zap.Error(err))
		}
		store = fileStore
		logger.Info("using sealed file token store", zap.String("path", cfg.TokenStorePath))
	} else {
		store = credstore.NewMemory()
		logger.Info("using in-memory token store")
	}

	session := gateway.NewSession(store)
	session.OnInvalidate(func() {
		logger.Warn("session invalidated, clients must sign in again",
			zap.String("auth_path", cfg.AuthPath),
		)
	})

	// --- Gateway client ---
	readPolicy := gateway.NewPolicy("backend-api", resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	})

	// No transport-wide timeout: the gateway bounds every call with a
	// per-request context, and a client cap would defeat per-call
	// overrides longer than the default.
	httpClient := &http.Client{}
	gw := gateway.NewClient(httpClient, gateway.Config{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.HTTPTimeout,
		ReadPolicy: readPolicy,
	}, session, categoryCache, metrics, logger)

	// --- Services ---
	overviewSvc := service.NewOverview(gw, gw, gw, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(gw, overviewSvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
