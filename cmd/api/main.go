package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ghuser/stockledger/pkg/app"
	"github.com/ghuser/stockledger/pkg/cache"
	"github.com/ghuser/stockledger/pkg/config"
	"github.com/ghuser/stockledger/pkg/events"
	"github.com/ghuser/stockledger/pkg/httpx"
	"github.com/ghuser/stockledger/pkg/logger"
	"github.com/ghuser/stockledger/pkg/telemetry"
	inventoryApi "github.com/ghuser/stockledger/services/inventory/application/api"
	inventorySvcs "github.com/ghuser/stockledger/services/inventory/application/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	// Telemetry: OTel tracing + metrics
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional, log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	metrics, err := telemetry.NewInventoryMetrics()
	if err != nil {
		log.Error("failed to register inventory metrics", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}

	eventBus := events.NewEventBus(log)
	defer eventBus.Close() //nolint:errcheck

	var redisClient *cache.RedisClient
	if cfg.Storage == config.StorageRedis {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure
		}
		defer redisClient.Close() //nolint:errcheck
		log.Info("redis connected")
	} else {
		log.Warn("running with in-memory storage, changes are lost on restart")
	}

	authenticator, err := app.NewAuthenticator(cfg)
	if err != nil {
		log.Error("failed to configure role secrets", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	appConfig := &app.Application{
		Config:        cfg,
		Logger:        log,
		EventBus:      eventBus,
		Redis:         redisClient,
		SessionStore:  app.NewSessionStore(cfg, redisClient),
		Authenticator: authenticator,
		Metrics:       metrics,
	}

	if err := inventorySvcs.RegisterSubscribers(ctx, appConfig.EventBus, appConfig.Metrics, log); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	inventory, err := inventorySvcs.New(ctx, appConfig)
	if err != nil {
		log.Error("failed to open inventory ledger", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	items := inventory.Ledger.Items(ctx)
	inventorySvcs.SeedItemCounts(ctx, appConfig.Metrics, items)
	log.Info("inventory ledger loaded", "items", len(items), "storage", cfg.Storage)
	if redisClient != nil && cfg.LedgerRefresh > 0 {
		go inventory.Ledger.Follow(ctx, cfg.LedgerRefresh)
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		},
		httpx.Instrumentation{
			Recovery: logger.Recovery(log),
			Sentry:   telemetry.SentryMiddleware(),
			Tracing:  otelhttp.NewMiddleware(cfg.ServiceName),
			Logger:   logger.Middleware(log),
		},
	)

	checks := httpx.HealthChecks{EventBus: eventBus}
	if redisClient != nil {
		checks.Redis = redisClient
	}
	r.Get("/health", httpx.HealthHandler(checks))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Route("/api", func(r chi.Router) {
		registerRoutes(r, appConfig, inventory)
	})

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("server stopped")
}

// registerRoutes mounts all service routes under /api.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application, inventory *inventorySvcs.Services) {
	inventoryApi.InventoryRoutes(r, a, inventory)
}
