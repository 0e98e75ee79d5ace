package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/catalog/docs/swagger"
	"github.com/ghuser/catalog/pkg/app"
	"github.com/ghuser/catalog/pkg/cache"
	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/database"
	"github.com/ghuser/catalog/pkg/events"
	"github.com/ghuser/catalog/pkg/httpx"
	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/telemetry"
	catalogApi "github.com/ghuser/catalog/services/catalog/application/api"
)

// @title			Catalog API
// @version		1.0
// @description	Catalog inventory service: items, brands, types and stock levels.
// @license.name	MIT
// @license.url	https://opensource.org/licenses/MIT
// @host			localhost:8080
// @BasePath		/api
// @schemes		http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry is optional, log and continue on failure
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}
	defer pool.Close() //nolint:errcheck
	log.Info("database pool connected")

	sink, err := newEventSink(ctx, cfg, log)
	if err != nil {
		log.Error("failed to setup event sink", "transport", cfg.EventTransport, "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer sink.Close() //nolint:errcheck

	publisher := events.NewAsyncPublisher(sink, log, events.AsyncConfig{QueueSize: cfg.EventQueueSize})
	if err := publisher.Start(ctx); err != nil {
		log.Error("failed to start event publisher", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("event publisher started", "transport", cfg.EventTransport, "queue_size", cfg.EventQueueSize)

	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	appConfig := &app.Application{
		Db:     pool,
		Logger: log,
		Events: publisher,
		Redis:  redisClient,
		Cache:  cache.NewItemCache(redisClient),
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		},
		httpx.Middlewares{
			Logger:   logger.Middleware(log),
			Recovery: logger.Recovery(log),
			Sentry:   telemetry.SentryMiddleware(),
			Otel:     otelhttp.NewMiddleware(cfg.ServiceName),
		},
	)

	r.Get("/health", httpx.HealthHandler(
		httpx.HealthCheck{Name: "database", Checker: pool},
		httpx.HealthCheck{Name: "redis", Checker: redisClient},
		httpx.HealthCheck{Name: "events", Checker: publisher},
	))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		registerRoutes(r, appConfig)
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	// Handlers are done; flush queued events before the sink closes.
	if err := publisher.Stop(shutdownCtx); err != nil {
		log.Error("event publisher stopped with pending events", "pending", publisher.Pending(), "error", err)
	}
	log.Info("server stopped")
}

// newEventSink builds the transport selected by EVENT_TRANSPORT. The SQL
// transport writes through the Watermill forwarder outbox, whose daemon is
// started here.
func newEventSink(ctx context.Context, cfg *config.Config, log logger.Logger) (events.Sink, error) {
	switch cfg.EventTransport {
	case config.TransportKafka:
		sink, err := events.NewKafkaSink(cfg.KafkaBrokerList())
		if err != nil {
			return nil, err
		}
		return sink, nil
	case config.TransportSQL:
		bus, err := events.NewEventBusWithForwarder(cfg, log)
		if err != nil {
			return nil, err
		}
		if err := bus.StartForwarder(ctx); err != nil {
			_ = bus.Close()
			return nil, fmt.Errorf("start forwarder: %w", err)
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("unknown event transport %q", cfg.EventTransport)
	}
}

// registerRoutes mounts all service routes under /api.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application) {
	catalogApi.CatalogRoutes(r, a)
}
