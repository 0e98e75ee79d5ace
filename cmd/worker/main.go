package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghuser/catalog/pkg/cache"
	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/events"
	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/telemetry"
	catalogEvents "github.com/ghuser/catalog/services/catalog/domain/events"
)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	subscriber, err := newSubscriber(cfg, log)
	if err != nil {
		log.Error("failed to setup event subscriber", "transport", cfg.EventTransport, "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer subscriber.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	if err := registerSubscribers(ctx, subscriber, cache.NewItemCache(redisClient), log); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	// subscriber.Close() (via defer) waits for in-flight handlers.
	log.Info("worker stopped")
}

// newSubscriber returns the consumer for the transport selected by EVENT_TRANSPORT.
func newSubscriber(cfg *config.Config, log logger.Logger) (events.Subscriber, error) {
	switch cfg.EventTransport {
	case config.TransportKafka:
		return events.NewKafkaSubscriber(cfg.KafkaBrokerList(), cfg.ServiceName+"-consumer", log), nil
	case config.TransportSQL:
		bus, err := events.NewEventBus(cfg, log)
		if err != nil {
			return nil, err
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("unknown event transport %q", cfg.EventTransport)
	}
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, sub events.Subscriber, evicter nameEvicter, log logger.Logger) error {
	topic := catalogEvents.TopicItemPriceChanged
	errCh, err := sub.Subscribe(ctx, topic, handlePriceChanged(evicter, log))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}

	// Drain subscriber errors in background so the channel never blocks.
	go func() {
		for err := range errCh {
			log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
		}
	}()

	log.Info("event subscribers registered", "topics", []string{topic})
	return nil
}
