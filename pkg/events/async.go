package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/catalog/pkg/logger"
)

// Sink is a transport AsyncPublisher delivers to. EventBus and KafkaSink implement it.
type Sink interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
	Ping(ctx context.Context) error
	Close() error
}

// ErrPublisherStopped is returned by Start on a publisher that was already stopped.
var ErrPublisherStopped = errors.New("events: publisher stopped")

// AsyncConfig tunes an AsyncPublisher. Zero values fall back to the defaults.
type AsyncConfig struct {
	QueueSize      int           // default 1024
	MaxRetries     int           // default 3
	RetryBaseDelay time.Duration // default 1s
}

type publisherState int

const (
	stateIdle publisherState = iota
	stateRunning
	stateStopped
)

type envelope struct {
	span  trace.SpanContext
	topic string
	msg   *message.Message
}

// AsyncPublisher queues events in memory and delivers them to a Sink from a
// single background goroutine. Publish never blocks: when the queue is full or
// the publisher is stopped the event is dropped, logged and counted.
type AsyncPublisher struct {
	sink  Sink
	log   logger.Logger
	cfg   AsyncConfig
	queue chan envelope

	mu     sync.RWMutex
	state  publisherState
	cancel context.CancelFunc
	done   chan struct{}

	published metric.Int64Counter
	dropped   metric.Int64Counter
	failed    metric.Int64Counter
}

// NewAsyncPublisher returns an idle publisher; call Start to begin delivery.
// Events published before Start are queued.
func NewAsyncPublisher(sink Sink, log logger.Logger, cfg AsyncConfig) *AsyncPublisher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = maxRetries
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = retryBaseDelay
	}

	meter := otel.Meter("github.com/ghuser/catalog/pkg/events")
	published, _ := meter.Int64Counter("catalog.events.published",
		metric.WithDescription("Events delivered to the sink"))
	dropped, _ := meter.Int64Counter("catalog.events.dropped",
		metric.WithDescription("Events dropped because the queue was full or closed"))
	failed, _ := meter.Int64Counter("catalog.events.failed",
		metric.WithDescription("Events the sink rejected after all retries"))

	return &AsyncPublisher{
		sink:      sink,
		log:       log,
		cfg:       cfg,
		queue:     make(chan envelope, cfg.QueueSize),
		done:      make(chan struct{}),
		published: published,
		dropped:   dropped,
		failed:    failed,
	}
}

// Publish encodes event and enqueues it for delivery to topic. The span of ctx
// is carried over so the delivery shows up in the caller's trace; ctx
// cancellation does not affect delivery.
func (p *AsyncPublisher) Publish(ctx context.Context, topic string, event any) {
	msg, err := NewJSONMessage(event)
	if err != nil {
		p.drop(ctx, topic, "encode", err)
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state == stateStopped {
		p.drop(ctx, topic, "stopped", nil)
		return
	}

	select {
	case p.queue <- envelope{span: trace.SpanContextFromContext(ctx), topic: topic, msg: msg}:
	default:
		p.drop(ctx, topic, "queue_full", nil)
	}
}

func (p *AsyncPublisher) drop(ctx context.Context, topic, reason string, err error) {
	p.dropped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("reason", reason),
	))
	args := []any{"topic", topic, "reason", reason}
	if err != nil {
		args = append(args, "error", err)
	}
	p.log.WarnContext(ctx, "events: dropping event", args...)
}

// Start launches the delivery goroutine. It must be called at most once.
// Delivery outlives ctx; use Stop to end it.
func (p *AsyncPublisher) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case stateRunning:
		return fmt.Errorf("events: publisher already started")
	case stateStopped:
		return ErrPublisherStopped
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	p.state = stateRunning

	go p.run(runCtx)
	p.log.InfoContext(ctx, "events: async publisher started", "queue_size", p.cfg.QueueSize)
	return nil
}

func (p *AsyncPublisher) run(ctx context.Context) {
	defer close(p.done)
	for env := range p.queue {
		p.deliver(ctx, env)
	}
}

func (p *AsyncPublisher) deliver(ctx context.Context, env envelope) {
	msgCtx := trace.ContextWithRemoteSpanContext(ctx, env.span)
	send := func(ctx context.Context, msg *message.Message) error {
		return p.sink.Publish(ctx, env.topic, msg)
	}

	attrs := metric.WithAttributes(attribute.String("topic", env.topic))
	if err := retryWithBackoff(msgCtx, env.msg, send, p.cfg.MaxRetries, p.cfg.RetryBaseDelay, p.log); err != nil {
		p.failed.Add(msgCtx, 1, attrs)
		p.log.ErrorContext(msgCtx, "events: delivery failed",
			"topic", env.topic,
			"event_id", env.msg.Metadata.Get(MetadataEventID),
			"error", err,
		)
		return
	}
	p.published.Add(msgCtx, 1, attrs)
}

// Stop rejects further events and drains the queue. If ctx expires first,
// in-flight retries are abandoned, the remaining events are lost and ctx.Err()
// is returned. The sink is not closed.
func (p *AsyncPublisher) Stop(ctx context.Context) error {
	p.mu.Lock()
	prev := p.state
	p.state = stateStopped
	if prev != stateStopped {
		close(p.queue)
	}
	p.mu.Unlock()

	if prev != stateRunning {
		return nil
	}

	select {
	case <-p.done:
		p.log.InfoContext(ctx, "events: async publisher drained")
		return nil
	case <-ctx.Done():
		p.cancel()
		p.log.WarnContext(ctx, "events: async publisher stopped before queue drained",
			"remaining", len(p.queue))
		return ctx.Err()
	}
}

// Pending reports the number of queued events.
func (p *AsyncPublisher) Pending() int {
	return len(p.queue)
}

// Ping checks the health of the underlying sink.
func (p *AsyncPublisher) Ping(ctx context.Context) error {
	return p.sink.Ping(ctx)
}
