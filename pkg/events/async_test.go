package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
)

// recordingSink records published messages. When gate is non-nil every
// Publish blocks until gate is closed.
type recordingSink struct {
	mu       sync.Mutex
	topics   []string
	msgs     []*message.Message
	failures int // number of initial Publish calls that fail
	calls    int
	gate     chan struct{}
}

func (s *recordingSink) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return errors.New("sink unavailable")
	}
	for _, m := range msgs {
		s.topics = append(s.topics, topic)
		s.msgs = append(s.msgs, m)
	}
	return nil
}

func (s *recordingSink) Ping(context.Context) error { return nil }
func (s *recordingSink) Close() error                { return nil }

func (s *recordingSink) delivered() []*message.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*message.Message(nil), s.msgs...)
}

type testEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (e testEvent) Metadata() map[string]string {
	return map[string]string{MetadataEventID: e.ID, MetadataPartitionKey: e.Name}
}

func fastConfig(queueSize int) AsyncConfig {
	return AsyncConfig{QueueSize: queueSize, MaxRetries: 3, RetryBaseDelay: time.Millisecond}
}

func stopWithin(t *testing.T, p *AsyncPublisher, d time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return p.Stop(ctx)
}

func TestAsyncPublisher_DeliversInOrder(t *testing.T) {
	sink := &recordingSink{}
	p := NewAsyncPublisher(sink, nopLogger(), fastConfig(8))
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	p.Publish(context.Background(), "catalog.test", testEvent{ID: "1", Name: "a"})
	p.Publish(context.Background(), "catalog.test", testEvent{ID: "2", Name: "b"})

	if err := stopWithin(t, p, time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	got := sink.delivered()
	if len(got) != 2 {
		t.Fatalf("expected 2 delivered messages, got %d", len(got))
	}
	if got[0].Metadata.Get(MetadataEventID) != "1" || got[1].Metadata.Get(MetadataEventID) != "2" {
		t.Errorf("unexpected order: %s, %s", got[0].Metadata.Get(MetadataEventID), got[1].Metadata.Get(MetadataEventID))
	}
	if string(got[0].Payload) != `{"id":"1","name":"a"}` {
		t.Errorf("unexpected payload %s", got[0].Payload)
	}
}

func TestAsyncPublisher_QueuedBeforeStart(t *testing.T) {
	sink := &recordingSink{}
	p := NewAsyncPublisher(sink, nopLogger(), fastConfig(8))

	p.Publish(context.Background(), "catalog.test", testEvent{ID: "early"})
	if p.Pending() != 1 {
		t.Fatalf("expected 1 pending event, got %d", p.Pending())
	}

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := stopWithin(t, p, time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if n := len(sink.delivered()); n != 1 {
		t.Fatalf("expected 1 delivered message, got %d", n)
	}
}

func TestAsyncPublisher_RetriesTransientFailures(t *testing.T) {
	sink := &recordingSink{failures: 2}
	p := NewAsyncPublisher(sink, nopLogger(), fastConfig(8))
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	p.Publish(context.Background(), "catalog.test", testEvent{ID: "1"})

	if err := stopWithin(t, p, time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if n := len(sink.delivered()); n != 1 {
		t.Fatalf("expected delivery after retries, got %d messages", n)
	}
}

func TestAsyncPublisher_FailureIsNotReturned(t *testing.T) {
	sink := &recordingSink{failures: 100}
	p := NewAsyncPublisher(sink, nopLogger(), fastConfig(8))
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Publish has no error result; a permanently failing sink only loses the event.
	p.Publish(context.Background(), "catalog.test", testEvent{ID: "1"})

	if err := stopWithin(t, p, time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if n := len(sink.delivered()); n != 0 {
		t.Fatalf("expected no delivery, got %d", n)
	}
}

func TestAsyncPublisher_DropsWhenQueueFull(t *testing.T) {
	sink := &recordingSink{gate: make(chan struct{})}
	p := NewAsyncPublisher(sink, nopLogger(), fastConfig(1))

	// Not started: the single slot fills up and the rest are dropped without blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			p.Publish(context.Background(), "catalog.test", testEvent{ID: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
	if p.Pending() != 1 {
		t.Fatalf("expected 1 pending event, got %d", p.Pending())
	}

	close(sink.gate)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := stopWithin(t, p, time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if n := len(sink.delivered()); n != 1 {
		t.Fatalf("expected 1 delivered message, got %d", n)
	}
}

func TestAsyncPublisher_PublishAfterStopIsDropped(t *testing.T) {
	sink := &recordingSink{}
	p := NewAsyncPublisher(sink, nopLogger(), fastConfig(8))
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := stopWithin(t, p, time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	p.Publish(context.Background(), "catalog.test", testEvent{ID: "late"})

	if n := len(sink.delivered()); n != 0 {
		t.Fatalf("expected no delivery after Stop, got %d", n)
	}
	if err := p.Start(context.Background()); !errors.Is(err, ErrPublisherStopped) {
		t.Fatalf("expected ErrPublisherStopped, got %v", err)
	}
}

func TestAsyncPublisher_StopHonoursDeadline(t *testing.T) {
	sink := &recordingSink{gate: make(chan struct{})}
	p := NewAsyncPublisher(sink, nopLogger(), fastConfig(8))
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	p.Publish(context.Background(), "catalog.test", testEvent{ID: "stuck"})

	err := stopWithin(t, p, 20*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestAsyncPublisher_DoubleStart(t *testing.T) {
	p := NewAsyncPublisher(&recordingSink{}, nopLogger(), fastConfig(1))
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer stopWithin(t, p, time.Second) //nolint:errcheck

	if err := p.Start(context.Background()); err == nil {
		t.Fatal("expected error on second Start")
	}
}

func TestAsyncPublisher_CarriesTraceContext(t *testing.T) {
	tp := setupTracer()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	sink := &tracingSink{}
	p := NewAsyncPublisher(sink, nopLogger(), fastConfig(8))

	ctx, span := otel.Tracer("test").Start(context.Background(), "request")
	want := span.SpanContext().TraceID()
	p.Publish(ctx, "catalog.test", testEvent{ID: "1"})
	span.End()

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := stopWithin(t, p, time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if len(sink.traceIDs) != 1 || sink.traceIDs[0] != want.String() {
		t.Fatalf("expected trace %s, got %v", want, sink.traceIDs)
	}
}

type tracingSink struct{ traceIDs []string }

func (s *tracingSink) Publish(ctx context.Context, _ string, _ ...*message.Message) error {
	s.traceIDs = append(s.traceIDs, traceIDFrom(ctx))
	return nil
}
func (s *tracingSink) Ping(context.Context) error { return nil }
func (s *tracingSink) Close() error                { return nil }
