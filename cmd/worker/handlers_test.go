package main

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shopspring/decimal"

	"github.com/ghuser/catalog/pkg/events"
	"github.com/ghuser/catalog/pkg/logger"
	catalogEvents "github.com/ghuser/catalog/services/catalog/domain/events"
)

type stubEvicter struct {
	names []string
	err   error
}

func (s *stubEvicter) DeleteByName(_ context.Context, name string) error {
	s.names = append(s.names, name)
	return s.err
}

func priceChangedMessage(t *testing.T, name string) *message.Message {
	t.Helper()
	msg, err := events.NewJSONMessage(catalogEvents.NewItemPriceChangedEvent(name, decimal.RequireFromString("12.5")))
	if err != nil {
		t.Fatalf("NewJSONMessage: %v", err)
	}
	return msg
}

func TestHandlePriceChanged_EvictsByName(t *testing.T) {
	ev := &stubEvicter{}
	h := handlePriceChanged(ev, logger.Nop())

	if err := h(context.Background(), priceChangedMessage(t, "Widget")); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(ev.names) != 1 || ev.names[0] != "Widget" {
		t.Errorf("evicted: got %v, want [Widget]", ev.names)
	}
}

func TestHandlePriceChanged_EvictionErrorIsRetried(t *testing.T) {
	ev := &stubEvicter{err: errors.New("redis down")}
	h := handlePriceChanged(ev, logger.Nop())

	if err := h(context.Background(), priceChangedMessage(t, "Widget")); err == nil {
		t.Fatal("expected an error so the transport retries")
	}
}

func TestHandlePriceChanged_MalformedPayloadAcked(t *testing.T) {
	ev := &stubEvicter{}
	h := handlePriceChanged(ev, logger.Nop())

	if err := h(context.Background(), message.NewMessage("1", []byte("{not json"))); err != nil {
		t.Fatalf("malformed payload should be acked, got %v", err)
	}
	if len(ev.names) != 0 {
		t.Errorf("nothing should be evicted, got %v", ev.names)
	}
}
