package events

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TopicItemPriceChanged is the topic published when an item's price is updated.
const TopicItemPriceChanged = "catalog.item.price_changed"

// EventTypeItemPriceChanged identifies ItemPriceChangedEvent payloads.
const EventTypeItemPriceChanged = "ItemPriceChanged"

// ItemPriceChangedEvent is handed to the Publisher after an update that changed
// an item's price has been persisted. It is never stored by the catalog.
type ItemPriceChangedEvent struct {
	EventID    uuid.UUID       `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int             `json:"version"`  // Schema version; increment on breaking changes
	Type       string          `json:"type"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewItemPriceChangedEvent builds a version 1 event for the given item name and new price.
func NewItemPriceChangedEvent(name string, price decimal.Decimal) ItemPriceChangedEvent {
	return ItemPriceChangedEvent{
		EventID:    uuid.New(),
		Version:    1,
		Type:       EventTypeItemPriceChanged,
		Name:       name,
		Price:      price,
		OccurredAt: time.Now().UTC(),
	}
}

// Metadata describes the event on the transport message. Events for the same
// item name share a partition key so they stay ordered on partitioned transports.
func (e ItemPriceChangedEvent) Metadata() map[string]string {
	return map[string]string{
		"event_id":      e.EventID.String(),
		"event_type":    e.Type,
		"event_version": strconv.Itoa(e.Version),
		"partition_key": e.Name,
	}
}

// Publisher accepts domain events for best-effort delivery. Publish returns
// immediately; delivery failures are handled by the implementation and never
// reported back to the caller.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any)
}
