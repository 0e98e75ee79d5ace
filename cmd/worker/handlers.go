package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/catalog/pkg/events"
	"github.com/ghuser/catalog/pkg/logger"
	catalogEvents "github.com/ghuser/catalog/services/catalog/domain/events"
)

// nameEvicter removes a cached item by name. Implemented by cache.ItemCache.
type nameEvicter interface {
	DeleteByName(ctx context.Context, name string) error
}

// handlePriceChanged returns a handler for catalog.item.price_changed events.
// It evicts the cached item so every API instance serves the new price on its
// next read. Handlers must be idempotent: the transport retries up to 3× on failure.
func handlePriceChanged(evicter nameEvicter, log logger.Logger) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var evt catalogEvents.ItemPriceChangedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			// A malformed payload never becomes valid; ack it instead of retrying.
			log.ErrorContext(ctx, "discarding malformed price change event",
				"message_uuid", msg.UUID, "error", err)
			return nil
		}

		if err := evicter.DeleteByName(ctx, evt.Name); err != nil {
			return fmt.Errorf("evict %q: %w", evt.Name, err)
		}

		log.InfoContext(ctx, "cached item evicted after price change",
			"name", evt.Name, "price", evt.Price.String(), "event_id", evt.EventID)
		return nil
	}
}
