package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Metadata keys set on every message built by NewJSONMessage.
const (
	MetadataEventID      = "event_id"
	MetadataEventType    = "event_type"
	MetadataEventVersion = "event_version"
	// MetadataPartitionKey orders messages on transports that partition, such as Kafka.
	MetadataPartitionKey = "partition_key"
)

// MetadataProvider is implemented by events that describe themselves with
// message metadata (event_id, event_type, event_version, partition_key).
type MetadataProvider interface {
	Metadata() map[string]string
}

// Handler processes one message. Returning an error triggers a retry.
type Handler func(context.Context, *message.Message) error

// Subscriber is implemented by every transport the worker can consume from.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error)
	Close() error
}

// NewJSONMessage marshals event into a Watermill message. Metadata from a
// MetadataProvider event is copied onto the message.
func NewJSONMessage(event any) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("events: marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if mp, ok := event.(MetadataProvider); ok {
		for k, v := range mp.Metadata() {
			msg.Metadata.Set(k, v)
		}
	}
	return msg, nil
}

// injectTrace writes the OTel trace context of ctx into metadata.
func injectTrace(ctx context.Context, metadata message.Metadata) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		metadata.Set(k, v)
	}
}

// extractTrace restores the publisher's trace context from metadata onto ctx.
func extractTrace(ctx context.Context, metadata message.Metadata) context.Context {
	carrier := propagation.MapCarrier{}
	for k, v := range metadata {
		carrier[k] = v
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
