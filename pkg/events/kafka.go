package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/segmentio/kafka-go"

	"github.com/ghuser/catalog/pkg/logger"
)

const kafkaDialTimeout = 5 * time.Second

// KafkaSink publishes Watermill messages to Kafka. Metadata, including the OTel
// trace context, travels as record headers; the partition_key metadata becomes
// the record key so events for one item stay ordered.
type KafkaSink struct {
	writer  *kafka.Writer
	brokers []string
}

// NewKafkaSink returns a sink writing to brokers. Topics are created on first use.
func NewKafkaSink(brokers []string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("events: kafka sink needs at least one broker")
	}
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
		brokers: brokers,
	}, nil
}

// Publish writes msgs to topic synchronously.
func (s *KafkaSink) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	records := make([]kafka.Message, 0, len(msgs))
	for _, msg := range msgs {
		injectTrace(ctx, msg.Metadata)
		records = append(records, toKafkaMessage(topic, msg))
	}
	if err := s.writer.WriteMessages(ctx, records...); err != nil {
		return fmt.Errorf("events: kafka write to %s: %w", topic, err)
	}
	return nil
}

// Ping dials the first reachable broker.
func (s *KafkaSink) Ping(ctx context.Context) error {
	return pingBrokers(ctx, s.brokers)
}

// Close flushes pending writes and closes the writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func toKafkaMessage(topic string, msg *message.Message) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Metadata)+1)
	headers = append(headers, kafka.Header{Key: "message_uuid", Value: []byte(msg.UUID)})
	for k, v := range msg.Metadata {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	key := msg.Metadata.Get(MetadataPartitionKey)
	if key == "" {
		key = msg.UUID
	}
	return kafka.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   msg.Payload,
		Headers: headers,
	}
}

func fromKafkaMessage(rec kafka.Message) *message.Message {
	uuid := ""
	metadata := make(message.Metadata, len(rec.Headers))
	for _, h := range rec.Headers {
		if h.Key == "message_uuid" {
			uuid = string(h.Value)
			continue
		}
		metadata.Set(h.Key, string(h.Value))
	}
	if uuid == "" {
		uuid = watermill.NewUUID()
	}
	msg := message.NewMessage(uuid, rec.Value)
	msg.Metadata = metadata
	return msg
}

func pingBrokers(ctx context.Context, brokers []string) error {
	dialer := &kafka.Dialer{Timeout: kafkaDialTimeout}
	var errs []error
	for _, b := range brokers {
		conn, err := dialer.DialContext(ctx, "tcp", b)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("events: no kafka broker reachable: %w", errors.Join(errs...))
}

// KafkaSubscriber consumes topics with a consumer group and hands each record
// to a Handler with the same retry policy as EventBus. Offsets are committed
// after the handler finishes, successfully or not.
type KafkaSubscriber struct {
	brokers []string
	groupID string
	log     logger.Logger

	mu      sync.Mutex
	readers []*kafka.Reader
	wg      sync.WaitGroup
}

// NewKafkaSubscriber returns a subscriber joining groupID on brokers.
func NewKafkaSubscriber(brokers []string, groupID string, log logger.Logger) *KafkaSubscriber {
	return &KafkaSubscriber{brokers: brokers, groupID: groupID, log: log}
}

// Subscribe starts consuming topic until ctx is cancelled or Close is called.
// Handler errors that survive all retries are sent to the returned channel
// (capacity 100), which callers must drain.
func (s *KafkaSubscriber) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: s.brokers,
		GroupID: s.groupID,
		Topic:   topic,
	})

	s.mu.Lock()
	s.readers = append(s.readers, reader)
	s.mu.Unlock()

	errCh := make(chan error, 100)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(errCh)

		for {
			rec, err := reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
					s.log.InfoContext(ctx, "events: kafka reader stopped", "topic", topic, "error", err)
				}
				return
			}

			msg := fromKafkaMessage(rec)
			msgCtx := extractTrace(ctx, msg.Metadata)

			if err := retryWithBackoff(msgCtx, msg, handler, maxRetries, retryBaseDelay, s.log); err != nil {
				select {
				case errCh <- err:
				default:
					s.log.ErrorContext(msgCtx, "events: error channel full, dropping error",
						"error", err, "topic", topic)
				}
			}
			if err := reader.CommitMessages(ctx, rec); err != nil {
				s.log.ErrorContext(msgCtx, "events: kafka commit failed", "topic", topic, "error", err)
			}
		}
	}()

	return errCh, nil
}

// Close closes every reader and waits for the consuming goroutines.
func (s *KafkaSubscriber) Close() error {
	s.mu.Lock()
	readers := s.readers
	s.readers = nil
	s.mu.Unlock()

	var errs []error
	for _, r := range readers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if !waitTimeout(&s.wg, shutdownTimeout) {
		s.log.Error("events: timed out waiting for kafka consumers to complete")
	}
	return errors.Join(errs...)
}
