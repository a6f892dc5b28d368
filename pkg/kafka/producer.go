// Package kafka publishes fern events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/Ramsey-B/fern/pkg/tracing"
)

// messageWriter is the part of kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer handles Kafka event emission
type Producer struct {
	writer messageWriter
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:            compressionCodec(cfg.Compression),
		AllowAutoTopicCreation: true,
	}
	return newProducer(writer, cfg.Topic, logger)
}

func newProducer(w messageWriter, topic string, logger ectologger.Logger) *Producer {
	return &Producer{
		writer: w,
		logger: logger,
		topic:  topic,
	}
}

func compressionCodec(name string) kafka.Compression {
	switch name {
	case "gzip":
		return kafka.Gzip
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	case "none":
		return 0
	}
	return kafka.Snappy
}

func (p *Producer) GetName() string     { return "kafka" }
func (p *Producer) DependsOn() []string { return nil }

// Start is a no-op; the writer connects on first publish.
func (p *Producer) Start(_ context.Context) error { return nil }

// Stop flushes and closes the writer.
func (p *Producer) Stop(_ context.Context) error { return p.Close() }

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// Event is the envelope of every message fern publishes.
type Event struct {
	EventType     string          `json:"event_type"`
	Key           string          `json:"key"`
	SchemaVersion string          `json:"schema_version"`
	Data          json.RawMessage `json:"data,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Publish writes events in one batch. Events keep their order per key.
func (p *Producer) Publish(ctx context.Context, events ...*Event) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.Publish")
	defer span.End()

	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, len(events))
	for i, event := range events {
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now().UTC()
		}
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to encode %s event: %w", event.EventType, err)
		}
		messages[i] = kafka.Message{
			Topic: p.topic,
			Key:   []byte(event.Key),
			Value: data,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(event.EventType)},
				{Key: "schema_version", Value: []byte(event.SchemaVersion)},
			},
		}
	}

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_size": len(events),
		"event_type": events[0].EventType,
	})
	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		log.WithError(err).Error("Failed to publish events")
		return fmt.Errorf("failed to publish events: %w", err)
	}

	log.Debug("Published events")
	return nil
}
