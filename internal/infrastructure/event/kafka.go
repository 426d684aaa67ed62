package event

import (
	"context"
	"fmt"
	"time"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageWriter is the subset of *kafka.Writer the forwarder needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaForwarder is a wildcard handler that copies every event to a topic.
// Messages are keyed by aggregate id so one aggregate's events stay ordered.
type KafkaForwarder struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewKafkaForwarder creates a forwarder writing to topic on brokers
func NewKafkaForwarder(brokers []string, topic string, logger *zap.Logger) *KafkaForwarder {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
	return newKafkaForwarder(w, topic, logger)
}

func newKafkaForwarder(w messageWriter, topic string, logger *zap.Logger) *KafkaForwarder {
	return &KafkaForwarder{writer: w, topic: topic, logger: logger}
}

// Handle writes the event envelope
func (f *KafkaForwarder) Handle(ctx context.Context, e shared.DomainEvent) error {
	env, err := NewEnvelope(e)
	if err != nil {
		return err
	}
	value, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("event: marshal envelope: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.AggregateID().String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.EventType())},
			{Key: "event_id", Value: []byte(e.EventID().String())},
		},
		Time: e.OccurredAt(),
	}
	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("event: kafka write to %s: %w", f.topic, err)
	}
	f.logger.Debug("event forwarded to kafka",
		zap.String("topic", f.topic),
		zap.String("event_type", e.EventType()))
	return nil
}

// EventTypes returns nil: the forwarder receives everything
func (f *KafkaForwarder) EventTypes() []string {
	return nil
}

// Close flushes and closes the writer
func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}

var _ shared.EventHandler = (*KafkaForwarder)(nil)
