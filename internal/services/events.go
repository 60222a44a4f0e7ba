package services

//go:generate mockgen -source=events.go -destination=events_mock.go -package=services

import (
	"context"
	"encoding/json"

	"github.com/sbilibin2017/fdg-inventory-auth/internal/logger"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/models"
	"github.com/segmentio/kafka-go"
)

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// KafkaEventPublisher publishes authentication audit events to Kafka.
type KafkaEventPublisher struct {
	writer KafkaWriter
}

// NewKafkaEventPublisher creates a publisher. A nil writer turns publishing into a logged no-op.
func NewKafkaEventPublisher(writer KafkaWriter) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: writer}
}

// Publish writes the event keyed by user id. Failures are logged, never returned:
// the audit stream must not block a login.
func (p *KafkaEventPublisher) Publish(ctx context.Context, event models.AuthEvent) {
	if p.writer == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "event_id", event.EventID, "operation", event.Operation)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal auth event for Kafka", "event_id", event.EventID, "error", err)
		return
	}

	key := event.UserID
	if key == "" {
		key = event.Login
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish auth event to Kafka", "event_id", event.EventID, "operation", event.Operation, "error", err)
	} else {
		logger.Log.Infow("Auth event published to Kafka", "event_id", event.EventID, "operation", event.Operation)
	}
}

// Close releases the underlying writer.
func (p *KafkaEventPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
