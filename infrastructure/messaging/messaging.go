// Package messaging defines how outbox events leave the service.
package messaging

import (
	"context"

	"go.uber.org/zap"

	"jewelry/pkg/logger"
)

// Message is one outbox event ready to publish. ID is stable across
// redeliveries so consumers can deduplicate.
type Message struct {
	ID          string
	AggregateID string
	EventType   string
	Payload     []byte
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// LoggingPublisher writes events to the log. It is the fallback when no
// broker is configured.
type LoggingPublisher struct{}

func (p *LoggingPublisher) Publish(ctx context.Context, msg Message) error {
	logger.FromContext(ctx).Info("Outbox event published",
		zap.String("event_id", msg.ID),
		zap.String("event_type", msg.EventType),
		zap.String("aggregate_id", msg.AggregateID),
		zap.ByteString("payload", msg.Payload),
	)
	return nil
}
