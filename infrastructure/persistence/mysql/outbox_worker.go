package mysql

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"jewelry/infrastructure/messaging"
	"jewelry/pkg/logger"
)

// OutboxObserver is told about each processed event.
type OutboxObserver interface {
	OutboxProcessed(published bool)
}

type OutboxWorker struct {
	repository   *OutboxRepository
	publisher    messaging.Publisher
	observer     OutboxObserver
	pollInterval time.Duration
	batchSize    int
	maxRetries   int
}

func NewOutboxWorker(
	repository *OutboxRepository,
	publisher messaging.Publisher,
	pollInterval time.Duration,
	batchSize int,
	maxRetries int,
) (*OutboxWorker, error) {
	if repository == nil {
		return nil, fmt.Errorf("outbox repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher is required")
	}
	if pollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive")
	}
	if maxRetries <= 0 {
		return nil, fmt.Errorf("max retries must be positive")
	}

	return &OutboxWorker{
		repository:   repository,
		publisher:    publisher,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		maxRetries:   maxRetries,
	}, nil
}

func (w *OutboxWorker) WithObserver(o OutboxObserver) *OutboxWorker {
	w.observer = o
	return w
}

// Run polls until ctx is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	if n, err := w.repository.ReleaseStuck(ctx, 10*w.pollInterval); err != nil {
		logger.Warn("Failed to release stuck outbox events", zap.Error(err))
	} else if n > 0 {
		logger.Info("Released stuck outbox events", zap.Int64("count", n))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessBatch(ctx); err != nil {
				logger.Error("Outbox batch processing failed", zap.Error(err))
			}
		}
	}
}

// ProcessBatch relays one batch of pending events.
func (w *OutboxWorker) ProcessBatch(ctx context.Context) error {
	events, err := w.repository.GetPendingEvents(ctx, w.batchSize)
	if err != nil {
		return err
	}

	for _, event := range events {
		if err := w.repository.MarkEventProcessing(ctx, event.ID); err != nil {
			logger.Warn("Skip outbox event claimed elsewhere",
				zap.String("event_id", event.ID),
				zap.Error(err),
			)
			continue
		}

		msg := messaging.Message{
			ID:          event.ID,
			AggregateID: event.AggregateID,
			EventType:   event.EventType,
			Payload:     []byte(event.Payload),
		}
		if err := w.publisher.Publish(ctx, msg); err != nil {
			w.observe(false)
			logger.Warn("Outbox publish failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			if failErr := w.repository.MarkEventFailed(ctx, event.ID, w.maxRetries); failErr != nil {
				logger.Error("Failed to mark outbox event as failed",
					zap.String("event_id", event.ID),
					zap.Error(failErr),
				)
			}
			continue
		}

		w.observe(true)
		if err := w.repository.MarkEventPublished(ctx, event.ID); err != nil {
			logger.Error("Failed to mark outbox event as published",
				zap.String("event_id", event.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (w *OutboxWorker) observe(published bool) {
	if w.observer != nil {
		w.observer.OutboxProcessed(published)
	}
}
