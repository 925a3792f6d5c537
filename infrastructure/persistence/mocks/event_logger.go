package mocks

import (
	"sync"

	"go.uber.org/zap"

	"jewelry/domain/shared"
	"jewelry/pkg/logger"
)

// NewEventLogger returns a handler that logs every event it sees. Subscribe
// it to "*" to trace what the outbox would have carried.
func NewEventLogger() shared.EventHandler {
	return shared.NewFuncHandler("event-logger", func(event shared.DomainEvent) error {
		logger.Info("Domain event",
			zap.String("event", event.EventName()),
			zap.String("aggregate_id", event.GetAggregateID()),
			zap.Time("occurred_on", event.OccurredOn()),
		)
		return nil
	})
}

// EventRecorder keeps every event it handles. Tests use it to assert on
// what a use case emitted.
type EventRecorder struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (r *EventRecorder) Name() string { return "event-recorder" }

func (r *EventRecorder) Handle(event shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Names returns the recorded event names in order.
func (r *EventRecorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.EventName()
	}
	return names
}
