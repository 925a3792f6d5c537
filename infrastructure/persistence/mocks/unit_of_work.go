package mocks

import (
	"context"

	"go.uber.org/zap"

	"jewelry/domain/shared"
	"jewelry/pkg/logger"
)

// UnitOfWork serialises transactions on the store. On error the store is
// restored to its state before Execute; on success the collected events
// go to the event bus, standing in for the outbox.
type UnitOfWork struct {
	store      *Store
	bus        *shared.EventBus
	aggregates []shared.AggregateRoot
}

func NewUnitOfWork(store *Store, bus *shared.EventBus) *UnitOfWork {
	return &UnitOfWork{store: store, bus: bus}
}

func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	u.store.txMu.Lock()
	defer u.store.txMu.Unlock()

	u.aggregates = u.aggregates[:0]
	snap := u.store.snapshot()

	if err := fn(ctx); err != nil {
		u.store.restore(snap)
		return err
	}

	for _, agg := range u.aggregates {
		for _, event := range agg.PullEvents() {
			if u.bus == nil {
				continue
			}
			if err := u.bus.Publish(event); err != nil {
				logger.FromContext(ctx).Warn("Event handler failed",
					zap.String("event", event.EventName()),
					zap.String("aggregate_id", agg.AggregateID()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

func (u *UnitOfWork) RegisterNew(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

func (u *UnitOfWork) RegisterDirty(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

type UnitOfWorkFactory struct {
	store *Store
	bus   *shared.EventBus
}

func NewUnitOfWorkFactory(store *Store, bus *shared.EventBus) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store, bus: bus}
}

func (f *UnitOfWorkFactory) New() shared.UnitOfWork {
	return NewUnitOfWork(f.store, f.bus)
}

var (
	_ shared.UnitOfWork        = (*UnitOfWork)(nil)
	_ shared.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
)
