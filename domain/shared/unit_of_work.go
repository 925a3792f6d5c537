package shared

import "context"

// UnitOfWork manages a transaction boundary and collects aggregate events.
// Execute hands fn a context carrying the transaction; repositories pick it up
// from there. A UnitOfWork instance is not safe for concurrent Execute calls,
// so services take a fresh one from the factory per operation.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
	RegisterNew(aggregate AggregateRoot)
	RegisterDirty(aggregate AggregateRoot)
}

type UnitOfWorkFactory interface {
	New() UnitOfWork
}

type OutboxRepository interface {
	SaveEvent(ctx context.Context, event DomainEvent) error
}
