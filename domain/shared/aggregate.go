package shared

// AggregateRoot is the entry point of a consistency boundary. Aggregates
// record domain events while they change and hand them to the unit of work,
// which stores them in the outbox inside the same transaction.
type AggregateRoot interface {
	// AggregateID is the textual identity used for event routing.
	AggregateID() string

	// PullEvents returns the recorded events and clears them.
	PullEvents() []DomainEvent
}
