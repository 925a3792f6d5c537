package shared

import "context"

// Specification is a business predicate over T. In-memory repositories call
// IsSatisfiedBy; the gorm translator turns known specifications into scopes.
type Specification[T any] interface {
	IsSatisfiedBy(ctx context.Context, entity T) bool
}

// AndSpecification holds when every part holds. An empty And matches all.
type AndSpecification[T any] struct {
	Specs []Specification[T]
}

func (spec AndSpecification[T]) IsSatisfiedBy(ctx context.Context, entity T) bool {
	for _, s := range spec.Specs {
		if s != nil && !s.IsSatisfiedBy(ctx, entity) {
			return false
		}
	}
	return true
}

func And[T any](specs ...Specification[T]) Specification[T] {
	return AndSpecification[T]{Specs: specs}
}
