package order

import (
	"context"
	"time"

	"jewelry/domain/shared"
)

// ByOwnerSpecification filters orders by owning user.
type ByOwnerSpecification struct {
	OwnerID int64
}

func (spec ByOwnerSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	id, ok := entity.OwnerID()
	return ok && id == spec.OwnerID
}

// ByStatusSpecification filters orders by status.
type ByStatusSpecification struct {
	Status Status
}

func (spec ByStatusSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	return entity.Status() == spec.Status
}

// ByCreatedRangeSpecification filters orders by creation time.
// From is inclusive, To is exclusive; a zero bound is ignored.
type ByCreatedRangeSpecification struct {
	From time.Time
	To   time.Time
}

func (spec ByCreatedRangeSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	createdAt := entity.CreatedAt()
	if !spec.From.IsZero() && createdAt.Before(spec.From) {
		return false
	}
	if !spec.To.IsZero() && !createdAt.Before(spec.To) {
		return false
	}
	return true
}

func NewByOwnerSpecification(ownerID int64) shared.Specification[*Order] {
	return ByOwnerSpecification{OwnerID: ownerID}
}

func NewByStatusSpecification(status Status) shared.Specification[*Order] {
	return ByStatusSpecification{Status: status}
}

func NewByCreatedRangeSpecification(from, to time.Time) shared.Specification[*Order] {
	return ByCreatedRangeSpecification{From: from, To: to}
}
