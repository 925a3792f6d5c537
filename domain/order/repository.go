package order

import (
	"context"

	"github.com/shopspring/decimal"

	"jewelry/domain/shared"
)

// Repository Order repository interface.
// Implementations read the transaction from ctx when one is present.
type Repository interface {
	// Create inserts the order and its lines atomically and assigns the ID
	// through Order.AssignID.
	Create(ctx context.Context, order *Order) error

	// FindByID loads the order with its lines. ErrOrderNotFound when missing.
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindByIDForUpdate is FindByID holding a row lock until the surrounding
	// transaction ends.
	FindByIDForUpdate(ctx context.Context, id int64) (*Order, error)

	// FindByOwner returns the owner's orders, newest first.
	FindByOwner(ctx context.Context, ownerID int64) ([]*Order, error)

	// FindByPhone matches the phone exactly, newest first.
	FindByPhone(ctx context.Context, phone string) ([]*Order, error)

	UpdateStatus(ctx context.Context, id int64, status Status) error

	// AttachInvoice sets the invoice only while none is set; otherwise it
	// returns ErrInvoiceAttached and keeps the existing one.
	AttachInvoice(ctx context.Context, id int64, ref, qr string) error

	FindByInvoiceRef(ctx context.Context, ref string) (*Order, error)

	// List returns one page of orders matching spec, newest first, and the
	// total number of matches.
	List(ctx context.Context, spec shared.Specification[*Order], page shared.Page) ([]*Order, int64, error)

	Count(ctx context.Context) (int64, error)

	SumTotalByStatus(ctx context.Context, status Status) (decimal.Decimal, error)
}
