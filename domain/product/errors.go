package product

import (
	"errors"
	"fmt"

	"jewelry/domain/shared"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

func NewProductNotFoundError(id int64) error {
	return &shared.DomainError{
		Err:     ErrProductNotFound,
		Entity:  "Product",
		Message: fmt.Sprintf("product %d not found", id),
	}
}

// InsufficientStockError names the product that ran out.
type InsufficientStockError struct {
	ProductID int64
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (requested %d)", e.ProductID, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
