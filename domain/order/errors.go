package order

import (
	"errors"
	"fmt"

	"jewelry/domain/shared"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrAccessDenied is kept apart from ErrOrderNotFound for logs only;
	// users see the same "order not found" for both.
	ErrAccessDenied = errors.New("order access denied")

	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidPrice      = errors.New("price must not be negative")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrIllegalTransition = errors.New("order status transition not allowed")
	ErrTransitionFailed  = errors.New("failed to update order status")
	ErrCreationFailed    = errors.New("failed to create order")
	ErrPriceChanged      = errors.New("product price changed")
	ErrOwnership         = errors.New("order must have exactly one of owner or guest token")
	ErrNotPayable        = errors.New("order is not payable")
	ErrInvoiceAttached   = errors.New("order already has an invoice")
)

// Error is the order subdomain error: a sentinel for errors.Is, an optional
// cause, and the stack of the place that created it.
type Error struct {
	sentinel error
	cause    error
	field    string
	message  string
	stack    []uintptr
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Unwrap exposes both the sentinel and the cause.
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.sentinel, e.cause}
	}
	return []error{e.sentinel}
}

// Message is the user-facing text without the cause.
func (e *Error) Message() string { return e.message }

// Field names the rejected input, if any.
func (e *Error) Field() string { return e.field }

func (e *Error) Stack() []string {
	return shared.FormatStack(e.stack)
}

func newError(sentinel error, field, message string, cause error) *Error {
	return &Error{
		sentinel: sentinel,
		cause:    cause,
		field:    field,
		message:  message,
		stack:    shared.CaptureStack(4),
	}
}

func NewOrderNotFoundError(orderID int64) error {
	return newError(ErrOrderNotFound, "", fmt.Sprintf("order %d not found", orderID), nil)
}

func NewAccessDeniedError(orderID int64) error {
	return newError(ErrAccessDenied, "", fmt.Sprintf("access to order %d denied", orderID), nil)
}

func NewEmptyCartError() error {
	return newError(ErrEmptyCart, "items", "cart is empty", nil)
}

// NewFieldError reports a rejected customer-details field. It unwraps to
// shared.ErrInvalidInput so generic validation handling applies.
func NewFieldError(field, message string) error {
	return newError(shared.ErrInvalidInput, field, message, nil)
}

func NewInvalidQuantityError(productID int64) error {
	return newError(ErrInvalidQuantity, "quantity", fmt.Sprintf("quantity for product %d must be positive", productID), nil)
}

func NewInvalidPriceError(productID int64) error {
	return newError(ErrInvalidPrice, "price", fmt.Sprintf("price for product %d must not be negative", productID), nil)
}

func NewPricePrecisionError(productID int64) error {
	return newError(ErrInvalidPrice, "price", fmt.Sprintf("price for product %d has more than 2 decimal places", productID), nil)
}

func NewInvalidStatusError(raw string) error {
	return newError(ErrInvalidStatus, "status", "Invalid order status", fmt.Errorf("%q", raw))
}

func NewIllegalTransitionError(from, to Status) error {
	return newError(ErrIllegalTransition, "status", "cannot move order from "+from.String()+" to "+to.String(), nil)
}

func NewTransitionFailedError(cause error) error {
	return newError(ErrTransitionFailed, "", "Failed to update order status", cause)
}

func NewCreationFailedError(cause error) error {
	return newError(ErrCreationFailed, "", "failed to create order", cause)
}

func NewPriceChangedError(productID int64) error {
	return newError(ErrPriceChanged, "price", fmt.Sprintf("price of product %d has changed, please refresh your cart", productID), nil)
}

func NewNotPayableError(orderID int64, status Status) error {
	return newError(ErrNotPayable, "status", "order is "+status.String()+" and cannot be paid", fmt.Errorf("order %d", orderID))
}

func NewInvoiceAttachedError(orderID int64) error {
	return newError(ErrInvoiceAttached, "", fmt.Sprintf("order %d already has an invoice", orderID), nil)
}
