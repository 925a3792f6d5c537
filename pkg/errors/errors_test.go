package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"jewelry/domain/order"
	"jewelry/domain/product"
	"jewelry/domain/shared"
)

func TestFromDomainError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    ErrorCode
		message string
	}{
		{"not found", order.NewOrderNotFoundError(7), CodeOrderNotFound, "order not found"},
		{"access denied looks like not found", order.NewAccessDeniedError(7), CodeOrderNotFound, "order not found"},
		{"invalid status", order.NewInvalidStatusError("REFUNDED"), CodeInvalidOrderStatus, "Invalid order status"},
		{"illegal transition", order.NewIllegalTransitionError(order.StatusShipped, order.StatusPending), CodeIllegalTransition, "cannot move order from SHIPPED to PENDING"},
		{"transition failed", order.NewTransitionFailedError(stderrors.New("connection reset")), CodeOrderUpdateFailed, "Failed to update order status"},
		{"creation failed", order.NewCreationFailedError(stderrors.New("product 3 missing")), CodeOrderCreateFailed, "failed to create order"},
		{"not payable", order.NewNotPayableError(7, order.StatusPaid), CodeOrderNotPayable, "order is PAID and cannot be paid"},
		{"empty cart", order.NewEmptyCartError(), CodeValidation, "cart is empty"},
		{"field", order.NewFieldError("phone", "phone is required"), CodeValidation, "phone is required"},
		{"insufficient stock", &product.InsufficientStockError{ProductID: 1, Requested: 2}, CodeInsufficientStock, "insufficient stock"},
		{"wrapped insufficient stock", fmt.Errorf("tx: %w", &product.InsufficientStockError{ProductID: 1, Requested: 2}), CodeInsufficientStock, "insufficient stock"},
		{"generic validation", shared.NewValidationError("Order", "page", "must be positive"), CodeValidation, "must be positive"},
		{"unknown", stderrors.New("boom"), CodeInternal, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDomainError(tt.err)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.message, appErr.Message)
			assert.ErrorIs(t, appErr, tt.err)
		})
	}
}

func TestFromDomainErrorPassesAppErrorThrough(t *testing.T) {
	original := Validation("productIds is required")
	assert.Same(t, original, FromDomainError(fmt.Errorf("bind: %w", original)))
	assert.Nil(t, FromDomainError(nil))
}

func TestIs(t *testing.T) {
	assert.True(t, Is(OrderNotFound(), CodeOrderNotFound))
	assert.False(t, Is(stderrors.New("x"), CodeOrderNotFound))
}
