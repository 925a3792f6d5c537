// Package errors defines application error codes and maps domain errors onto
// them. HTTP status mapping is the API layer's job.
package errors

import (
	"errors"
	"fmt"

	"jewelry/domain/order"
	"jewelry/domain/product"
	"jewelry/domain/shared"
	"jewelry/domain/user"
)

// ErrorCode is the stable, client-visible error identifier.
type ErrorCode string

const (
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeForbidden      ErrorCode = "FORBIDDEN"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"

	CodeOrderNotFound      ErrorCode = "ORDER_NOT_FOUND"
	CodeInvalidOrderStatus ErrorCode = "INVALID_ORDER_STATUS"
	CodeIllegalTransition  ErrorCode = "ILLEGAL_TRANSITION"
	CodeOrderUpdateFailed  ErrorCode = "ORDER_UPDATE_FAILED"
	CodeOrderCreateFailed  ErrorCode = "ORDER_CREATE_FAILED"
	CodePriceChanged       ErrorCode = "PRICE_CHANGED"
	CodeOrderNotPayable    ErrorCode = "ORDER_NOT_PAYABLE"
	CodeInsufficientStock  ErrorCode = "INSUFFICIENT_STOCK"
	CodeProductNotFound    ErrorCode = "PRODUCT_NOT_FOUND"
	CodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	CodePaymentFailed      ErrorCode = "PAYMENT_FAILED"
)

// AppError is what the API layer renders.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError      { return New(CodeBadRequest, message) }
func NotFound(message string) *AppError        { return New(CodeNotFound, message) }
func Internal(message string) *AppError        { return New(CodeInternal, message) }
func Unauthorized(message string) *AppError    { return New(CodeUnauthorized, message) }
func Forbidden(message string) *AppError       { return New(CodeForbidden, message) }
func Conflict(message string) *AppError        { return New(CodeConflict, message) }
func TooManyRequests(message string) *AppError { return New(CodeTooManyRequest, message) }
func Validation(message string) *AppError      { return New(CodeValidation, message) }

// OrderNotFound is the single answer for missing, forged and foreign orders.
func OrderNotFound() *AppError {
	return New(CodeOrderNotFound, "order not found")
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// FromDomainError maps any error onto an AppError. Errors that are already
// AppErrors pass through; unknown errors become CodeInternal.
func FromDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	// Not found and access denied are deliberately indistinguishable.
	case errors.Is(err, order.ErrOrderNotFound), errors.Is(err, order.ErrAccessDenied):
		return Wrap(err, CodeOrderNotFound, "order not found")
	case errors.Is(err, order.ErrInvalidStatus):
		return Wrap(err, CodeInvalidOrderStatus, "Invalid order status")
	case errors.Is(err, order.ErrIllegalTransition):
		return Wrap(err, CodeIllegalTransition, messageOf(err))
	case errors.Is(err, product.ErrInsufficientStock):
		return Wrap(err, CodeInsufficientStock, "insufficient stock")
	case errors.Is(err, order.ErrTransitionFailed):
		return Wrap(err, CodeOrderUpdateFailed, "Failed to update order status")
	case errors.Is(err, order.ErrCreationFailed):
		return Wrap(err, CodeOrderCreateFailed, "failed to create order")
	case errors.Is(err, order.ErrNotPayable):
		return Wrap(err, CodeOrderNotPayable, messageOf(err))
	case errors.Is(err, order.ErrPriceChanged):
		return Wrap(err, CodePriceChanged, messageOf(err))
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrInvalidPrice),
		errors.Is(err, order.ErrOwnership),
		errors.Is(err, shared.ErrInvalidInput):
		return Wrap(err, CodeValidation, messageOf(err))
	case errors.Is(err, product.ErrProductNotFound):
		return Wrap(err, CodeProductNotFound, "product not found")
	case errors.Is(err, user.ErrUserNotFound):
		return Wrap(err, CodeUserNotFound, "user not found")
	case errors.Is(err, shared.ErrNotFound):
		return Wrap(err, CodeNotFound, messageOf(err))
	case errors.Is(err, shared.ErrConflict):
		return Wrap(err, CodeConflict, messageOf(err))
	case errors.Is(err, shared.ErrUnauthorized):
		return Wrap(err, CodeUnauthorized, "unauthorized")
	case errors.Is(err, shared.ErrForbidden):
		return Wrap(err, CodeForbidden, "forbidden")
	}
	return Wrap(err, CodeInternal, err.Error())
}

// messageOf prefers the user-facing message of a domain error over its full
// error chain.
func messageOf(err error) string {
	var oe *order.Error
	if errors.As(err, &oe) {
		return oe.Message()
	}
	var de *shared.DomainError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return err.Error()
}
