package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents the error envelope returned by every endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeOutOfStock        = "OUT_OF_STOCK"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeUnsupportedMethod = "UNSUPPORTED_METHOD"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeExternalService   = "EXTERNAL_SERVICE_FAILURE"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// ErrorKind groups error codes into the categories the HTTP layer maps to statuses.
type ErrorKind int

const (
	KindServer ErrorKind = iota
	KindNotFound
	KindInvalidInput
	KindOutOfStock
	KindUnauthorised
	KindForbidden
	KindExternalService
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Kind reports the taxonomy bucket of the error.
func (e *DomainError) Kind() ErrorKind {
	switch e.Code {
	case ErrCodeNotFound:
		return KindNotFound
	case ErrCodeInvalidJSON, ErrCodeInvalidInput, ErrCodeEmptyCart, ErrCodeUnsupportedMethod, ErrCodeInvalidTransition:
		return KindInvalidInput
	case ErrCodeOutOfStock:
		return KindOutOfStock
	case ErrCodeUnauthorised:
		return KindUnauthorised
	case ErrCodeForbidden:
		return KindForbidden
	case ErrCodeExternalService:
		return KindExternalService
	default:
		return KindServer
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NotFound builds a NotFound error for the named entity.
func NotFound(entity string) *DomainError {
	return NewDomainError(ErrCodeNotFound, entity+" not found")
}

// InvalidInput builds an InvalidInput error.
func InvalidInput(message string) *DomainError {
	return NewDomainError(ErrCodeInvalidInput, message)
}

// OutOfStock builds an OutOfStock error naming the book and what is left.
func OutOfStock(title string, available int) *DomainError {
	return NewDomainError(ErrCodeOutOfStock, fmt.Sprintf("insufficient stock for %q: %d available", title, available))
}

// ExternalFailure builds an ExternalServiceFailure error.
func ExternalFailure(message string) *DomainError {
	return NewDomainError(ErrCodeExternalService, message)
}

// AsDomainError unwraps err into a DomainError if it carries one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Common domain errors
var (
	ErrBookNotFound          = NotFound("book")
	ErrCategoryNotFound      = NotFound("category")
	ErrOrderNotFound         = NotFound("order")
	ErrPaymentNotFound       = NotFound("payment")
	ErrCartItemNotFound      = NotFound("cart item")
	ErrUserNotFound          = NotFound("user")
	ErrOutOfStock            = NewDomainError(ErrCodeOutOfStock, "insufficient stock")
	ErrEmptyCart             = NewDomainError(ErrCodeEmptyCart, "cart is empty")
	ErrUnsupportedMethod     = NewDomainError(ErrCodeUnsupportedMethod, "unsupported payment method")
	ErrInvalidQuantity       = InvalidInput("quantity must be at least 1")
	ErrInvalidOrderStatus    = InvalidInput("invalid order status")
	ErrInvalidPaymentStatus  = InvalidInput("invalid payment status")
	ErrInvalidTransition     = NewDomainError(ErrCodeInvalidTransition, "payment status transition not allowed")
	ErrMethodMismatch        = InvalidInput("payment method does not match this operation")
	ErrIncompleteBankDetails = InvalidInput("bank name and account number are required")
	ErrOrderAlreadyPaid      = InvalidInput("order is already paid")
	ErrPaymentInProgress     = InvalidInput("order already has a pending payment")
	ErrUnauthorised          = NewDomainError(ErrCodeUnauthorised, "authentication required")
	ErrInvalidCredentials    = NewDomainError(ErrCodeUnauthorised, "invalid email or password")
	ErrForbidden             = NewDomainError(ErrCodeForbidden, "access denied")
)
