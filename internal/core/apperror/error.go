// Package apperror provides structured error handling for the API.
// All business errors must use AppError so callers can switch on Kind
// instead of inspecting message text.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers. The set is intentionally small.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindInactive
	KindInsufficientStock
	KindDuplicate
	KindConflict
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInactive:
		return "inactive"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindDuplicate:
		return "duplicate"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error codes returned in API bodies.
const (
	CodeInternal = "INTERNAL_ERROR"

	CodeValidation = "VALIDATION_ERROR"

	CodeInactive          = "INACTIVE"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"

	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	CodeNotFound = "NOT_FOUND"

	CodeConflict    = "CONFLICT"
	CodeDuplicate   = "DUPLICATE_ENTRY"
	CodeIdempotency = "IDEMPOTENCY_CONFLICT"
	CodeRetry       = "CONCURRENT_UPDATE"
)

// AppError is the standard error type for the service.
type AppError struct {
	// Kind is the taxonomy bucket; HTTPStatus is derived from it by the factories.
	Kind Kind `json:"-"`

	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Kind:       KindValidation,
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Kind:       KindNotFound,
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInactive reports a referenced record that exists but is deactivated (409).
func NewInactive(entity string, id any) *AppError {
	return &AppError{
		Kind:       KindInactive,
		Code:       CodeInactive,
		Message:    fmt.Sprintf("%s inactive", entity),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInsufficientStock creates a stock shortage error (409).
// product is the display name used in the message; available is what is on hand.
func NewInsufficientStock(productID, product string, requested, available int64) *AppError {
	return &AppError{
		Kind:       KindInsufficientStock,
		Code:       CodeInsufficientStock,
		Message:    fmt.Sprintf("Not enough stock for %s. Available: %d", product, available),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"product_id": productID,
			"requested":  requested,
			"available":  available,
		},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Kind:       KindInternal,
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Kind:       KindUnauthorized,
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Kind:       KindForbidden,
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewIdempotencyConflict creates error when operation is already in progress
func NewIdempotencyConflict(key string) *AppError {
	return &AppError{
		Kind:       KindConflict,
		Code:       CodeIdempotency,
		Message:    "Operation already in progress or completed",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// NewIdempotencyMismatch is returned when the same idempotency key is reused for
// a different request (different user/operation/body hash).
func NewIdempotencyMismatch(key string) *AppError {
	return &AppError{
		Kind:       KindConflict,
		Code:       CodeIdempotency,
		Message:    "Idempotency key mismatch",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Kind:       KindConflict,
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewConcurrentUpdate reports a transaction aborted by a lock conflict (409).
// Nothing was written and the request can be sent again.
func NewConcurrentUpdate() *AppError {
	return &AppError{
		Kind:       KindConflict,
		Code:       CodeRetry,
		Message:    "Concurrent update, please retry",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"retryable": true},
	}
}

// NewAlreadyExists creates a duplicate entry error without naming the field (409).
func NewAlreadyExists(message string) *AppError {
	return &AppError{
		Kind:       KindDuplicate,
		Code:       CodeDuplicate,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Kind:       KindDuplicate,
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the Kind of err. Errors that are not AppError are internal.
func KindOf(err error) Kind {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is KindNotFound
func IsNotFound(err error) bool {
	return Is(err, KindNotFound)
}

// IsInsufficientStock checks if error is KindInsufficientStock
func IsInsufficientStock(err error) bool {
	return Is(err, KindInsufficientStock)
}
