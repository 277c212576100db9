package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies application errors for transport-level mapping.
type ErrorCode string

const (
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeUnavailable  ErrorCode = "UNAVAILABLE"
	CodeInternal     ErrorCode = "INTERNAL"
)

// AppError is the error type returned by domain and application code.
type AppError struct {
	Code    ErrorCode
	Message string
	cause   error
}

// Error returns the error message.
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *AppError) Unwrap() error {
	return e.cause
}

// NewValidationError reports malformed or out-of-range input.
func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeInvalidInput, Message: message}
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(resource, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found: %s", resource, id)}
}

// NewForbiddenError reports an actor acting outside their permissions.
func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

// NewConflictError reports a business-rule conflict (date overlap, wrong
// state, concurrent modification).
func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

// NewInvalidStateError reports an illegal status transition.
func NewInvalidStateError(from, to string) *AppError {
	return &AppError{Code: CodeConflict, Message: fmt.Sprintf("cannot transition booking from %s to %s", from, to)}
}

// NewUnavailableError reports a resource that exists but cannot be booked.
func NewUnavailableError(message string) *AppError {
	return &AppError{Code: CodeUnavailable, Message: message}
}

// NewInternalError wraps an infrastructure failure. The cause is kept for
// server-side logging; callers only see the generic message.
func NewInternalError(cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: "internal error", cause: cause}
}

// CodeOf extracts the error code from err, defaulting to CodeInternal for
// unclassified errors.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
