// Package apperrors defines the service error taxonomy: expected data
// absence is not an error at all (metrics degrade instead), collaborator
// failures and internal faults are categorized AppErrors with an HTTP
// status for the API boundary.
package apperrors

import (
	"errors"
	"net/http"
	"time"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
)

// Category classifies an error for handling and reporting.
type Category string

const (
	CategoryValidation  Category = "validation"
	CategoryNetwork     Category = "network"
	CategoryTimeout     Category = "timeout"
	CategoryExternalAPI Category = "external_api"
	CategoryNotFound    Category = "not_found"
	CategoryInternal    Category = "internal"
)

// AppError wraps an errbuilder error with the category and HTTP status the
// service layers need.
type AppError struct {
	*errbuilder.ErrBuilder
	Category   Category  `json:"category"`
	HTTPStatus int       `json:"http_status"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e *AppError) Error() string {
	return string(e.Category) + ": " + e.ErrBuilder.Msg
}

func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

func newAppError(builder *errbuilder.ErrBuilder, category Category, status int) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		HTTPStatus: status,
		Timestamp:  time.Now(),
	}
}

// NewValidationError reports malformed caller input.
func NewValidationError(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)
	return newAppError(builder, CategoryValidation, http.StatusBadRequest)
}

// NewNetworkError reports a failed call to an external collaborator.
func NewNetworkError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return newAppError(builder, CategoryNetwork, http.StatusBadGateway)
}

// NewTimeoutError reports an external call that exceeded its deadline.
func NewTimeoutError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeDeadlineExceeded).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return newAppError(builder, CategoryTimeout, http.StatusGatewayTimeout)
}

// NewExternalAPIError reports a non-success response from a secondary
// service (hub API, GitHub).
func NewExternalAPIError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return newAppError(builder, CategoryExternalAPI, http.StatusBadGateway)
}

// NewNotFoundError reports a missing artifact or record.
func NewNotFoundError(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(message)
	return newAppError(builder, CategoryNotFound, http.StatusNotFound)
}

// NewInternalError reports an unexpected fault inside the service.
func NewInternalError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return newAppError(builder, CategoryInternal, http.StatusInternalServerError)
}

// CategoryOf extracts the category from any error chain, defaulting to
// internal for unclassified errors.
func CategoryOf(err error) Category {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Category
	}
	return CategoryInternal
}

// HTTPStatusOf maps any error to the status the API layer should answer
// with.
func HTTPStatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsRetryable reports whether a call worth retrying produced this error.
// Validation and not-found failures are terminal; network flakiness and
// timeouts are not.
func IsRetryable(err error) bool {
	switch CategoryOf(err) {
	case CategoryNetwork, CategoryTimeout, CategoryExternalAPI:
		return true
	}
	return false
}
