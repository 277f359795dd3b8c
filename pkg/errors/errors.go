package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError pairs a stable machine code and client-safe message with the
// HTTP status it maps to. The Internal error never reaches the client; it
// exists for logs and errors.Is checks.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap exposes the internal error to errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal clones the error and attaches err as its internal cause, so
// the shared sentinels below are never mutated.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	clone := *e
	clone.Internal = err
	return &clone
}

// Sentinels shared across handlers and middleware.
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid email or password",
		StatusCode: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Permission denied",
		StatusCode: http.StatusForbidden,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrConflict = &AppError{
		Code:       "CONFLICT",
		Message:    "Request conflicts with the current resource state",
		StatusCode: http.StatusConflict,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrIntegrationUnconfigured = &AppError{
		Code:       "INTEGRATION_UNCONFIGURED",
		Message:    "Upstream integration is not configured",
		StatusCode: http.StatusServiceUnavailable,
	}

	ErrUpstreamRateLimited = &AppError{
		Code:       "UPSTREAM_RATE_LIMITED",
		Message:    "Upstream integration rejected the request due to rate limiting",
		StatusCode: http.StatusTooManyRequests,
	}
)

// New builds an AppError from its three parts.
func New(code, message string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode}
}

// Wrap hides err behind a generic 500 message while preserving it as the
// internal cause.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError extracts the AppError inside err, or falls back to a wrapped
// ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest reports a 400 with a caller-supplied message.
func NewBadRequest(message string) *AppError {
	return New(ErrBadRequest.Code, message, ErrBadRequest.StatusCode)
}

// NewConflict reports a rejected state transition or dependent-record conflict.
func NewConflict(message string) *AppError {
	return New(ErrConflict.Code, message, ErrConflict.StatusCode)
}
