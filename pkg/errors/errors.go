// Package errors defines the error vocabulary shared by the storefront API,
// its client and the stores: sentinels for errors.Is and AppError, which
// carries the message a shopper may see.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrRemote         = errors.New("remote call failed")
)

// kind ties a sentinel to its code and HTTP status.
type kind struct {
	sentinel error
	code     string
	status   int
}

var kinds = []kind{
	{ErrNotFound, "NOT_FOUND", http.StatusNotFound},
	{ErrInvalidInput, "INVALID_INPUT", http.StatusBadRequest},
	{ErrUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized},
	{ErrForbidden, "FORBIDDEN", http.StatusForbidden},
	{ErrConflict, "CONFLICT", http.StatusConflict},
	{ErrServiceUnavail, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
	{ErrInternal, "INTERNAL_ERROR", http.StatusInternalServerError},
}

// AppError is a classified error. Message is the text that may be shown to
// a shopper as-is; it may be empty when the server said nothing useful.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(sentinel error, message string) *AppError {
	for _, k := range kinds {
		if k.sentinel == sentinel {
			return &AppError{Code: k.code, Message: message, Status: k.status, Err: sentinel}
		}
	}
	return &AppError{Code: "REMOTE_ERROR", Message: message, Status: http.StatusBadGateway, Err: sentinel}
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return newError(ErrNotFound, fmt.Sprintf("%s with id %s not found", resource, id))
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return newError(ErrInvalidInput, message)
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return newError(ErrUnauthorized, message)
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return newError(ErrForbidden, message)
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return newError(ErrConflict, message)
}

// Internal creates a 500 error that hides err from the shopper.
func Internal(err error) *AppError {
	e := newError(ErrInternal, "an internal error occurred")
	e.Err = err
	return e
}

// Remote creates an error for a storefront API call the server answered
// with a failure. The message is what the server said, kept verbatim.
func Remote(status int, message string) *AppError {
	return &AppError{Code: "REMOTE_ERROR", Message: message, Status: status, Err: ErrRemote}
}

// FromStatus classifies a failed response: statuses with a sentinel of
// their own keep it, any other status becomes ErrRemote.
func FromStatus(status int, message string) *AppError {
	for _, k := range kinds {
		if k.status == status && k.sentinel != ErrInternal {
			return newError(k.sentinel, message)
		}
	}
	e := Remote(status, message)
	if status >= http.StatusInternalServerError {
		e.Code = "SERVER_ERROR"
	}
	return e
}

// RetryableStatus reports whether a request that got status may succeed
// if sent again.
func RetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return status == http.StatusInternalServerError
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// UserMessage returns the text to show a shopper for err. A non-empty
// AppError message wins; anything else yields fallback.
func UserMessage(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && strings.TrimSpace(appErr.Message) != "" {
		return appErr.Message
	}
	return fallback
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}
