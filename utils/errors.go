package utils

import (
	"errors"
	"fmt"
	"strings"
)

type Code string

const (
	CodeValidation       Code = "VALIDATION"
	CodeConflict         Code = "CONFLICT"
	CodeNotFound         Code = "NOT_FOUND"
	CodeTransport        Code = "TRANSPORT"
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeCancelled        Code = "CANCELLED"
	CodeInternal         Code = "INTERNAL"
)

type AppError struct {
	Code    Code
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.ToLower(strings.ReplaceAll(string(e.Code), "_", " "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is lets the message-less class sentinels (ErrConflict, ErrNotFound, ...)
// match every AppError with the same code. Sentinels with a message only
// match themselves.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t.Message != "" {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrValidation      = &AppError{Code: CodeValidation}
	ErrConflict        = &AppError{Code: CodeConflict}
	ErrNotFound        = &AppError{Code: CodeNotFound}
	ErrTransport       = &AppError{Code: CodeTransport}
	ErrUnauthenticated = &AppError{Code: CodeUnauthenticated}
	ErrForbidden       = &AppError{Code: CodePermissionDenied}
	ErrCancelled       = &AppError{Code: CodeCancelled}

	ErrEmptyText = Validation("text must not be empty")
	ErrInFlight  = Validation("a previous request is still in progress")
)

func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func Validation(msg string) error { return New(CodeValidation, msg) }
func Conflict(msg string) error { return New(CodeConflict, msg) }
func NotFound(msg string) error { return New(CodeNotFound, msg) }
func Unauthenticated(msg string) error { return New(CodeUnauthenticated, msg) }
func Forbidden(msg string) error { return New(CodePermissionDenied, msg) }
func Cancelled(msg string) error { return New(CodeCancelled, msg) }

func Transport(msg string, cause error) error {
	return Wrap(CodeTransport, msg, cause)
}

// CodeOf returns the taxonomy code of err, CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Message returns the user-facing text of err, without the wrapped cause.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}

// Retryable reports whether err came from the transport and the same call
// may be issued again.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransport)
}

// Resync reports whether the backend rejected a state transition because the
// client's view is stale.
func Resync(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound)
}
