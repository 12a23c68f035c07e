// Package apperr defines the typed errors shared by every module.
//
// Errors cross module boundaries inside request-reply responses, so Error is
// JSON-serializable and keeps its Kind on the far side.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and transports.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindForbidden       Kind = "forbidden"
	KindUnauthenticated Kind = "unauthenticated"
	KindInvalidInput    Kind = "invalid_input"
	KindConflict        Kind = "conflict"
	KindInternal        Kind = "internal"
)

// Error is a classified, user-presentable error.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same Kind, so errors.Is(err, apperr.ErrNotFound) works
// regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrInvalidInput    = &Error{Kind: KindInvalidInput}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrInternal        = &Error{Kind: KindInternal}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, format, args...)
}

func Unauthenticated(format string, args ...any) *Error {
	return New(KindUnauthenticated, format, args...)
}

func InvalidInput(format string, args ...any) *Error {
	return New(KindInvalidInput, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

// Internal describes an unexpected failure. Transports log the message and
// answer with a generic one.
func Internal(format string, args ...any) *Error {
	return New(KindInternal, format, args...)
}

// KindOf returns the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// From converts any error into an *Error. Unclassified errors become internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindInternal, Message: err.Error()}
}

// HTTPStatus maps a Kind onto a response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindInvalidInput, KindConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
