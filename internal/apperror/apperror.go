// Package apperror defines the error kinds returned by services and how they
// map onto HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "Unauthenticated"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindValidation:
		return "ValidationError"
	case KindConflict:
		return "Conflict"
	case KindConfig:
		return "ConfigError"
	}
	return "UnexpectedError"
}

// Status is the HTTP status a kind is reported with.
func (k Kind) Status() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Error is a domain failure. Code is a stable machine-readable reason such as
// "EmptyCart"; Details is rendered into the response body as-is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind and code so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Code == "" || t.Code == e.Code)
}

// WithDetails returns a copy carrying details, leaving sentinels untouched.
func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, "Unauthorized", message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, "Forbidden", message)
}

func NotFound(what string) *Error {
	return New(KindNotFound, "NotFound", what+" not found")
}

func Validation(message string) *Error {
	return New(KindValidation, "ValidationError", message)
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

func Config(message string, err error) *Error {
	return &Error{Kind: KindConfig, Code: "ConfigError", Message: message, Err: err}
}

// KindOf reports the kind of err, KindUnexpected if it carries none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}
