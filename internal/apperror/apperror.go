// Package apperror defines the error taxonomy shared by use cases and transports.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindNotFound        Kind = "NOT_FOUND"
	KindBusinessRule    Kind = "BUSINESS_RULE_VIOLATION"
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindUnexpected      Kind = "UNEXPECTED_ERROR"
)

// FieldError describes one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for i, f := range e.Fields {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s %s", f.Field, f.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func BusinessRule(message string, err error) *Error {
	return &Error{Kind: KindBusinessRule, Message: message, Err: err}
}

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

func Unexpected(message string, err error) *Error {
	return &Error{Kind: KindUnexpected, Message: message, Err: err}
}

// KindOf classifies any error; errors outside the taxonomy are unexpected.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FieldErrors accumulates validation failures before they are returned as one error.
type FieldErrors []FieldError

func (fe *FieldErrors) Add(field, message string) {
	*fe = append(*fe, FieldError{Field: field, Message: message})
}

func (fe FieldErrors) Err(message string) error {
	if len(fe) == 0 {
		return nil
	}
	return Validation(message, fe...)
}
