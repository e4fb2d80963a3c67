// Package storeerr defines the structured error kinds returned by the
// in-memory stores. Each error couples a machine-checkable Kind with the
// human readable message that is surfaced to tool callers.
package storeerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes a store failure.
type Kind string

const (
	// KindNotFound signals that a referenced identifier is absent.
	KindNotFound Kind = "not_found"
	// KindInvalidEnum signals a value outside a closed set.
	KindInvalidEnum Kind = "invalid_enum"
	// KindInvalidFormat signals a malformed value (e.g. a date string).
	KindInvalidFormat Kind = "invalid_format"
	// KindConflict signals a collision with existing state.
	KindConflict Kind = "conflict"
)

// Error is the structured error returned by store operations.
type Error struct {
	Kind    Kind     `json:"kind"`
	Field   string   `json:"field,omitempty"`
	Value   string   `json:"value,omitempty"`
	Allowed []string `json:"allowed,omitempty"`
	Message string   `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// Is reports whether target is an *Error of the same kind. It lets callers use
// errors.Is(err, &storeerr.Error{Kind: storeerr.KindNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// NotFound builds a not_found error. msg is the full human message.
func NotFound(field, value, msg string) *Error {
	return &Error{Kind: KindNotFound, Field: field, Value: value, Message: msg}
}

// InvalidEnum builds an invalid_enum error whose message lists the allowed
// values, e.g. "Estado 'x' no válido. Estados válidos: a, b".
func InvalidEnum(field, value, label, validLabel string, allowed []string) *Error {
	return &Error{
		Kind:    KindInvalidEnum,
		Field:   field,
		Value:   value,
		Allowed: append([]string(nil), allowed...),
		Message: fmt.Sprintf("%s '%s' no válido. %s: %s", label, value, validLabel, strings.Join(allowed, ", ")),
	}
}

// InvalidEnumf is InvalidEnum with a caller supplied message format. format
// receives the offending value and the comma-joined allowed set.
func InvalidEnumf(field, value string, allowed []string, format string) *Error {
	return &Error{
		Kind:    KindInvalidEnum,
		Field:   field,
		Value:   value,
		Allowed: append([]string(nil), allowed...),
		Message: fmt.Sprintf(format, value, strings.Join(allowed, ", ")),
	}
}

// InvalidFormat builds an invalid_format error.
func InvalidFormat(field, value, msg string) *Error {
	return &Error{Kind: KindInvalidFormat, Field: field, Value: value, Message: msg}
}

// Conflict builds a conflict error.
func Conflict(field, value, msg string) *Error {
	return &Error{Kind: KindConflict, Field: field, Value: value, Message: msg}
}

// KindOf returns the Kind of err, or "" if err is not a store error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return ""
}

// OneOf reports whether v is a member of set.
func OneOf(v string, set []string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}

	return false
}
