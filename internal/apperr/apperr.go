// Package apperr defines the error kinds every operation boundary maps to
// a user-visible {kind, message} response.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Validation         Kind = "validation"
	Conflict           Kind = "conflict"
	Authentication     Kind = "authentication"
	UnknownSymbol      Kind = "unknown_symbol"
	InsufficientFunds  Kind = "insufficient_funds"
	NoHolding          Kind = "no_holding"
	InsufficientShares Kind = "insufficient_shares"
	Internal           Kind = "internal"
)

// Error carries a kind and a human-readable message. Err, when set, is the
// underlying cause and is never shown to the user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a domain error.
func E(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a domain error around a cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err; anything unrecognized is Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message extracts the user-visible message from err; unrecognized errors
// get a generic one so internals never leak.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "something went wrong"
}
