package validation

import "errors"

// ErrInvalid is the kind of every rejected input.
var ErrInvalid = errors.New("invalid input")

// Error is a user-facing validation failure.
type Error struct {
	Field   string
	Message string
}

// NewError builds a validation failure for field.
func NewError(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

func (e *Error) Error() string { return e.Message }

// Unwrap lets errors.Is match ErrInvalid.
func (e *Error) Unwrap() error { return ErrInvalid }
