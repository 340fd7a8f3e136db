package service

import "errors"

// Error kinds. Handlers map these to HTTP status codes; the request-facing
// message travels in the wrapping Error.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Error pairs an error kind with a human-readable message.
type Error struct {
	kind    error
	message string
}

func (e *Error) Error() string { return e.message }

func (e *Error) Unwrap() error { return e.kind }

func invalid(message string) error {
	return &Error{kind: ErrInvalidInput, message: message}
}

func unauthorized(message string) error {
	return &Error{kind: ErrUnauthorized, message: message}
}

func forbidden(message string) error {
	return &Error{kind: ErrForbidden, message: message}
}

func notFound(message string) error {
	return &Error{kind: ErrNotFound, message: message}
}

func conflict(message string) error {
	return &Error{kind: ErrConflict, message: message}
}

// FieldError is a validation failure tied to a single request field; it
// surfaces as {"<field>": "<message>"} with status 400.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }
