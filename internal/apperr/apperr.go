// Package apperr defines the closed set of error kinds the service layer
// may fail with. Handlers translate a kind into an HTTP status exactly
// once, so individual call sites never pick status codes ad hoc.
package apperr

import "errors"

// Kind classifies a failure. Internal is the zero value so that any error
// escaping without an explicit classification is treated as a server
// fault, logged, and never detailed to the client.
type Kind int

const (
	Internal Kind = iota
	BadRequest
	Unauthorized
	NotFound
	Conflict
)

// Error carries a kind, a client-safe message and an optional underlying
// cause. The cause is for server-side logs only.
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

// New builds an Error without an underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, defaulting to Internal for errors
// that did not originate in the service layer.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf extracts the client-safe message from err. Unclassified
// errors collapse to a generic message so internal details never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
