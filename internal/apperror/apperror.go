// Package apperror defines the error taxonomy surfaced to API clients.
// Every failure a handler reports is one of four kinds; the HTTP layer
// maps the kind to a status code and the Message to the JSON body.
package apperror

import "errors"

var (
	// ErrNotFound maps to 404
	ErrNotFound = errors.New("not found")
	// ErrValidation maps to 400 with the first failing rule's message
	ErrValidation = errors.New("validation failed")
	// ErrAuth maps to 400 (wrong credentials, invalid provider token)
	ErrAuth = errors.New("authentication failed")
	// ErrDelivery maps to 400 (mail send failure, state already persisted)
	ErrDelivery = errors.New("delivery failed")
)

// Error carries a user-facing message together with its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NotFound returns a 404-kind error with the given message.
func NotFound(message string) *Error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Validation returns a 400-kind error carrying a validation message.
func Validation(message string) *Error {
	return &Error{Kind: ErrValidation, Message: message}
}

// Auth returns a 400-kind error for failed credential or token checks.
func Auth(message string) *Error {
	return &Error{Kind: ErrAuth, Message: message}
}

// Delivery returns a 400-kind error for failed external delivery.
func Delivery(message string) *Error {
	return &Error{Kind: ErrDelivery, Message: message}
}
