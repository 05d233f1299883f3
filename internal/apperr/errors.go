// Package apperr defines the domain error type shared by the stores,
// services, and HTTP layer. Callers match on Kind rather than on error
// identity, and the external message is always safe to return to clients.
package apperr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies a domain failure.
type Kind int

const (
	// KindValidation is malformed or missing input.
	KindValidation Kind = iota + 1
	// KindNotFound is a referenced company or checklist entry that does
	// not exist.
	KindNotFound
	// KindConflict is a uniqueness violation, e.g. a duplicate careers URL.
	KindConflict
	// KindPersistence is an unexpected store failure. Its client-facing
	// message is generic; the wrapped error carries the detail for logs.
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is a domain error with a kind and structured context for logging.
type Error struct {
	Kind      Kind
	Message   string // safe for clients
	CompanyID uuid.UUID
	Field     string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation creates a bad-input error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// ValidationField creates a bad-input error naming the offending field.
func ValidationField(message, field string) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

// NotFound creates a missing-entity error.
func NotFound(message string, companyID uuid.UUID) *Error {
	return &Error{Kind: KindNotFound, Message: message, CompanyID: companyID}
}

// Conflict creates a uniqueness-violation error.
func Conflict(message, field string) *Error {
	return &Error{Kind: KindConflict, Message: message, Field: field}
}

// Persistence wraps an unexpected store failure. The client-facing message
// stays generic so internals never leak.
func Persistence(err error) *Error {
	return &Error{Kind: KindPersistence, Message: "An unexpected error occurred", Err: err}
}

// KindOf extracts the Kind from err, or KindPersistence when err is not a
// domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// From extracts the domain error from err, or nil.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
