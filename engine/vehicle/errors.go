package vehicle

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation failures.
var (
	ErrInvalidVehicle = errors.New("invalid vehicle")
	ErrMissingSource  = errors.New("missing source")
	ErrMissingURL     = errors.New("missing source URL")
	ErrBadPageID      = errors.New("page id must be >= 1")
	ErrNonPositive    = errors.New("value must be positive")
	ErrInvalidContact = errors.New("invalid contact")
	ErrCountMismatch  = errors.New("count does not match results")
)

// ValidationError wraps a sentinel with context.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

// Unwrap exposes both the specific sentinel and ErrInvalidVehicle so callers
// can match either.
func (e *ValidationError) Unwrap() []error { return []error{e.Wrapped, ErrInvalidVehicle} }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
