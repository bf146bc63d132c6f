package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is the sentinel matched by every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidWord is returned when a requested word cannot be normalized.
	ErrInvalidWord = errors.New("invalid word")

	// ErrInvalidParams is returned when generation parameters are out of range.
	ErrInvalidParams = errors.New("invalid generation parameters")

	// ErrEmptyDeck is returned when a deck would be built from zero cards
	// without an explicit acknowledgment.
	ErrEmptyDeck = errors.New("deck has no cards")

	// ErrUnvalidatedCard is returned when a deck is given a card that did not
	// pass through CardValidator.
	ErrUnvalidatedCard = errors.New("card has not been validated")
)

// ValidationKind classifies why a raw card was rejected.
type ValidationKind string

// Validation kinds.
const (
	ValidationMissingField  ValidationKind = "missing_field"
	ValidationEmptyField    ValidationKind = "empty_field"
	ValidationCountMismatch ValidationKind = "count_mismatch"
	ValidationEncoding      ValidationKind = "encoding_error"
)

// ValidationError names the first field of a raw card that failed a check.
type ValidationError struct {
	Kind   ValidationKind
	Field  string
	Detail string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("validation failed: %s on %q", e.Kind, e.Field)
	}
	return fmt.Sprintf("validation failed: %s on %q: %s", e.Kind, e.Field, e.Detail)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(kind ValidationKind, field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Kind:   kind,
		Field:  field,
		Detail: fmt.Sprintf(format, args...),
	}
}
