package export

import (
	"errors"
	"fmt"
)

// ErrEncoding is matched by every EncodingError.
var ErrEncoding = errors.New("encoding failed")

// EncodingErrorKind classifies an encoding failure.
type EncodingErrorKind string

// Encoding error kinds.
const (
	KindIOFailure         EncodingErrorKind = "io_failure"
	KindUnsupportedFormat EncodingErrorKind = "unsupported_format"
	KindInvalidDeck       EncodingErrorKind = "invalid_deck"
)

// EncodingError reports why a deck could not be written.
type EncodingError struct {
	Kind   EncodingErrorKind
	Format Format
	Err    error
}

// Error implements the error interface.
func (e *EncodingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("encoding %s deck: %s", e.Format, e.Kind)
	}
	return fmt.Sprintf("encoding %s deck: %s: %v", e.Format, e.Kind, e.Err)
}

// Unwrap returns ErrEncoding and the underlying cause.
func (e *EncodingError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrEncoding}
	}
	return []error{ErrEncoding, e.Err}
}

func ioFailure(format Format, err error) *EncodingError {
	return &EncodingError{Kind: KindIOFailure, Format: format, Err: err}
}

func unsupportedFormat(format Format) *EncodingError {
	return &EncodingError{
		Kind:   KindUnsupportedFormat,
		Format: format,
		Err:    fmt.Errorf("unknown format %q", format),
	}
}

// IsKind reports whether err is an EncodingError of kind.
func IsKind(err error, kind EncodingErrorKind) bool {
	var encErr *EncodingError
	return errors.As(err, &encErr) && encErr.Kind == kind
}
