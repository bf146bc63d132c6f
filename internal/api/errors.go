package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/wordcards/internal/api/shared"
	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/export"
	"github.com/phrazzld/wordcards/internal/service"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes based on the
// error type, so that no internal type or message reaches the client.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, service.ErrNoWords),
		errors.Is(err, service.ErrTooManyWords),
		errors.Is(err, domain.ErrInvalidParams),
		errors.Is(err, domain.ErrValidation),
		export.IsKind(err, export.KindUnsupportedFormat):
		return http.StatusBadRequest

	// Nothing to encode
	case errors.Is(err, domain.ErrEmptyDeck):
		return http.StatusUnprocessableEntity

	// The run was cut short
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrNoWords):
		return "At least one word is required"
	case errors.Is(err, service.ErrTooManyWords):
		return "Too many words in one request"
	case errors.Is(err, domain.ErrInvalidParams):
		return "Invalid generation parameters"
	case errors.Is(err, domain.ErrValidation):
		return "Invalid request data"
	case export.IsKind(err, export.KindUnsupportedFormat):
		return "Unsupported deck format"
	case errors.Is(err, domain.ErrEmptyDeck):
		return "No cards were generated for the deck"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "Generation did not finish"
	case export.IsKind(err, export.KindIOFailure):
		return "Failed to encode deck"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err. A non-empty message
// replaces the default safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), message, err)
}

// SanitizeValidationError turns a validator error into a message that names
// the field and the failed rule without echoing the input.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}

	fieldErr := validationErrs[0]
	field := strings.ToLower(fieldErr.Field())
	if tag := fieldErr.Tag(); tag != "" {
		return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
	}
	return fmt.Sprintf("Invalid %s", field)
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
