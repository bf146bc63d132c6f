package api

import (
	"fmt"
	"net/http"

	"github.com/phrazzld/wordcards/internal/api/shared"
	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/service"
)

// decodeAndValidate decodes the request body into v and validates it. It
// writes a 400 response and returns false when either step fails.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// checkWordLimit rejects word lists longer than max.
func checkWordLimit(words []string, max int) error {
	if max > 0 && len(words) > max {
		return fmt.Errorf("%w: %d words, limit is %d", service.ErrTooManyWords, len(words), max)
	}
	return nil
}

// applyOptions returns base with the request overrides applied.
func applyOptions(base domain.GenerationParams, opts GenerationOptions) domain.GenerationParams {
	params := base
	params.TipKinds = append([]domain.TipKind(nil), base.TipKinds...)
	if opts.ExampleCount != nil {
		params.ExampleCount = *opts.ExampleCount
	}
	if opts.SynonymCount != nil {
		params.SynonymCount = *opts.SynonymCount
	}
	if opts.ConfusableCount != nil {
		params.ConfusableCount = *opts.ConfusableCount
	}
	return params
}
