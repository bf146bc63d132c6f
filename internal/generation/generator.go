package generation

import (
	"context"

	"github.com/phrazzld/wordcards/internal/domain"
)

// Request is a single word plus the content it should be generated with.
// It is immutable once built.
type Request struct {
	Word   string
	Params domain.GenerationParams
}

// NewRequest normalizes word and pairs it with params.
func NewRequest(word string, params domain.GenerationParams) (Request, error) {
	normalized, err := domain.NormalizeWord(word)
	if err != nil {
		return Request{}, err
	}
	return Request{Word: normalized, Params: params}, nil
}

// Provider defines the interface for generating a raw card from a language
// model. This interface serves as a boundary between the application core and
// external AI/LLM services, following the hexagonal architecture pattern.
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string

	// Generate performs exactly one model call for req.
	//
	// Parameters:
	//   - ctx: Context for the call; its deadline is the per-call timeout
	//   - req: The word and generation parameters
	//
	// Returns:
	//   - The decoded, unvalidated card payload
	//   - A *ProviderError or *TimeoutError describing the failure
	Generate(ctx context.Context, req Request) (*domain.RawCard, error)
}

// Result is what Client returns for a successful generation.
type Result struct {
	// Card is the unvalidated payload.
	Card *domain.RawCard

	// Source is SourceMock when the payload came from the fallback provider.
	Source domain.Source

	// Provider names the provider that produced Card.
	Provider string

	// Attempts counts calls made to the primary provider.
	Attempts int

	// FallbackReason is the primary provider's last error when Source is
	// SourceMock, nil otherwise.
	FallbackReason error
}
