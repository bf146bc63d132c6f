package generation

import (
	"context"
	"fmt"

	"github.com/phrazzld/wordcards/internal/domain"
)

// MockProviderName is the provider name reported for mock-sourced cards.
const MockProviderName = "mock"

// MockProvider synthesizes a structurally valid placeholder card for any
// word. Output depends only on the request, so the same word always yields
// the same card.
type MockProvider struct{}

// NewMockProvider returns a MockProvider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Name implements Provider.
func (m *MockProvider) Name() string {
	return MockProviderName
}

// Generate implements Provider. It never fails unless ctx is already done.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*domain.RawCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	word := req.Word
	tip := domain.TipHomophone
	if len(req.Params.TipKinds) > 0 {
		tip = req.Params.TipKinds[0]
	}

	examples := make([]string, 0, max(req.Params.ExampleCount, 1))
	for i := 0; i < max(req.Params.ExampleCount, 1); i++ {
		examples = append(examples, fmt.Sprintf("This is sample sentence %d for %s.", i+1, word))
	}

	synonyms := make([]string, 0, req.Params.SynonymCount)
	for i := 0; i < req.Params.SynonymCount; i++ {
		synonyms = append(synonyms, fmt.Sprintf("synonym%d - 同义词", i+1))
	}

	confusables := make([]domain.Confusable, 0, req.Params.ConfusableCount)
	for i := 0; i < req.Params.ConfusableCount; i++ {
		confusables = append(confusables, domain.Confusable{
			Word:  fmt.Sprintf("confusable%d", i+1),
			Gloss: "易混词",
		})
	}

	return &domain.RawCard{
		Word:         word,
		Phonetic:     "/" + word + "/",
		PartOfSpeech: "n.",
		Meaning:      "单词 " + word + "（占位释义）",
		MemoryTip: &domain.MemoryTip{
			Kind:    tip,
			Content: fmt.Sprintf("Placeholder tip: say %q slowly and link it to a word you know.", word),
		},
		Examples:    examples,
		Synonyms:    synonyms,
		Confusables: confusables,
	}, nil
}
