package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/generation"
)

// Provider implements generation.Provider for testing
type Provider struct {
	// NameValue is returned by Name; defaults to "fake"
	NameValue string

	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, req generation.Request) (*domain.RawCard, error)

	// Default response values used when GenerateFn is nil
	Card *domain.RawCard
	Err  error

	mu    sync.Mutex
	words []string
}

// Name implements generation.Provider
func (m *Provider) Name() string {
	if m.NameValue == "" {
		return "fake"
	}
	return m.NameValue
}

// Generate implements generation.Provider
func (m *Provider) Generate(ctx context.Context, req generation.Request) (*domain.RawCard, error) {
	m.mu.Lock()
	m.words = append(m.words, req.Word)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, req)
	}
	return m.Card, m.Err
}

// CallCount returns how many times Generate was called
func (m *Provider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.words)
}

// Words returns the words passed to Generate, in call order
func (m *Provider) Words() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.words))
	copy(out, m.words)
	return out
}

// CallsFor returns how many times Generate was called for word
func (m *Provider) CallsFor(word string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, w := range m.words {
		if w == word {
			n++
		}
	}
	return n
}

// RawCard returns a raw card for word that passes default validation.
func RawCard(word string) *domain.RawCard {
	return &domain.RawCard{
		Word:         word,
		Phonetic:     "/" + word + "/",
		PartOfSpeech: "n.",
		Meaning:      "meaning of " + word,
		MemoryTip:    &domain.MemoryTip{Kind: domain.TipSplit, Content: "split " + word + " into parts"},
		Examples:     []string{"I like " + word + "."},
		Synonyms:     []string{},
		Confusables:  []domain.Confusable{},
	}
}
