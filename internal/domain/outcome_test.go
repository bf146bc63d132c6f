package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCard(t *testing.T, word string, source Source) *Card {
	t.Helper()
	raw := validRawCard()
	card, err := NewCardValidator(DefaultValidationLimits()).Validate(word, raw, source, time.Now())
	require.NoError(t, err)
	return card
}

func TestNewRunSummary(t *testing.T) {
	t.Parallel()

	apple := mustCard(t, "apple", SourceModel)
	pear := mustCard(t, "pear", SourceMock)
	start := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)

	outcomes := []Outcome{
		Succeeded(apple),
		Failed("banana", FailureTimeout, "deadline exceeded"),
		Succeeded(apple),
		Succeeded(pear),
		Failed("kiwi", FailureValidation, "missing memory_tip"),
	}

	summary := NewRunSummary(uuid.New(), outcomes, 4, 1, false, start, start.Add(2*time.Second))

	assert.Equal(t, 5, summary.Requested)
	assert.Equal(t, 4, summary.Distinct)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 2, summary.SucceededModel)
	assert.Equal(t, 1, summary.SucceededMock)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 1, summary.CacheHits)
	assert.Equal(t, summary.Requested, summary.Succeeded+summary.Failed)
	assert.Equal(t, map[FailureKind]int{FailureTimeout: 1, FailureValidation: 1}, summary.ErrorKinds)
	assert.InDelta(t, 0.6, summary.SuccessRate(), 0.0001)
	assert.Equal(t, 2*time.Second, summary.Duration())
	assert.Equal(t, []*Card{apple, pear}, summary.Cards(), "cards should be distinct and in input order")
}

func TestNewDeck(t *testing.T) {
	t.Parallel()

	apple := mustCard(t, "apple", SourceModel)

	t.Run("builds_from_validated_cards", func(t *testing.T) {
		deck, err := NewDeck(" Fruit ", "fruit words", []*Card{apple}, DeckOptions{})
		require.NoError(t, err)
		assert.Equal(t, "Fruit", deck.Name)
		assert.Equal(t, DefaultCharset, deck.Charset)
		assert.Equal(t, 1, deck.Len())
	})

	t.Run("rejects_empty_without_ack", func(t *testing.T) {
		_, err := NewDeck("Fruit", "", nil, DeckOptions{})
		assert.ErrorIs(t, err, ErrEmptyDeck)

		deck, err := NewDeck("Fruit", "", nil, DeckOptions{AllowEmpty: true})
		require.NoError(t, err)
		assert.Equal(t, 0, deck.Len())
		assert.True(t, deck.AllowEmpty)
	})

	t.Run("rejects_unvalidated_card", func(t *testing.T) {
		forged := &Card{Word: "forged", Meaning: "not checked"}
		_, err := NewDeck("Fruit", "", []*Card{apple, forged}, DeckOptions{})
		assert.ErrorIs(t, err, ErrUnvalidatedCard)
	})

	t.Run("audio_references", func(t *testing.T) {
		deck, err := NewDeck("Fruit", "", []*Card{apple}, DeckOptions{})
		require.NoError(t, err)

		deck.AttachAudio("apple", "https://example.com/apple.mp3")
		deck.AttachAudio("pear", "")

		ref, ok := deck.Audio("apple")
		assert.True(t, ok)
		assert.Equal(t, "https://example.com/apple.mp3", ref)
		_, ok = deck.Audio("pear")
		assert.False(t, ok)
	})
}

func TestDeck_Check(t *testing.T) {
	t.Parallel()

	apple := mustCard(t, "apple", SourceModel)

	tests := []struct {
		name    string
		deck    *Deck
		wantErr error
	}{
		{name: "built_by_constructor", deck: func() *Deck {
			d, err := NewDeck("Fruit", "", []*Card{apple}, DeckOptions{})
			require.NoError(t, err)
			return d
		}()},
		{name: "literal_empty", deck: &Deck{Name: "x"}, wantErr: ErrEmptyDeck},
		{name: "literal_empty_acknowledged", deck: &Deck{Name: "x", AllowEmpty: true}},
		{name: "literal_unvalidated_card", deck: &Deck{Name: "x", Cards: []*Card{apple, {Word: "forged"}}}, wantErr: ErrUnvalidatedCard},
		{name: "literal_nil_card", deck: &Deck{Name: "x", Cards: []*Card{nil}}, wantErr: ErrUnvalidatedCard},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.deck.Check()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestDeck_AttachAudioOnLiteral(t *testing.T) {
	t.Parallel()

	deck := &Deck{Name: "x"}
	assert.NotPanics(t, func() { deck.AttachAudio("apple", "/tmp/apple.mp3") })

	ref, ok := deck.Audio("apple")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/apple.mp3", ref)
}

func TestCard_Tags(t *testing.T) {
	t.Parallel()

	card := mustCard(t, "apple", SourceMock)
	assert.Equal(t, []string{"english", "vocabulary", "pos_n", "tip_homophone", "mock"}, card.Tags())
}
