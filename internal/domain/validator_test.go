package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRawCard() *RawCard {
	return &RawCard{
		Word:         "apple",
		Phonetic:     "/ˈæp.əl/",
		PartOfSpeech: "noun",
		Meaning:      "苹果",
		MemoryTip:    &MemoryTip{Kind: "谐音法", Content: "ap-pull: pull an apple off the tree"},
		Examples:     []string{"She ate an apple.", "An apple a day keeps the doctor away."},
		Synonyms:     []string{"pome - botanical term"},
		Confusables:  []Confusable{{Word: "apply", Gloss: "to make a request"}},
	}
}

func TestCardValidator_Validate_Success(t *testing.T) {
	t.Parallel()

	v := NewCardValidator(DefaultValidationLimits())
	now := time.Now()

	card, err := v.Validate("apple", validRawCard(), SourceModel, now)

	require.NoError(t, err)
	require.NotNil(t, card)
	assert.True(t, card.Validated())
	assert.Equal(t, "apple", card.Word)
	assert.Equal(t, "n.", card.PartOfSpeech, "part of speech should be normalized")
	assert.Equal(t, TipHomophone, card.MemoryTip.Kind, "tip kind should be canonical")
	assert.Equal(t, SourceModel, card.Source)
	assert.Equal(t, now, card.GeneratedAt)
	assert.Len(t, card.Examples, 2)
}

func TestCardValidator_Validate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(r *RawCard)
		wantKind  ValidationKind
		wantField string
	}{
		{
			name:      "missing_memory_tip",
			mutate:    func(r *RawCard) { r.MemoryTip = nil },
			wantKind:  ValidationMissingField,
			wantField: "memory_tip",
		},
		{
			name:      "missing_phonetic",
			mutate:    func(r *RawCard) { r.Phonetic = "" },
			wantKind:  ValidationMissingField,
			wantField: "phonetic",
		},
		{
			name:      "blank_meaning",
			mutate:    func(r *RawCard) { r.Meaning = "   " },
			wantKind:  ValidationEmptyField,
			wantField: "meaning",
		},
		{
			name:      "unknown_tip_kind",
			mutate:    func(r *RawCard) { r.MemoryTip.Kind = "telepathy" },
			wantKind:  ValidationMissingField,
			wantField: "memory_tip.type",
		},
		{
			name:      "blank_tip_content",
			mutate:    func(r *RawCard) { r.MemoryTip.Content = "\t" },
			wantKind:  ValidationEmptyField,
			wantField: "memory_tip.content",
		},
		{
			name:      "no_examples_key",
			mutate:    func(r *RawCard) { r.Examples = nil },
			wantKind:  ValidationMissingField,
			wantField: "examples",
		},
		{
			name:      "zero_examples",
			mutate:    func(r *RawCard) { r.Examples = []string{} },
			wantKind:  ValidationCountMismatch,
			wantField: "examples",
		},
		{
			name: "too_many_examples",
			mutate: func(r *RawCard) {
				r.Examples = []string{"a.", "b.", "c.", "d.", "e.", "f."}
			},
			wantKind:  ValidationCountMismatch,
			wantField: "examples",
		},
		{
			name:      "blank_example",
			mutate:    func(r *RawCard) { r.Examples = []string{"fine", " "} },
			wantKind:  ValidationEmptyField,
			wantField: "examples[1]",
		},
		{
			name: "too_many_confusables",
			mutate: func(r *RawCard) {
				for i := 0; i < 6; i++ {
					r.Confusables = append(r.Confusables, Confusable{Word: "x", Gloss: "y"})
				}
			},
			wantKind:  ValidationCountMismatch,
			wantField: "confusables",
		},
		{
			name:      "confusable_without_gloss",
			mutate:    func(r *RawCard) { r.Confusables = []Confusable{{Word: "apply"}} },
			wantKind:  ValidationMissingField,
			wantField: "confusables[0].gloss",
		},
		{
			name:      "invalid_utf8",
			mutate:    func(r *RawCard) { r.Meaning = "bad \xff byte" },
			wantKind:  ValidationEncoding,
			wantField: "meaning",
		},
	}

	v := NewCardValidator(DefaultValidationLimits())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw := validRawCard()
			tt.mutate(raw)

			card, err := v.Validate("apple", raw, SourceModel, time.Now())

			require.Error(t, err)
			assert.Nil(t, card)
			assert.True(t, errors.Is(err, ErrValidation))

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantKind, vErr.Kind)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestCardValidator_EmptySetsAllowed(t *testing.T) {
	t.Parallel()

	raw := validRawCard()
	raw.Synonyms = nil
	raw.Confusables = []Confusable{}

	card, err := NewCardValidator(DefaultValidationLimits()).Validate("apple", raw, SourceMock, time.Now())

	require.NoError(t, err)
	assert.Empty(t, card.Synonyms)
	assert.Empty(t, card.Confusables)
	assert.True(t, card.IsMock())
}

func TestCardValidator_FirstFailingFieldWins(t *testing.T) {
	t.Parallel()

	raw := validRawCard()
	raw.PartOfSpeech = ""
	raw.MemoryTip = nil

	_, err := NewCardValidator(DefaultValidationLimits()).Validate("apple", raw, SourceModel, time.Now())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "part_of_speech", vErr.Field)
}

func TestConfusable_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var raw RawCard
	err := json.Unmarshal(
		[]byte(`{"confusables": ["apply - to request", {"word": "ample", "gloss": "enough"}, "appeal"]}`),
		&raw,
	)

	require.NoError(t, err)
	assert.Equal(t, []Confusable{
		{Word: "apply", Gloss: "to request"},
		{Word: "ample", Gloss: "enough"},
		{Word: "appeal"},
	}, raw.Confusables)
}

func TestNormalizeWord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "  Apple ", want: "apple"},
		{in: "well-being", want: "well-being"},
		{in: "o'clock", want: "o'clock"},
		{in: "", wantErr: true},
		{in: "-dash", wantErr: true},
		{in: "naïve", wantErr: true},
		{in: "two words", wantErr: true},
	}

	for _, tt := range tests {
		got, err := NormalizeWord(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidWord, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestGenerationParams_Validate(t *testing.T) {
	t.Parallel()

	limits := DefaultValidationLimits()
	assert.NoError(t, DefaultGenerationParams().Validate(limits))

	params := DefaultGenerationParams()
	params.ExampleCount = limits.MaxExamples + 1
	assert.ErrorIs(t, params.Validate(limits), ErrInvalidParams)

	params = DefaultGenerationParams()
	params.TipKinds = []TipKind{"mind-reading"}
	assert.ErrorIs(t, params.Validate(limits), ErrInvalidParams)
}
