package generation_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appleJSON = `{
  "word": "apple",
  "phonetic": "/ˈæp.əl/",
  "part_of_speech": "n.",
  "meaning": "苹果",
  "memory_tip": {"type": "谐音法", "content": "爱剖：爱剖开苹果"},
  "examples": ["She ate an apple."],
  "synonyms": ["pome - 梨果"],
  "confusables": ["apply - 申请"]
}`

func TestParseRawCard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "bare_json", input: appleJSON},
		{name: "json_fence", input: "```json\n" + appleJSON + "\n```"},
		{name: "plain_fence", input: "```\n" + appleJSON + "\n```"},
		{name: "prose_around", input: "Sure! Here is the card:\n" + appleJSON + "\nHope this helps."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			card, err := generation.ParseRawCard(tt.input)

			require.NoError(t, err)
			assert.Equal(t, "/ˈæp.əl/", card.Phonetic)
			require.NotNil(t, card.MemoryTip)
			assert.Equal(t, domain.TipKind("谐音法"), card.MemoryTip.Kind)
			assert.Equal(t, []domain.Confusable{{Word: "apply", Gloss: "申请"}}, card.Confusables)
		})
	}
}

func TestParseRawCard_Invalid(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"I cannot help with that.",
		`{"phonetic": "/x/", "examples": [}`,
	}

	for _, input := range inputs {
		_, err := generation.ParseRawCard(input)
		assert.ErrorIs(t, err, generation.ErrInvalidResponse, "input %q", input)
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	params := domain.GenerationParams{
		ExampleCount:    4,
		SynonymCount:    2,
		ConfusableCount: 1,
		TipKinds:        []domain.TipKind{domain.TipRoot, domain.TipStory},
	}

	prompt, err := generation.BuildPrompt(generation.Request{Word: "ephemeral", Params: params})

	require.NoError(t, err)
	assert.Contains(t, prompt, `"ephemeral"`)
	assert.Contains(t, prompt, "array of 4 natural English sentences")
	assert.Contains(t, prompt, "array of 2 synonyms")
	assert.Contains(t, prompt, "array of 1 easily confused words")
	assert.Contains(t, prompt, `"root", "story"`)
	assert.False(t, strings.Contains(prompt, "&#34;"), "prompt must not be HTML-escaped")

	_, err = generation.BuildPrompt(generation.Request{})
	assert.ErrorIs(t, err, domain.ErrInvalidWord)
}

func TestMockProvider_ProducesValidDeterministicCards(t *testing.T) {
	t.Parallel()

	mock := generation.NewMockProvider()
	params := domain.DefaultGenerationParams()
	req := generation.Request{Word: "banana", Params: params}

	first, err := mock.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := mock.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first.Examples, params.ExampleCount)
	assert.Len(t, first.Synonyms, params.SynonymCount)
	assert.Len(t, first.Confusables, params.ConfusableCount)

	card, err := domain.NewCardValidator(domain.DefaultValidationLimits()).
		Validate("banana", first, domain.SourceMock, time.Now())
	require.NoError(t, err)
	assert.True(t, card.IsMock())
}

func TestMockProvider_HonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := generation.NewMockProvider().Generate(ctx, generation.Request{Word: "kiwi"})
	assert.ErrorIs(t, err, context.Canceled)
}
