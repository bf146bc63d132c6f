package generation

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/phrazzld/wordcards/internal/domain"
)

// SystemPrompt is sent as the system message by providers that support one.
const SystemPrompt = "You are an English vocabulary coach who writes concise, accurate flashcards " +
	"for Chinese-speaking learners. Always answer with a single JSON object and nothing else."

const cardPromptText = `Create a vocabulary flashcard for the English word "{{.Word}}".

Return a JSON object with exactly these keys:
- "word": "{{.Word}}"
- "phonetic": the IPA transcription between slashes, for example /ˈæp.əl/
- "part_of_speech": the abbreviated part of speech (n., v., adj., adv., prep., conj., pron., interj.)
- "meaning": the most common meaning in Simplified Chinese, at most 50 characters
- "memory_tip": an object {"type": one of {{.TipKinds}}, "content": a short mnemonic in Chinese}
- "examples": an array of {{.ExampleCount}} natural English sentences that use the word
- "synonyms": an array of {{.SynonymCount}} synonyms, each formatted as "synonym - short Chinese gloss"
- "confusables": an array of {{.ConfusableCount}} easily confused words, each formatted as "word - short Chinese gloss"

Do not wrap the JSON in markdown and do not add commentary.`

var cardPrompt = template.Must(template.New("card").Parse(cardPromptText))

type promptData struct {
	Word            string
	ExampleCount    int
	SynonymCount    int
	ConfusableCount int
	TipKinds        string
}

// BuildPrompt renders the user prompt for req.
func BuildPrompt(req Request) (string, error) {
	if req.Word == "" {
		return "", fmt.Errorf("%w: word cannot be empty", domain.ErrInvalidWord)
	}

	kinds := make([]string, 0, len(req.Params.TipKinds))
	for _, kind := range req.Params.TipKinds {
		kinds = append(kinds, fmt.Sprintf("%q", string(kind)))
	}

	data := promptData{
		Word:            req.Word,
		ExampleCount:    req.Params.ExampleCount,
		SynonymCount:    req.Params.SynonymCount,
		ConfusableCount: req.Params.ConfusableCount,
		TipKinds:        strings.Join(kinds, ", "),
	}

	var buf bytes.Buffer
	if err := cardPrompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
