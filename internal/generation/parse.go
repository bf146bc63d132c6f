package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phrazzld/wordcards/internal/domain"
)

// ParseRawCard decodes a model's text answer into a RawCard. Models often wrap
// the JSON in a markdown code fence or add a sentence around it, so the fence
// is stripped and the outermost {...} span is decoded.
func ParseRawCard(text string) (*domain.RawCard, error) {
	body, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var card domain.RawCard
	if err := json.Unmarshal([]byte(body), &card); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
	}
	return &card, nil
}

func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}

	if start := strings.Index(text, "```"); start >= 0 {
		inner := text[start+3:]
		// Drop the language tag on the opening fence line.
		if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
			inner = inner[nl+1:]
		}
		if end := strings.LastIndex(inner, "```"); end >= 0 {
			inner = inner[:end]
		}
		text = inner
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object in response", ErrInvalidResponse)
	}
	return text[start : end+1], nil
}
