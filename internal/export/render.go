package export

import (
	"html"
	"strings"

	"github.com/phrazzld/wordcards/internal/domain"
)

// Rendering caps for card fields. The card itself may hold more.
const (
	maxRenderedExamples    = 3
	maxRenderedSynonyms    = 5
	maxRenderedConfusables = 3
)

// listSeparator joins sub-lists in flat formats.
const listSeparator = "; "

func escapeAll(items []string, limit int) []string {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = html.EscapeString(item)
	}
	return out
}

func confusableStrings(confusables []domain.Confusable) []string {
	out := make([]string, len(confusables))
	for i, c := range confusables {
		out[i] = c.String()
	}
	return out
}

func examplesHTML(examples []string) string {
	items := escapeAll(examples, maxRenderedExamples)
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<ol>")
	for _, item := range items {
		b.WriteString("<li>")
		b.WriteString(item)
		b.WriteString("</li>")
	}
	b.WriteString("</ol>")
	return b.String()
}

func synonymsHTML(synonyms []string) string {
	return strings.Join(escapeAll(synonyms, maxRenderedSynonyms), "<br>")
}

func confusablesHTML(confusables []domain.Confusable) string {
	return strings.Join(escapeAll(confusableStrings(confusables), maxRenderedConfusables), "<br>")
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
