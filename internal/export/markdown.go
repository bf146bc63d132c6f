package export

import (
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/phrazzld/wordcards/internal/domain"
)

var markdownTemplate = template.Must(template.New("deck").Funcs(template.FuncMap{
	"join":        strings.Join,
	"confusables": confusableStrings,
	"percent":     func(f float64) string { return strconv.FormatFloat(f*100, 'f', 1, 64) },
	"add1":        func(i int) int { return i + 1 },
}).Parse(`# {{ .Deck.Name }}
{{ if .Deck.Description }}
{{ .Deck.Description }}
{{ end }}
{{- with .Summary }}
## Summary

| Requested | Succeeded | Mock | Failed | Cache hits | Success rate |
|---|---|---|---|---|---|
| {{ .Requested }} | {{ .Succeeded }} | {{ .SucceededMock }} | {{ .Failed }} | {{ .CacheHits }} | {{ percent .SuccessRate }}% |
{{ if .Partial }}
The run was cancelled before every word finished.
{{ end }}
{{- if .Failures }}
### Failed words
{{ range .Failures }}
- **{{ .Word }}** ({{ .Kind }}): {{ .Message }}
{{- end }}
{{ end }}
{{- end }}
{{- range .Deck.Cards }}
## {{ .Word }} {{ .Phonetic }}

*{{ .PartOfSpeech }}* {{ .Meaning }}

**{{ .MemoryTip.Kind.Label }}:** {{ .MemoryTip.Content }}
{{ if .Examples }}
**Examples**
{{ range $i, $e := .Examples }}
{{ add1 $i }}. {{ $e }}
{{- end }}
{{ end }}
{{- if .Synonyms }}
**Synonyms:** {{ join .Synonyms ", " }}
{{ end }}
{{- if .Confusables }}
**Confusables:** {{ join (confusables .Confusables) ", " }}
{{ end }}
{{- if .IsMock }}
> Placeholder content generated in mock mode.
{{ end }}
{{- end }}
`))

type markdownData struct {
	Deck    *domain.Deck
	Summary *domain.RunSummary
}

func writeMarkdown(w io.Writer, deck *domain.Deck, summary *domain.RunSummary) error {
	return markdownTemplate.Execute(w, markdownData{Deck: deck, Summary: summary})
}
