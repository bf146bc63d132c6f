package export

import (
	"encoding/csv"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/phrazzld/wordcards/internal/domain"
)

// CSVColumns selects the column set of the CSV encoder.
type CSVColumns string

// Column sets.
const (
	CSVColumnsFull   CSVColumns = "full"
	CSVColumnsSimple CSVColumns = "simple"
)

// CSV column names.
const (
	ColumnWord          = "Word"
	ColumnPhonetic      = "Phonetic"
	ColumnPartOfSpeech  = "Part of Speech"
	ColumnMeaning       = "Meaning"
	ColumnMemoryTipType = "Memory Tip Type"
	ColumnMemoryTip     = "Memory Tip"
	ColumnExamples      = "Examples"
	ColumnSynonyms      = "Synonyms"
	ColumnConfusables   = "Confusables"
	ColumnTags          = "Tags"
	ColumnSource        = "Source"
)

var (
	fullHeader = []string{
		ColumnWord, ColumnPhonetic, ColumnPartOfSpeech, ColumnMeaning, ColumnMemoryTipType,
		ColumnMemoryTip, ColumnExamples, ColumnSynonyms, ColumnConfusables, ColumnTags, ColumnSource,
	}
	simpleHeader = []string{ColumnWord, ColumnPhonetic, ColumnMeaning}
)

// Record is one decoded CSV row keyed by column name.
type Record map[string]string

func writeCSV(w io.Writer, deck *domain.Deck, delimiter rune, columns CSVColumns) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	header := fullHeader
	if columns == CSVColumnsSimple {
		header = simpleHeader
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, card := range deck.Cards {
		var row []string
		if columns == CSVColumnsSimple {
			row = []string{card.Word, card.Phonetic, card.Meaning}
		} else {
			row = []string{
				card.Word,
				card.Phonetic,
				card.PartOfSpeech,
				card.Meaning,
				card.MemoryTip.Kind.Label(),
				card.MemoryTip.Content,
				strings.Join(card.Examples, listSeparator),
				strings.Join(card.Synonyms, listSeparator),
				strings.Join(confusableStrings(card.Confusables), listSeparator),
				strings.Join(card.Tags(), " "),
				string(card.Source),
			}
		}
		for i := range row {
			row[i] = html.EscapeString(row[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// DecodeCSV reads a file written by the CSV encoder back into records,
// undoing the HTML escaping.
func DecodeCSV(r io.Reader, delimiter rune) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decoding csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("decoding csv: missing header")
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(Record, len(header))
		for i, name := range header {
			if i < len(row) {
				record[name] = html.UnescapeString(row[i])
			}
		}
		records = append(records, record)
	}
	return records, nil
}
