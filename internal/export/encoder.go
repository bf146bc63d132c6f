package export

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/phrazzld/wordcards/internal/config"
	"github.com/phrazzld/wordcards/internal/domain"
)

// Options configures an Encoder.
type Options struct {
	// CSVDelimiter separates CSV fields; zero means a comma
	CSVDelimiter rune

	// CSVColumns selects the full or the simple column set
	CSVColumns CSVColumns
}

// OptionsFromConfig maps the export section of the configuration.
func OptionsFromConfig(cfg config.ExportConfig) Options {
	delimiter, _ := utf8.DecodeRuneInString(cfg.CSVDelimiter)
	if delimiter == utf8.RuneError {
		delimiter = ','
	}
	return Options{
		CSVDelimiter: delimiter,
		CSVColumns:   CSVColumns(cfg.CSVColumns),
	}
}

// Encoder writes decks as CSV, APKG or Markdown artifacts.
type Encoder struct {
	options Options
	summary *domain.RunSummary
	logger  *slog.Logger
	now     func() time.Time
}

// NewEncoder creates an Encoder. If logger is nil, a default logger will be used.
func NewEncoder(options Options, logger *slog.Logger) *Encoder {
	if options.CSVDelimiter == 0 {
		options.CSVDelimiter = ','
	}
	if options.CSVColumns == "" {
		options.CSVColumns = CSVColumnsFull
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Encoder{
		options: options,
		logger:  logger.With("component", "deck_encoder"),
		now:     time.Now,
	}
}

// WithSummary returns an encoder that also renders the run summary in
// formats that have room for it.
func (e *Encoder) WithSummary(summary *domain.RunSummary) *Encoder {
	clone := *e
	clone.summary = summary
	return &clone
}

// Encode writes deck to w in format. Aliases accepted by ParseFormat are
// normalized first.
//
// Returns:
//   - nil on success
//   - *EncodingError with KindUnsupportedFormat for an unknown format
//   - *EncodingError with KindInvalidDeck when the deck is empty without
//     acknowledgment or holds an unvalidated card
//   - *EncodingError with KindIOFailure when writing fails or ctx is done
func (e *Encoder) Encode(ctx context.Context, deck *domain.Deck, format Format, w io.Writer) error {
	format, err := ParseFormat(string(format))
	if err != nil {
		return err
	}
	if deck == nil {
		return ioFailure(format, errors.New("deck cannot be nil"))
	}
	if err := deck.Check(); err != nil {
		return &EncodingError{Kind: KindInvalidDeck, Format: format, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return ioFailure(format, err)
	}

	switch format {
	case FormatCSV:
		err = writeCSV(w, deck, e.options.CSVDelimiter, e.options.CSVColumns)
	case FormatMarkdown:
		err = writeMarkdown(w, deck, e.summary)
	case FormatAPKG:
		err = e.writeAPKG(ctx, deck, w)
	default:
		return unsupportedFormat(format)
	}
	if err != nil {
		e.logger.ErrorContext(ctx, "deck encoding failed",
			"format", format,
			"deck", deck.Name,
			"error", err)
		return ioFailure(format, err)
	}

	e.logger.InfoContext(ctx, "deck encoded",
		"format", format,
		"deck", deck.Name,
		"cards", deck.Len())
	return nil
}

// EncodeFile writes deck to path. The artifact is written to a temporary
// file in the same directory and renamed into place only on success, so a
// failed encode never leaves a partial file at path.
func (e *Encoder) EncodeFile(ctx context.Context, deck *domain.Deck, format Format, path string) error {
	format, err := ParseFormat(string(format))
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ioFailure(format, err)
	}

	tmp, err := os.CreateTemp(dir, ".wordcards-*.tmp")
	if err != nil {
		return ioFailure(format, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	buffered := bufio.NewWriter(tmp)
	if err := e.Encode(ctx, deck, format, buffered); err != nil {
		return err
	}
	if err := buffered.Flush(); err != nil {
		return ioFailure(format, err)
	}
	if err := tmp.Close(); err != nil {
		return ioFailure(format, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return ioFailure(format, err)
	}
	committed = true

	e.logger.DebugContext(ctx, "deck file written",
		"format", format,
		"path", path)
	return nil
}

// FileName returns a timestamped default artifact name.
func FileName(format Format, at time.Time) string {
	return "wordcards_" + at.UTC().Format("20060102_150405") + "." + format.Extension()
}
