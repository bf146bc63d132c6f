package wordlist

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Format is a supported word list file format.
type Format string

// Supported formats, matched against the file extension.
const (
	FormatTXT  Format = "txt"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// MinWordLength is the shortest word kept after cleaning.
const MinWordLength = 2

var (
	// ErrImport is returned when a word list cannot be read or parsed.
	ErrImport = errors.New("word list import failed")

	// ErrUnsupportedFormat is returned for an unknown file format.
	ErrUnsupportedFormat = errors.New("unsupported word list format")
)

var letterRun = regexp.MustCompile(`\b[a-zA-Z]+\b`)

// wordColumns are the CSV header names recognised as the word column.
var wordColumns = []string{"word", "words", "词汇", "单词"}

// Import reads the word list at path, choosing the parser from the file
// extension, and returns the cleaned words.
func Import(path string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "wordlist")

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImport, err)
	}
	defer func() { _ = f.Close() }()

	words, err := ImportReader(f, format)
	if err != nil {
		logger.Error("failed to import word list",
			"path", path,
			"format", format,
			"error", err)
		return nil, err
	}

	logger.Info("word list imported",
		"path", path,
		"format", format,
		"words", len(words))
	return words, nil
}

// FormatFromPath returns the format named by the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch Format(ext) {
	case FormatTXT, FormatCSV, FormatJSON:
		return Format(ext), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ImportReader parses r as format and returns the cleaned words.
func ImportReader(r io.Reader, format Format) ([]string, error) {
	var (
		raw []string
		err error
	)
	switch format {
	case FormatTXT:
		raw, err = readTXT(r)
	case FormatCSV:
		raw, err = readCSV(r)
	case FormatJSON:
		raw, err = readJSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImport, format, err)
	}
	return Clean(raw), nil
}

// Clean lowercases each word, drops everything that is not an ASCII letter,
// discards results shorter than MinWordLength and removes duplicates while
// keeping the first occurrence.
func Clean(words []string) []string {
	cleaned := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))

	for _, word := range words {
		word = strings.Map(func(r rune) rune {
			r = unicode.ToLower(r)
			if r >= 'a' && r <= 'z' {
				return r
			}
			return -1
		}, word)

		if len(word) < MinWordLength || seen[word] {
			continue
		}
		seen[word] = true
		cleaned = append(cleaned, word)
	}
	return cleaned
}

func readTXT(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var words []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, letterRun.FindAllString(line, -1)...)
	}
	return words, nil
}

// readCSV treats the first row as a header. The word column is the first
// recognised header name, or the first column.
func readCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	column := 0
find:
	for _, name := range wordColumns {
		for i, field := range header {
			if strings.TrimSpace(strings.TrimPrefix(field, "\ufeff")) == name {
				column = i
				break find
			}
		}
	}

	var words []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if column >= len(record) {
			continue
		}
		words = append(words, letterRun.FindAllString(record[column], -1)...)
	}
	return words, nil
}

// readJSON accepts an array of strings or of objects with a word key, or an
// object holding a word array. An object with neither contributes its
// alphabetic keys.
func readJSON(r io.Reader) ([]string, error) {
	var data any
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, err
	}

	var words []string
	switch v := data.(type) {
	case []any:
		for _, item := range v {
			switch item := item.(type) {
			case string:
				words = append(words, item)
			case map[string]any:
				if word := firstString(item, "word", "词汇", "单词"); word != "" {
					words = append(words, word)
				}
			}
		}
	case map[string]any:
		for _, key := range []string{"words", "词汇", "单词"} {
			if list, ok := v[key].([]any); ok {
				for _, item := range list {
					if s, ok := item.(string); ok {
						words = append(words, s)
					}
				}
				return words, nil
			}
		}
		keys := make([]string, 0, len(v))
		for key := range v {
			if letterRun.FindString(key) == key {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		words = append(words, keys...)
	default:
		return nil, fmt.Errorf("unexpected JSON value of type %T", data)
	}
	return words, nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
