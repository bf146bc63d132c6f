package export

import "strings"

// Format names an output artifact type.
type Format string

// Supported formats.
const (
	FormatAPKG     Format = "apkg"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts a format name or a file extension ("md" and ".apkg"
// included).
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "apkg":
		return FormatAPKG, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", unsupportedFormat(Format(s))
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatAPKG:
		return "application/octet-stream"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "text/markdown; charset=utf-8"
	}
}
