package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/wordcards/internal/config"
)

// Setup initializes the application's logging system from the log section of
// the configuration. It writes JSON (or text when Format is "text") to
// stdout, redacts secrets from every record and sets the result as the
// default logger.
func Setup(cfg config.LogConfig) (*slog.Logger, error) {
	return SetupWriter(cfg, os.Stdout)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(cfg config.LogConfig, out io.Writer) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(NewRedactHandler(handler))
	slog.SetDefault(logger)

	return logger, nil
}

// ParseLevel parses a level name case-insensitively. An unknown name yields
// info and a warning on stderr.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		// The configured logger does not exist yet
		tmpLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", name,
			"default_level", "info")
		return slog.LevelInfo
	}
}
