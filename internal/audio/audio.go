package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/phrazzld/wordcards/internal/config"
	"github.com/phrazzld/wordcards/internal/domain"
)

// ErrUnknownEngine is returned for an engine name with no URL scheme.
var ErrUnknownEngine = errors.New("unknown audio engine")

// Engines that build pronunciation URLs.
const (
	EngineYoudao    = "youdao"
	EngineGoogle    = "google"
	EngineMerriam   = "merriam"
	EngineCambridge = "cambridge"
)

// Generator resolves a pronunciation reference for a word. A reference is
// either an http(s) URL or a local file path; an empty reference means the
// word has no audio.
type Generator interface {
	AudioRef(ctx context.Context, word string) (string, error)
}

// URLGenerator builds pronunciation URLs for an online dictionary.
type URLGenerator struct {
	engine   string
	language string
}

// NewURLGenerator returns a URLGenerator for engine.
func NewURLGenerator(engine, language string) (*URLGenerator, error) {
	switch engine {
	case EngineYoudao, EngineGoogle, EngineMerriam, EngineCambridge:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
	if language == "" {
		language = "en"
	}
	return &URLGenerator{engine: engine, language: language}, nil
}

// AudioRef implements Generator.
func (g *URLGenerator) AudioRef(ctx context.Context, word string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if word == "" {
		return "", nil
	}

	escaped := url.PathEscape(word)
	switch g.engine {
	case EngineYoudao:
		q := url.Values{}
		q.Set("audio", word)
		q.Set("le", youdaoLanguage(g.language))
		return "https://dict.youdao.com/dictvoice?" + q.Encode(), nil
	case EngineGoogle:
		q := url.Values{}
		q.Set("ie", "UTF-8")
		q.Set("q", word)
		q.Set("tl", g.language)
		q.Set("client", "tw-ob")
		return "https://translate.google.com/translate_tts?" + q.Encode(), nil
	case EngineMerriam:
		return "https://media.merriam-webster.com/audio/prons/en/us/mp3/" + escaped + ".mp3", nil
	default:
		return "https://dictionary.cambridge.org/media/english/uk_pron/" + escaped + ".mp3", nil
	}
}

func youdaoLanguage(language string) string {
	if language == "en" {
		return "eng"
	}
	return language
}

// LocalResolver returns <dir>/<word>.mp3 when that file exists and defers to
// Next otherwise.
type LocalResolver struct {
	Dir  string
	Next Generator
}

// AudioRef implements Generator.
func (r *LocalResolver) AudioRef(ctx context.Context, word string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(r.Dir, word+".mp3")
	info, err := os.Stat(path)
	if err == nil && info.Mode().IsRegular() {
		return path, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("checking local audio for %q: %w", word, err)
	}

	if r.Next == nil {
		return "", nil
	}
	return r.Next.AudioRef(ctx, word)
}

// New builds the generator described by cfg, or returns nil when audio is
// disabled.
func New(cfg config.AudioConfig) (Generator, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	online, err := NewURLGenerator(cfg.Engine, cfg.Language)
	if err != nil {
		return nil, err
	}
	if cfg.LocalDir == "" {
		return online, nil
	}
	return &LocalResolver{Dir: cfg.LocalDir, Next: online}, nil
}

// Attach records an audio reference on deck for every card. A word whose
// lookup fails is logged and left without audio.
func Attach(ctx context.Context, deck *domain.Deck, gen Generator, logger *slog.Logger) error {
	if gen == nil {
		return nil
	}

	attached := 0
	for _, card := range deck.Cards {
		ref, err := gen.AudioRef(ctx, card.Word)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.WarnContext(ctx, "audio lookup failed",
				"word", card.Word,
				"error", err)
			continue
		}
		if ref != "" {
			deck.AttachAudio(card.Word, ref)
			attached++
		}
	}

	logger.DebugContext(ctx, "audio attached",
		"cards", deck.Len(),
		"attached", attached)
	return nil
}
