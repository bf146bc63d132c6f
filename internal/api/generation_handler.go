package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/phrazzld/wordcards/internal/api/shared"
	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/export"
	"github.com/phrazzld/wordcards/internal/platform/logger"
	"github.com/phrazzld/wordcards/internal/service"
)

// Runner generates cards for a word list.
type Runner interface {
	Run(ctx context.Context, words []string, params domain.GenerationParams) ([]domain.Outcome, *domain.RunSummary, error)
}

// DeckExporter encodes the successes of a run.
type DeckExporter interface {
	Export(ctx context.Context, summary *domain.RunSummary, req service.DeckRequest, w io.Writer) (*domain.Deck, error)
}

// HandlerConfig holds the request defaults and limits of a GenerationHandler.
type HandlerConfig struct {
	Params          domain.GenerationParams
	MaxWords        int
	DeckName        string
	DeckDescription string
	Format          export.Format
}

// GenerationHandler serves card generation and deck downloads.
type GenerationHandler struct {
	runner Runner
	decks  DeckExporter
	config HandlerConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewGenerationHandler creates a GenerationHandler.
func NewGenerationHandler(runner Runner, decks DeckExporter, config HandlerConfig, logger *slog.Logger) *GenerationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Format == "" {
		config.Format = export.FormatAPKG
	}
	return &GenerationHandler{
		runner: runner,
		decks:  decks,
		config: config,
		logger: logger.With("component", "generation_handler"),
		now:    time.Now,
	}
}

// Generate handles POST /api/generate requests.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := checkWordLimit(req.Words, h.config.MaxWords); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	outcomes, summary, err := h.runner.Run(r.Context(), req.Words, applyOptions(h.config.Params, req.GenerationOptions))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, GenerateResponse{
		Outcomes: outcomes,
		Summary:  summaryToResponse(summary),
	})
}

// CreateDeck handles POST /api/decks requests. The response body is the
// encoded deck.
func (h *GenerationHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req DeckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := checkWordLimit(req.Words, h.config.MaxWords); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	format := h.config.Format
	if req.Format != "" {
		parsed, err := export.ParseFormat(req.Format)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		format = parsed
	}
	name := req.DeckName
	if name == "" {
		name = h.config.DeckName
	}

	_, summary, err := h.runner.Run(r.Context(), req.Words, applyOptions(h.config.Params, req.GenerationOptions))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// The artifact is buffered so a failed encode can still produce an error response
	var buf bytes.Buffer
	deck, err := h.decks.Export(r.Context(), summary, service.DeckRequest{
		Name:        name,
		Description: h.config.DeckDescription,
		Format:      format,
		AllowEmpty:  req.AllowEmpty,
	}, &buf)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("deck created",
		"run_id", summary.RunID,
		"format", format,
		"cards", deck.Len(),
		"failed", summary.Failed)

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.FileName(format, h.now())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Run-ID", summary.RunID.String())
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil && !errors.Is(err, context.Canceled) {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("failed to write deck response",
			"error", err)
	}
}
