package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// InMemoryEventEmitter fans progress events out to handlers registered in
// the same process. Handlers run synchronously in registration order.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

// NewInMemoryEventEmitter creates an emitter with no handlers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{logger: logger.With("component", "progress_emitter")}
}

// RegisterHandler adds handler to the fan-out list.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	e.handlers = append(e.handlers, handler)
	n := len(e.handlers)
	e.mu.Unlock()

	e.logger.Debug("progress handler registered", "handler_count", n)
}

// EmitEvent delivers event to every handler. A failing handler does not stop
// delivery to the rest; all failures are joined into the returned error.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *ProgressEvent) error {
	e.mu.RLock()
	handlers := append([]EventHandler(nil), e.handlers...)
	e.mu.RUnlock()

	var errs []error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.WarnContext(ctx, "progress handler failed",
				"handler_index", i,
				"event_type", event.Type,
				"run_id", event.RunID,
				"error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogHandler reports run progress through a structured logger: run-level
// events at info, completed words at debug and failed words at warn.
type LogHandler struct {
	logger *slog.Logger
}

// NewLogHandler creates a LogHandler writing to logger.
func NewLogHandler(logger *slog.Logger) *LogHandler {
	return &LogHandler{logger: logger.With("component", "progress")}
}

// HandleEvent implements EventHandler.
func (h *LogHandler) HandleEvent(ctx context.Context, event *ProgressEvent) error {
	attrs := []any{"run_id", event.RunID, "completed", event.Completed, "total", event.Total}

	switch event.Type {
	case EventWordFailed:
		h.logger.WarnContext(ctx, "word failed",
			append(attrs, "word", event.Word, "failure_kind", event.FailureKind)...)
	case EventWordCompleted:
		h.logger.DebugContext(ctx, "word completed",
			append(attrs, "word", event.Word, "source", event.Source,
				"percent", fmt.Sprintf("%.0f", event.Percent()))...)
	default:
		h.logger.InfoContext(ctx, string(event.Type), attrs...)
	}
	return nil
}
