package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordcards/internal/domain"
)

// EventType names a point in the lifecycle of a generation run.
type EventType string

// Progress event types.
const (
	EventRunStarted    EventType = "run_started"
	EventWordCompleted EventType = "word_completed"
	EventWordFailed    EventType = "word_failed"
	EventRunFinished   EventType = "run_finished"
)

// ProgressEvent reports the progress of one generation run. Word-level
// events carry the word and its result; run-level events carry only counts.
type ProgressEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// RunID identifies the run the event belongs to
	RunID uuid.UUID `json:"run_id"`

	// Type indicates what happened
	Type EventType `json:"type"`

	// Word is the normalized word for word-level events
	Word string `json:"word,omitempty"`

	// Source is set on word_completed events
	Source domain.Source `json:"source,omitempty"`

	// FailureKind is set on word_failed events
	FailureKind domain.FailureKind `json:"failure_kind,omitempty"`

	// Completed counts distinct words with a terminal outcome so far
	Completed int `json:"completed"`

	// Total is the number of distinct words in the run
	Total int `json:"total"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewProgressEvent creates a run-level event.
func NewProgressEvent(runID uuid.UUID, eventType EventType, completed, total int) *ProgressEvent {
	return &ProgressEvent{
		ID:        uuid.New(),
		RunID:     runID,
		Type:      eventType,
		Completed: completed,
		Total:     total,
		CreatedAt: time.Now().UTC(),
	}
}

// NewWordEvent creates a word-level event from a terminal outcome.
func NewWordEvent(runID uuid.UUID, outcome domain.Outcome, completed, total int) *ProgressEvent {
	event := NewProgressEvent(runID, EventWordCompleted, completed, total)
	event.Word = outcome.Word
	if outcome.OK() {
		event.Source = outcome.Card.Source
		return event
	}

	event.Type = EventWordFailed
	if outcome.Failure != nil {
		event.FailureKind = outcome.Failure.Kind
	}
	return event
}

// Percent returns completion as a percentage, or 100 for an empty run.
func (e *ProgressEvent) Percent() float64 {
	if e.Total == 0 {
		return 100
	}
	return float64(e.Completed) * 100 / float64(e.Total)
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ProgressEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the orchestrator to publish progress without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *ProgressEvent) error
}
