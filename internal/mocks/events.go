package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/wordcards/internal/events"
)

// EventRecorder implements events.EventEmitter and events.EventHandler,
// keeping every event it receives.
type EventRecorder struct {
	// Err is returned from every call when set
	Err error

	mu     sync.Mutex
	events []*events.ProgressEvent
}

// EmitEvent implements events.EventEmitter
func (r *EventRecorder) EmitEvent(ctx context.Context, event *events.ProgressEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.Err
}

// HandleEvent implements events.EventHandler
func (r *EventRecorder) HandleEvent(ctx context.Context, event *events.ProgressEvent) error {
	return r.EmitEvent(ctx, event)
}

// Events returns the recorded events in arrival order
func (r *EventRecorder) Events() []*events.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*events.ProgressEvent, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events of the given type
func (r *EventRecorder) OfType(eventType events.EventType) []*events.ProgressEvent {
	var out []*events.ProgressEvent
	for _, e := range r.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
