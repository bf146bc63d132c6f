package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/generation"
	"github.com/phrazzld/wordcards/internal/redact"
)

// Common errors
var (
	ErrNilGenerator = errors.New("generator cannot be nil")
	ErrNilValidator = errors.New("validator cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
)

// Generator produces a raw card for one word under a retry policy
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (*generation.Result, error)
}

// CardValidator turns a raw card into a validated card
type CardValidator interface {
	Validate(word string, raw *domain.RawCard, source domain.Source, generatedAt time.Time) (*domain.Card, error)
}

// WordGenerationTask implements the Task interface for one distinct word:
// a model client call followed by a validator check.
type WordGenerationTask struct {
	id        uuid.UUID
	request   generation.Request
	generator Generator
	validator CardValidator
	logger    *slog.Logger

	mu      sync.Mutex
	status  TaskStatus
	outcome domain.Outcome
	result  *generation.Result
}

// NewWordGenerationTask creates a new word generation task
func NewWordGenerationTask(
	request generation.Request,
	generator Generator,
	validator CardValidator,
	logger *slog.Logger,
) (*WordGenerationTask, error) {
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if validator == nil {
		return nil, ErrNilValidator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if request.Word == "" {
		return nil, domain.ErrInvalidWord
	}

	return &WordGenerationTask{
		id:        uuid.New(),
		request:   request,
		generator: generator,
		validator: validator,
		logger:    logger.With("task_type", TaskTypeWordGeneration, "word", request.Word),
		status:    TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *WordGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *WordGenerationTask) Type() string {
	return TaskTypeWordGeneration
}

// Word returns the normalized word this task generates
func (t *WordGenerationTask) Word() string {
	return t.request.Word
}

// Status returns the current task status
func (t *WordGenerationTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Outcome returns the terminal outcome once the task has completed or
// failed. ok is false while the task is pending or processing.
func (t *WordGenerationTask) Outcome() (outcome domain.Outcome, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.status.Terminal() {
		return domain.Outcome{}, false
	}
	return t.outcome, true
}

// Result returns the model client result, or nil if generation failed.
func (t *WordGenerationTask) Result() *generation.Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// Execute runs the model client and the validator for the task's word.
// Any failure becomes a Failure outcome; the returned error is the same
// failure for the pool's error handler.
func (t *WordGenerationTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	if err := ctx.Err(); err != nil {
		return t.fail(fmt.Errorf("task cancelled by context: %w", err))
	}

	result, err := t.generator.Generate(ctx, t.request)
	if err != nil {
		return t.fail(err)
	}

	card, err := t.validator.Validate(t.request.Word, result.Card, result.Source, time.Now().UTC())
	if err != nil {
		return t.fail(err)
	}

	t.mu.Lock()
	t.result = result
	t.outcome = domain.Succeeded(card)
	t.status = TaskStatusCompleted
	t.mu.Unlock()

	t.logger.DebugContext(ctx, "card generated",
		"source", result.Source,
		"provider", result.Provider,
		"attempts", result.Attempts)
	return nil
}

// Abort records a failure for a task that never reached a terminal state,
// such as one still queued at cancellation or one whose execution panicked.
// It has no effect on a completed or failed task.
func (t *WordGenerationTask) Abort(kind domain.FailureKind, cause error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return
	}
	t.outcome = domain.Failed(t.request.Word, kind, redact.Error(cause))
	t.status = TaskStatusFailed
}

func (t *WordGenerationTask) setStatus(status TaskStatus) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()
}

func (t *WordGenerationTask) fail(err error) error {
	kind := FailureKindOf(err)

	t.mu.Lock()
	t.outcome = domain.Failed(t.request.Word, kind, redact.Error(err))
	t.status = TaskStatusFailed
	t.mu.Unlock()

	t.logger.Warn("word generation failed",
		"failure_kind", kind,
		"error", redact.Error(err))
	return err
}

// FailureKindOf maps a model client, validator or context error onto the
// failure kind reported in a run summary.
func FailureKindOf(err error) domain.FailureKind {
	var (
		timeoutErr  *generation.TimeoutError
		providerErr *generation.ProviderError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return domain.FailureCancelled
	case errors.As(err, &timeoutErr):
		return domain.FailureTimeout
	case errors.Is(err, domain.ErrValidation):
		return domain.FailureValidation
	case errors.Is(err, domain.ErrInvalidWord):
		return domain.FailureInvalidWord
	case errors.As(err, &providerErr):
		if providerErr.Transient() {
			return domain.FailureTransient
		}
		return domain.FailurePermanent
	case errors.Is(err, context.DeadlineExceeded):
		return domain.FailureTimeout
	default:
		return domain.FailureInternal
	}
}
