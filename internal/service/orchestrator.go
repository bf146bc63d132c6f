package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/events"
	"github.com/phrazzld/wordcards/internal/generation"
	"github.com/phrazzld/wordcards/internal/task"
)

// OrchestratorConfig holds the concurrency settings of a run.
type OrchestratorConfig struct {
	// Workers bounds the number of words generated concurrently
	Workers int

	// RateLimit bounds model calls per minute across workers; zero disables it
	RateLimit float64
}

// DefaultOrchestratorConfig returns the settings used when none are configured.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{Workers: 5}
}

// Orchestrator turns a word list into one outcome per word. Each Run owns
// its cache; nothing is shared between runs.
type Orchestrator struct {
	generator task.Generator
	validator *domain.CardValidator
	config    OrchestratorConfig
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewOrchestrator creates an orchestrator.
//
// Parameters:
//   - generator: the model client
//   - validator: the card validator; its limits also bound request parameters
//   - config: worker count and rate limit
//   - emitter: receives progress events; may be nil
//   - logger: structured logger
//
// Returns:
//   - (*Orchestrator, nil) on success
//   - (nil, error) when a required dependency is missing
func NewOrchestrator(
	generator task.Generator,
	validator *domain.CardValidator,
	config OrchestratorConfig,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*Orchestrator, error) {
	if generator == nil {
		return nil, task.ErrNilGenerator
	}
	if validator == nil {
		return nil, task.ErrNilValidator
	}
	if logger == nil {
		return nil, task.ErrNilLogger
	}
	if config.Workers <= 0 {
		config.Workers = DefaultOrchestratorConfig().Workers
	}

	return &Orchestrator{
		generator: generator,
		validator: validator,
		config:    config,
		emitter:   emitter,
		logger:    logger.With("component", "orchestrator"),
	}, nil
}

// cacheEntry is the single claim on one distinct word in a run. Either
// task is set, or outcome is set up front for a word that never dispatches.
type cacheEntry struct {
	task    *task.WordGenerationTask
	outcome *domain.Outcome
}

// runCache maps a case-folded word to its claim. A word is claimed before
// dispatch, so at most one generation per distinct word is ever in flight.
type runCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []*cacheEntry
	hits    int
}

func newRunCache() *runCache {
	return &runCache{entries: make(map[string]*cacheEntry)}
}

// claim returns the entry for key and whether it already existed. newEntry
// is called only on a miss.
func (c *runCache) claim(key string, newEntry func() *cacheEntry) (*cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.hits++
		return entry, true
	}
	entry := newEntry()
	c.entries[key] = entry
	c.order = append(c.order, entry)
	return entry, false
}

func (c *runCache) stats() (distinct, hits int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), c.hits
}

// run carries the state of one Run call.
type run struct {
	id        uuid.UUID
	total     int
	emitter   events.EventEmitter
	logger    *slog.Logger
	mu        sync.Mutex
	completed int
}

// record emits progress for a task that reached a terminal state.
func (r *run) record(ctx context.Context, t *task.WordGenerationTask) {
	outcome, ok := t.Outcome()
	if !ok {
		return
	}

	r.mu.Lock()
	r.completed++
	completed := r.completed
	r.mu.Unlock()

	r.emit(ctx, events.NewWordEvent(r.id, outcome, completed, r.total))
}

func (r *run) emit(ctx context.Context, event *events.ProgressEvent) {
	if r.emitter == nil {
		return
	}
	// Progress must not fail a run, and handlers still run after cancellation
	if err := r.emitter.EmitEvent(context.WithoutCancel(ctx), event); err != nil {
		r.logger.Warn("progress handler failed", "event_type", event.Type, "error", err)
	}
}

// trackedTask reports progress when the wrapped task finishes.
type trackedTask struct {
	*task.WordGenerationTask
	run *run
}

// Execute implements task.Task.
func (t trackedTask) Execute(ctx context.Context) error {
	err := t.WordGenerationTask.Execute(ctx)
	t.run.record(ctx, t.WordGenerationTask)
	return err
}

// Run generates one outcome per requested word.
//
// Duplicate words, compared case-insensitively after normalization, are
// answered from the run cache and counted as cache hits. Words that fail
// normalization become invalid_word failures without a model call. A
// failure for one word never aborts the run.
//
// Cancelling ctx stops dispatch. Words already finished keep their outcomes;
// every other word gets a cancelled failure and the summary is marked
// partial. Run then returns the partial results together with ctx.Err().
//
// Returns:
//   - outcomes in input order, one per requested word
//   - the run summary
//   - an error wrapping domain.ErrInvalidParams or ErrNoWords when nothing
//     was run, or the context error for a cancelled run
func (o *Orchestrator) Run(
	ctx context.Context,
	words []string,
	params domain.GenerationParams,
) ([]domain.Outcome, *domain.RunSummary, error) {
	if len(words) == 0 {
		return nil, nil, ErrNoWords
	}
	if err := params.Validate(o.validator.Limits()); err != nil {
		return nil, nil, err
	}

	startedAt := time.Now().UTC()
	cache := newRunCache()
	slots := make([]*cacheEntry, len(words))
	logger := o.logger

	for i, raw := range words {
		req, reqErr := generation.NewRequest(raw, params)
		key := req.Word
		if reqErr != nil {
			key = "invalid:" + strings.ToLower(strings.TrimSpace(raw))
		}

		entry, _ := cache.claim(key, func() *cacheEntry {
			if reqErr != nil {
				failed := domain.Failed(strings.TrimSpace(raw), domain.FailureInvalidWord, reqErr.Error())
				return &cacheEntry{outcome: &failed}
			}
			t, err := task.NewWordGenerationTask(req, o.generator, o.validator, logger)
			if err != nil {
				failed := domain.Failed(req.Word, task.FailureKindOf(err), err.Error())
				return &cacheEntry{outcome: &failed}
			}
			return &cacheEntry{task: t}
		})
		slots[i] = entry
	}

	distinct, cacheHits := cache.stats()
	runID := uuid.New()
	logger = logger.With("run_id", runID)
	r := &run{
		id:      runID,
		total:   distinct,
		emitter: o.emitter,
		logger:  logger,
	}

	logger.InfoContext(ctx, "run started",
		"requested", len(words),
		"distinct", distinct,
		"cache_hits", cacheHits,
		"workers", o.config.Workers)
	r.emit(ctx, events.NewProgressEvent(r.id, events.EventRunStarted, 0, distinct))

	o.dispatch(ctx, r, cache.order)

	partial := false
	for _, entry := range cache.order {
		if entry.task == nil {
			continue
		}
		if _, ok := entry.task.Outcome(); ok {
			continue
		}
		// Never started because the run was cancelled
		cause := ctx.Err()
		if cause == nil {
			cause = errors.New("task did not run")
		}
		entry.task.Abort(domain.FailureCancelled, cause)
		r.record(ctx, entry.task)
	}
	if ctx.Err() != nil {
		partial = true
	}

	outcomes := make([]domain.Outcome, len(words))
	for i, entry := range slots {
		if entry.outcome != nil {
			outcomes[i] = *entry.outcome
			continue
		}
		outcomes[i], _ = entry.task.Outcome()
	}

	summary := domain.NewRunSummary(r.id, outcomes, distinct, cacheHits, partial, startedAt, time.Now().UTC())
	r.emit(ctx, events.NewProgressEvent(r.id, events.EventRunFinished, distinct, distinct))

	logger.InfoContext(ctx, "run finished",
		"requested", summary.Requested,
		"succeeded", summary.Succeeded,
		"succeeded_mock", summary.SucceededMock,
		"failed", summary.Failed,
		"cache_hits", summary.CacheHits,
		"partial", summary.Partial,
		"duration_ms", summary.Duration().Milliseconds())

	if partial {
		return outcomes, summary, fmt.Errorf("run %s cancelled: %w", r.id, ctx.Err())
	}
	return outcomes, summary, nil
}

// dispatch runs every claimed task on a bounded worker pool and returns
// once the queue is drained or ctx is cancelled.
func (o *Orchestrator) dispatch(ctx context.Context, r *run, entries []*cacheEntry) {
	pending := 0
	for _, entry := range entries {
		if entry.task != nil {
			pending++
		}
	}
	if pending == 0 {
		return
	}

	queue := task.NewTaskQueue(pending, r.logger)
	for _, entry := range entries {
		if entry.task == nil {
			continue
		}
		if err := queue.Enqueue(trackedTask{WordGenerationTask: entry.task, run: r}); err != nil {
			// Queue is sized for every task; this is a programming error
			entry.task.Abort(domain.FailureInternal, err)
			r.record(ctx, entry.task)
		}
	}
	queue.Close()

	workers := o.config.Workers
	if workers > pending {
		workers = pending
	}

	pool := task.NewWorkerPool(queue, task.WorkerPoolConfig{
		WorkerCount: workers,
		RateLimit:   o.config.RateLimit,
	}, r.logger)
	pool.SetErrorHandler(func(t task.Task, err error) {
		tracked, ok := t.(trackedTask)
		if !ok || !errors.Is(err, task.ErrTaskPanicked) {
			return
		}
		tracked.Abort(domain.FailureInternal, err)
		r.record(ctx, tracked.WordGenerationTask)
	})

	pool.Start(ctx)
	pool.Wait()
}
