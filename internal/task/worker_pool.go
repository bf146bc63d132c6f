package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrTaskPanicked is passed to the error handler when a task panics.
var ErrTaskPanicked = errors.New("task panicked")

// WorkerPool runs queued tasks on a fixed number of goroutines, optionally
// throttled by a shared token bucket. A panicking task is reported to the
// error handler and the worker carries on.
type WorkerPool struct {
	taskQueue   TaskQueueReader
	workerCount int

	// limiter is nil when the pool is unthrottled
	limiter *rate.Limiter

	group  *errgroup.Group
	cancel context.CancelFunc
	logger *slog.Logger

	mu           sync.RWMutex
	errorHandler func(task Task, err error)
}

// WorkerPoolConfig sizes and throttles a WorkerPool.
type WorkerPoolConfig struct {
	// WorkerCount is the number of concurrent workers; values below 1 mean 1
	WorkerCount int

	// RateLimit caps task starts per minute across the pool; zero disables it.
	// Throttling delays tasks and never drops them.
	RateLimit float64
}

// DefaultWorkerPoolConfig returns five unthrottled workers.
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{WorkerCount: 5}
}

// NewWorkerPool creates a pool reading from taskQueue. Call Start to run it.
func NewWorkerPool(taskQueue TaskQueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "worker_pool")

	workerCount := config.WorkerCount
	if workerCount < 1 {
		logger.Warn("worker count below 1, using 1", "configured", config.WorkerCount)
		workerCount = 1
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		// burst of one spaces starts evenly instead of front-loading them
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit/60), 1)
	}

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		limiter:     limiter,
		logger:      logger,
	}
}

// SetErrorHandler registers a callback for failed, panicked or unstarted tasks.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errorHandler = handler
}

// Start launches the workers. They run until the queue is closed and
// drained, ctx is cancelled, or Stop is called.
func (p *WorkerPool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.group = &errgroup.Group{}

	p.logger.Debug("starting worker pool",
		"worker_count", p.workerCount,
		"rate_limited", p.limiter != nil)

	for i := 0; i < p.workerCount; i++ {
		id := i
		p.group.Go(func() error {
			p.worker(ctx, id)
			return nil
		})
	}
}

// Wait blocks until every worker has exited.
func (p *WorkerPool) Wait() {
	if p.group == nil {
		return
	}
	_ = p.group.Wait()
	p.cancel()
}

// Stop cancels the workers and waits for them to exit. A task that is
// running sees its context cancelled.
func (p *WorkerPool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.Wait()
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	p.logger.Debug("worker started", "worker_id", id)

	tasks := p.taskQueue.GetChannel()
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("worker cancelled", "worker_id", id)
			return

		case task, ok := <-tasks:
			if !ok {
				p.logger.Debug("queue drained, worker exiting", "worker_id", id)
				return
			}
			p.processTask(ctx, task, id)
		}
	}
}

// processTask waits for the limiter, then runs task with panics recovered.
func (p *WorkerPool) processTask(ctx context.Context, task Task, workerID int) {
	logger := p.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			logger.Debug("rate limiter wait aborted", "error", err)
			p.handleError(task, err)
			return
		}
	}


	var err error
	var catcher panics.Catcher
	catcher.Try(func() {
		err = task.Execute(ctx)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		err = fmt.Errorf("%w: %v", ErrTaskPanicked, recovered.Value)
		logger.Error("task panicked", "panic", recovered.Value)
	}

	if err != nil {
		logger.Debug("task failed", "error", err)
		p.handleError(task, err)
		return
	}
	logger.Debug("task completed")
}

func (p *WorkerPool) handleError(task Task, err error) {
	p.mu.RLock()
	handler := p.errorHandler
	p.mu.RUnlock()

	if handler != nil {
		handler(task, err)
	}
}
