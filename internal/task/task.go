package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle position of a task within a run.
type TaskStatus string

// Task statuses. Completed and Failed are terminal.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Terminal reports whether no further transition is possible.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// TaskTypeWordGeneration identifies the card generation task of one distinct word.
const TaskTypeWordGeneration = "word_generation"

// Task is a unit of work executed by a WorkerPool.
type Task interface {
	ID() uuid.UUID
	Type() string
	Status() TaskStatus

	// Execute runs the task. It must return promptly once ctx is done.
	Execute(ctx context.Context) error
}

// TaskQueueReader is the consuming side of a queue, used by workers.
type TaskQueueReader interface {
	GetChannel() <-chan Task
}

// TaskQueueWriter is the producing side of a queue, used by the orchestrator.
type TaskQueueWriter interface {
	// Enqueue adds a task without blocking. It fails once the queue is
	// closed or at capacity.
	Enqueue(task Task) error

	// Close ends submission. Workers drain what was enqueued.
	Close()
}
