package task

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/generation"
	"github.com/phrazzld/wordcards/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, provider generation.Provider) *generation.Client {
	t.Helper()
	policy := generation.DefaultRetryPolicy()
	policy.MaxRetries = 0
	policy.Timeout = time.Second
	client, err := generation.NewClient(provider, policy, discardLogger())
	require.NoError(t, err)
	return client
}

func newTestTask(t *testing.T, word string, provider generation.Provider) *WordGenerationTask {
	t.Helper()
	req, err := generation.NewRequest(word, domain.DefaultGenerationParams())
	require.NoError(t, err)
	task, err := NewWordGenerationTask(
		req,
		newTestClient(t, provider),
		domain.NewCardValidator(domain.DefaultValidationLimits()),
		discardLogger(),
	)
	require.NoError(t, err)
	return task
}

func TestNewWordGenerationTask_Validation(t *testing.T) {
	logger := discardLogger()
	validator := domain.NewCardValidator(domain.DefaultValidationLimits())
	client := newTestClient(t, &mocks.Provider{})
	req := generation.Request{Word: "apple"}

	_, err := NewWordGenerationTask(req, nil, validator, logger)
	assert.ErrorIs(t, err, ErrNilGenerator)

	_, err = NewWordGenerationTask(req, client, nil, logger)
	assert.ErrorIs(t, err, ErrNilValidator)

	_, err = NewWordGenerationTask(req, client, validator, nil)
	assert.ErrorIs(t, err, ErrNilLogger)

	_, err = NewWordGenerationTask(generation.Request{}, client, validator, logger)
	assert.ErrorIs(t, err, domain.ErrInvalidWord)
}

func TestWordGenerationTask_Execute_Success(t *testing.T) {
	task := newTestTask(t, "apple", &mocks.Provider{Card: mocks.RawCard("apple")})

	_, ok := task.Outcome()
	assert.False(t, ok, "pending task has no outcome")
	assert.Equal(t, TaskStatusPending, task.Status())

	err := task.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, TaskStatusCompleted, task.Status())
	outcome, ok := task.Outcome()
	require.True(t, ok)
	require.True(t, outcome.OK())
	assert.Equal(t, "apple", outcome.Card.Word)
	assert.True(t, outcome.Card.Validated())
	assert.Equal(t, 1, task.Result().Attempts)
}

func TestWordGenerationTask_Execute_ValidationFailure(t *testing.T) {
	raw := mocks.RawCard("apple")
	raw.MemoryTip = nil
	task := newTestTask(t, "apple", &mocks.Provider{Card: raw})

	err := task.Execute(context.Background())

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, TaskStatusFailed, task.Status())
	outcome, ok := task.Outcome()
	require.True(t, ok)
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, domain.FailureValidation, outcome.Failure.Kind)
	assert.Contains(t, outcome.Failure.Message, "memory_tip")
	assert.Nil(t, task.Result())
}

func TestWordGenerationTask_Execute_CancelledContext(t *testing.T) {
	provider := &mocks.Provider{Card: mocks.RawCard("apple")}
	task := newTestTask(t, "apple", provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := task.Execute(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, provider.CallCount())
	outcome, _ := task.Outcome()
	assert.Equal(t, domain.FailureCancelled, outcome.Failure.Kind)
}

func TestWordGenerationTask_Abort(t *testing.T) {
	task := newTestTask(t, "apple", &mocks.Provider{Card: mocks.RawCard("apple")})

	task.Abort(domain.FailureCancelled, context.Canceled)

	outcome, ok := task.Outcome()
	require.True(t, ok)
	assert.Equal(t, domain.FailureCancelled, outcome.Failure.Kind)

	// A terminal outcome is never overwritten
	task.Abort(domain.FailureInternal, errors.New("late"))
	outcome, _ = task.Outcome()
	assert.Equal(t, domain.FailureCancelled, outcome.Failure.Kind)
}

func TestFailureKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.FailureKind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "cancelled", err: fmt.Errorf("%w: %w", generation.ErrGenerationFailed, context.Canceled), want: domain.FailureCancelled},
		{name: "timeout", err: &generation.TimeoutError{Provider: "p", Err: context.DeadlineExceeded}, want: domain.FailureTimeout},
		{name: "transient", err: generation.NewTransientError("p", 503, errors.New("x")), want: domain.FailureTransient},
		{name: "permanent", err: generation.NewPermanentError("p", 401, errors.New("x")), want: domain.FailurePermanent},
		{name: "validation", err: &domain.ValidationError{Kind: domain.ValidationMissingField, Field: "phonetic"}, want: domain.FailureValidation},
		{name: "invalid word", err: domain.ErrInvalidWord, want: domain.FailureInvalidWord},
		{name: "panic", err: ErrTaskPanicked, want: domain.FailureInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FailureKindOf(tt.err))
		})
	}
}
