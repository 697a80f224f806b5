package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

// countingExecutor records each executed job and optionally fails the
// first N attempts per job.
type countingExecutor struct {
	mu         sync.Mutex
	executed   []*Job
	failFirst  int
	attempts   map[uuid.UUID]int
	execErr    error
	totalCount int64
}

func newCountingExecutor() *countingExecutor {
	return &countingExecutor{attempts: make(map[uuid.UUID]int)}
}

func (e *countingExecutor) Execute(_ context.Context, job *Job) error {
	atomic.AddInt64(&e.totalCount, 1)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executed = append(e.executed, job)
	e.attempts[job.ID]++
	if e.execErr != nil {
		return e.execErr
	}
	if e.attempts[job.ID] <= e.failFirst {
		return errors.New("transient failure")
	}
	return nil
}

func (e *countingExecutor) count() int {
	return int(atomic.LoadInt64(&e.totalCount))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func testSchedulerConfig() SchedulerConfig {
	cfg := DefaultSchedulerConfig()
	cfg.MaxConcurrentJobs = 2
	cfg.JobTimeout = 5 * time.Second
	cfg.RetryAttempts = 2
	cfg.RetryDelay = 0
	return cfg
}

// ---------------------------------------------------------------------------
// Job Tests
// ---------------------------------------------------------------------------

func TestNewJob(t *testing.T) {
	job := NewJob("demo.myshopify.com", JobKindOrders, 3)

	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, "demo.myshopify.com", job.Shop)
	assert.Equal(t, JobKindOrders, job.Kind)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 3, job.MaxRetries)
	assert.Zero(t, job.RetryCount)
}

func TestJobLifecycle(t *testing.T) {
	job := NewJob("demo.myshopify.com", JobKindSnapshot, 1)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)

	job.Complete()
	assert.Equal(t, JobStatusSuccess, job.Status)
	require.NotNil(t, job.CompletedAt)
}

func TestJobRetry(t *testing.T) {
	job := NewJob("demo.myshopify.com", JobKindOrders, 2)

	job.Start()
	job.Fail("platform unavailable")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "platform unavailable", job.Error)
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Minute)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	require.NotNil(t, job.NextRetryAt)
	assert.Empty(t, job.Error)
}

func TestJobShouldRetryExhausted(t *testing.T) {
	job := NewJob("demo.myshopify.com", JobKindOrders, 1)
	job.Start()
	job.Fail("boom")
	job.ScheduleRetry(0)
	job.Start()
	job.Fail("boom again")

	assert.False(t, job.ShouldRetry())
}

// ---------------------------------------------------------------------------
// Scheduler Tests
// ---------------------------------------------------------------------------

func TestSchedulerExecutesSubmittedJobs(t *testing.T) {
	executor := newCountingExecutor()
	s := NewScheduler(testSchedulerConfig(), executor, newTestLogger())

	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	job := NewJob("demo.myshopify.com", JobKindOrders, 0)
	require.NoError(t, s.SubmitJob(job))

	waitFor(t, 2*time.Second, func() bool { return executor.count() == 1 })
	assert.Equal(t, JobStatusSuccess, job.Status)
}

func TestSchedulerRetriesFailedJobs(t *testing.T) {
	executor := newCountingExecutor()
	executor.failFirst = 1
	s := NewScheduler(testSchedulerConfig(), executor, newTestLogger())

	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	job := NewJob("demo.myshopify.com", JobKindSnapshot, 2)
	require.NoError(t, s.SubmitJob(job))

	waitFor(t, 2*time.Second, func() bool { return job.Status == JobStatusSuccess })
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, 2, executor.count())
}

func TestSchedulerRejectsWhenStopped(t *testing.T) {
	s := NewScheduler(testSchedulerConfig(), newCountingExecutor(), newTestLogger())

	err := s.SubmitJob(NewJob("demo.myshopify.com", JobKindOrders, 0))
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestSchedulerScheduleForShops(t *testing.T) {
	executor := newCountingExecutor()
	s := NewScheduler(testSchedulerConfig(), executor, newTestLogger())

	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	shops := []string{"a.myshopify.com", "b.myshopify.com", "c.myshopify.com"}
	require.NoError(t, s.ScheduleForShops(JobKindOrders, shops))

	waitFor(t, 2*time.Second, func() bool { return executor.count() == len(shops) })

	executor.mu.Lock()
	defer executor.mu.Unlock()
	seen := make(map[string]bool)
	for _, job := range executor.executed {
		seen[job.Shop] = true
		assert.Equal(t, JobKindOrders, job.Kind)
	}
	assert.Len(t, seen, len(shops))
}

func TestSchedulerStartIdempotent(t *testing.T) {
	s := NewScheduler(testSchedulerConfig(), newCountingExecutor(), newTestLogger())

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}
