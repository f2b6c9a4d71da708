package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTask struct {
	Task
	runs    atomic.Int32
	running atomic.Int32
	overlap atomic.Bool
	err     error
	delay   time.Duration
	done    chan struct{}
}

func newCountingTask(maxRetries int, err error) *countingTask {
	return &countingTask{
		Task: NewTask(TaskTypeScrapeSource, "Zulrah", maxRetries),
		err:  err,
		done: make(chan struct{}, 10),
	}
}

func (c *countingTask) Execute(ctx context.Context) error {
	if c.running.Add(1) > 1 {
		c.overlap.Store(true)
	}
	defer c.running.Add(-1)

	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	c.runs.Add(1)
	select {
	case c.done <- struct{}{}:
	default:
	}
	return c.err
}

func waitFor(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for execution %d", i+1)
		}
	}
}

func TestNewTask(t *testing.T) {
	a := NewTask(TaskTypeScrapeAll, "", 0)
	b := NewTask(TaskTypeScrapeAll, "", 0)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.CanRetry())
	assert.Zero(t, a.GetDuration())

	a.Start()
	assert.NotNil(t, a.StartedAt)
}

func TestSchedulerExecutesTasks(t *testing.T) {
	s := NewScheduler(nil, 0)
	s.Start()
	defer s.Stop()

	task := newCountingTask(0, nil)
	require.NoError(t, s.EnqueueTask(task))
	require.NoError(t, s.EnqueueTask(task))

	waitFor(t, task.done, 2)
	assert.Equal(t, int32(2), task.runs.Load())
}

func TestSchedulerRunsOneTaskAtATime(t *testing.T) {
	s := NewScheduler(nil, 0)
	s.Start()
	defer s.Stop()

	task := newCountingTask(0, nil)
	task.delay = 20 * time.Millisecond
	for i := 0; i < 3; i++ {
		require.NoError(t, s.EnqueueTask(task))
	}

	waitFor(t, task.done, 3)
	assert.False(t, task.overlap.Load())
}

func TestSchedulerRetriesTransientFailures(t *testing.T) {
	s := NewScheduler(nil, 0)
	s.Start()
	defer s.Stop()

	task := newCountingTask(1, errors.New("wiki unavailable"))
	require.NoError(t, s.EnqueueTask(task))

	// First attempt, then one retry after a one second backoff.
	waitFor(t, task.done, 2)
	assert.Equal(t, 1, task.GetRetryCount())
}

func TestSchedulerDoesNotRetryPermanentFailures(t *testing.T) {
	s := NewScheduler(nil, 0)
	s.Start()

	task := newCountingTask(DefaultMaxRetries, ErrNoDrops)
	require.NoError(t, s.EnqueueTask(task))
	waitFor(t, task.done, 1)

	s.Stop()
	assert.Equal(t, 0, task.GetRetryCount())
	assert.Equal(t, int32(1), task.runs.Load())
}

func TestSchedulerPeriodicRuns(t *testing.T) {
	s := NewScheduler(nil, 30*time.Millisecond)
	task := newCountingTask(0, nil)
	s.periodic = func() TaskInterface { return task }

	s.Start()
	defer s.Stop()

	// One run at start and at least one per tick.
	waitFor(t, task.done, 3)
}

func TestSchedulerQueueFull(t *testing.T) {
	s := NewScheduler(nil, 0)

	task := newCountingTask(0, nil)
	for i := 0; i < taskQueueSize; i++ {
		require.NoError(t, s.EnqueueTask(task))
	}
	assert.EqualError(t, s.EnqueueTask(task), "task queue is full")

	s.Stop()
	assert.ErrorIs(t, s.EnqueueTask(task), context.Canceled)
}
