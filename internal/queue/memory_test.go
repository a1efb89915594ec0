//go:build unit

package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"mentorhub-notify/internal/pkg/clock"
	"mentorhub-notify/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestMemoryQueue_EnqueueAndClaim(t *testing.T) {
	ctx := context.Background()

	t.Run("claimed job carries its payload and defaults", func(t *testing.T) {
		clk := clock.NewMockClock(baseTime)
		q := NewMemoryQueue(clk)

		id, err := q.Enqueue(ctx, Notifications, []byte(`{"k":"v"}`), Options{})
		require.NoError(t, err)

		job, err := q.Claim(ctx, Notifications)
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, id, job.ID)
		assert.Equal(t, Notifications, job.Queue)
		assert.Equal(t, []byte(`{"k":"v"}`), job.Payload)
		assert.Equal(t, 0, job.Attempts)
		assert.Equal(t, DefaultMaxAttempts, job.MaxAttempts)
		assert.Equal(t, DefaultBackoffBase, job.BackoffBase)
	})

	t.Run("a job is claimable at most once", func(t *testing.T) {
		clk := clock.NewMockClock(baseTime)
		q := NewMemoryQueue(clk)

		_, err := q.Enqueue(ctx, Notifications, []byte(`{}`), Options{})
		require.NoError(t, err)

		first, err := q.Claim(ctx, Notifications)
		require.NoError(t, err)
		require.NotNil(t, first)

		second, err := q.Claim(ctx, Notifications)
		require.NoError(t, err)
		assert.Nil(t, second)
	})

	t.Run("queues are isolated", func(t *testing.T) {
		clk := clock.NewMockClock(baseTime)
		q := NewMemoryQueue(clk)

		_, err := q.Enqueue(ctx, Scheduling, []byte(`{}`), Options{})
		require.NoError(t, err)

		job, err := q.Claim(ctx, Notifications)
		require.NoError(t, err)
		assert.Nil(t, job)

		job, err = q.Claim(ctx, Scheduling)
		require.NoError(t, err)
		assert.NotNil(t, job)
	})

	t.Run("earliest ready job is claimed first", func(t *testing.T) {
		clk := clock.NewMockClock(baseTime)
		q := NewMemoryQueue(clk)

		late, err := q.Enqueue(ctx, Notifications, []byte(`late`), Options{Delay: time.Minute})
		require.NoError(t, err)
		early, err := q.Enqueue(ctx, Notifications, []byte(`early`), Options{})
		require.NoError(t, err)

		clk.Add(2 * time.Minute)

		job, err := q.Claim(ctx, Notifications)
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, early, job.ID)

		job, err = q.Claim(ctx, Notifications)
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, late, job.ID)
	})
}

func TestMemoryQueue_Delay(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(baseTime)
	q := NewMemoryQueue(clk)

	id, err := q.Enqueue(ctx, Scheduling, []byte(`{}`), Options{Delay: 10 * time.Minute})
	require.NoError(t, err)

	// Not claimable before the delay elapses.
	job, err := q.Claim(ctx, Scheduling)
	require.NoError(t, err)
	assert.Nil(t, job)

	clk.Add(9 * time.Minute)
	job, err = q.Claim(ctx, Scheduling)
	require.NoError(t, err)
	assert.Nil(t, job)

	clk.Add(time.Minute)
	job, err = q.Claim(ctx, Scheduling)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, id, job.ID)
}

func TestMemoryQueue_RetryBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("retriable failure requeues with doubling backoff", func(t *testing.T) {
		clk := clock.NewMockClock(baseTime)
		q := NewMemoryQueue(clk)

		id, err := q.Enqueue(ctx, Notifications, []byte(`{}`), Options{MaxAttempts: 3, BackoffBase: 2 * time.Second})
		require.NoError(t, err)

		// First failure: back off 2s.
		job, err := q.Claim(ctx, Notifications)
		require.NoError(t, err)
		require.NotNil(t, job)
		require.NoError(t, q.Fail(ctx, id, true, errors.New("smtp down")))

		snap, ok := q.Snapshot(id)
		require.True(t, ok)
		assert.Equal(t, 1, snap.Attempts)
		assert.Equal(t, clk.Now().Add(2*time.Second), snap.NotBefore)
		assert.False(t, q.Terminal(id))

		// Second failure: back off 4s.
		clk.Add(2 * time.Second)
		job, err = q.Claim(ctx, Notifications)
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, 1, job.Attempts)
		require.NoError(t, q.Fail(ctx, id, true, errors.New("smtp down")))

		snap, ok = q.Snapshot(id)
		require.True(t, ok)
		assert.Equal(t, 2, snap.Attempts)
		assert.Equal(t, clk.Now().Add(4*time.Second), snap.NotBefore)
		assert.False(t, q.Terminal(id))

		// Third failure exhausts the budget: terminal, no requeue.
		clk.Add(4 * time.Second)
		job, err = q.Claim(ctx, Notifications)
		require.NoError(t, err)
		require.NotNil(t, job)
		require.NoError(t, q.Fail(ctx, id, true, errors.New("smtp down")))

		snap, ok = q.Snapshot(id)
		require.True(t, ok)
		assert.Equal(t, 3, snap.Attempts)
		assert.True(t, q.Terminal(id))

		job, err = q.Claim(ctx, Notifications)
		require.NoError(t, err)
		assert.Nil(t, job)
	})

	t.Run("non-retriable failure is terminal on the first attempt", func(t *testing.T) {
		clk := clock.NewMockClock(baseTime)
		q := NewMemoryQueue(clk)

		id, err := q.Enqueue(ctx, Notifications, []byte(`{}`), Options{})
		require.NoError(t, err)

		job, err := q.Claim(ctx, Notifications)
		require.NoError(t, err)
		require.NotNil(t, job)

		require.NoError(t, q.Fail(ctx, id, false, errors.New("recipient not found")))
		assert.True(t, q.Terminal(id))

		snap, _ := q.Snapshot(id)
		assert.Equal(t, 1, snap.Attempts)
	})
}

func TestMemoryQueue_Ack(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(baseTime)
	q := NewMemoryQueue(clk)

	id, err := q.Enqueue(ctx, Notifications, []byte(`{}`), Options{})
	require.NoError(t, err)

	job, err := q.Claim(ctx, Notifications)
	require.NoError(t, err)
	require.NotNil(t, job)

	require.NoError(t, q.Ack(ctx, id))
	assert.True(t, q.Terminal(id))

	job, err = q.Claim(ctx, Notifications)
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestMemoryQueue_UnknownJob(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(clock.NewMockClock(baseTime))

	err := q.Ack(ctx, uuid.New())
	assert.ErrorIs(t, err, errs.ErrJobNotFound)

	err = q.Fail(ctx, uuid.New(), true, nil)
	assert.ErrorIs(t, err, errs.ErrJobNotFound)
}

func TestBackoffDelay(t *testing.T) {
	base := 2 * time.Second
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 1, want: 2 * time.Second},
		{attempt: 2, want: 4 * time.Second},
		{attempt: 3, want: 8 * time.Second},
		{attempt: 4, want: 16 * time.Second},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, backoffDelay(base, tc.attempt), "attempt %d", tc.attempt)
	}
}
