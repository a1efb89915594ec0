//go:build unit

package worker

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"mentorhub-notify/internal/pkg/clock"
	"mentorhub-notify/internal/pkg/errs"
	"mentorhub-notify/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	err   error
	calls int
}

func (s *stubHandler) Handle(context.Context, *queue.Job) error {
	s.calls++
	return s.err
}

func poolFixture(t *testing.T, h Handler) (*Pool, *queue.MemoryQueue, *clock.MockClock) {
	t.Helper()
	clk := clock.NewMockClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	q := queue.NewMemoryQueue(clk)
	p := NewPool(q, queue.Notifications, h, 1, time.Millisecond, slog.New(slog.DiscardHandler))
	return p, q, clk
}

func TestPool_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("successful handler acks the job", func(t *testing.T) {
		h := &stubHandler{}
		p, q, _ := poolFixture(t, h)

		id, err := q.Enqueue(ctx, queue.Notifications, []byte(`{}`), queue.Options{})
		require.NoError(t, err)

		p.drain(ctx, 0)

		assert.Equal(t, 1, h.calls)
		assert.True(t, q.Terminal(id))
	})

	t.Run("permanent error fails the job terminally", func(t *testing.T) {
		h := &stubHandler{err: errs.Mark(errs.New("bad payload"), errs.ErrPermanent)}
		p, q, _ := poolFixture(t, h)

		id, err := q.Enqueue(ctx, queue.Notifications, []byte(`{}`), queue.Options{})
		require.NoError(t, err)

		p.drain(ctx, 0)

		assert.Equal(t, 1, h.calls)
		assert.True(t, q.Terminal(id))
		snap, _ := q.Snapshot(id)
		assert.Equal(t, 1, snap.Attempts)
	})

	t.Run("transient error requeues with backoff until exhausted", func(t *testing.T) {
		h := &stubHandler{err: errs.Mark(errs.New("smtp down"), errs.ErrTransient)}
		p, q, clk := poolFixture(t, h)

		id, err := q.Enqueue(ctx, queue.Notifications, []byte(`{}`), queue.Options{MaxAttempts: 3, BackoffBase: 2 * time.Second})
		require.NoError(t, err)

		p.drain(ctx, 0)
		assert.Equal(t, 1, h.calls)
		assert.False(t, q.Terminal(id))

		// Not ready again until the backoff elapses.
		p.drain(ctx, 0)
		assert.Equal(t, 1, h.calls)

		clk.Add(2 * time.Second)
		p.drain(ctx, 0)
		assert.Equal(t, 2, h.calls)
		assert.False(t, q.Terminal(id))

		clk.Add(4 * time.Second)
		p.drain(ctx, 0)
		assert.Equal(t, 3, h.calls)
		assert.True(t, q.Terminal(id))

		// Exhausted: nothing left to claim.
		clk.Add(time.Hour)
		p.drain(ctx, 0)
		assert.Equal(t, 3, h.calls)
	})

	t.Run("drain empties a backlog in one pass", func(t *testing.T) {
		h := &stubHandler{}
		p, q, _ := poolFixture(t, h)

		for i := 0; i < 5; i++ {
			_, err := q.Enqueue(ctx, queue.Notifications, []byte(`{}`), queue.Options{})
			require.NoError(t, err)
		}

		p.drain(ctx, 0)
		assert.Equal(t, 5, h.calls)
	})
}
