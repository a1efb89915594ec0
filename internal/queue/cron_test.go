//go:build unit

package queue

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"mentorhub-notify/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestParsePattern(t *testing.T) {
	t.Run("rejects malformed patterns", func(t *testing.T) {
		for _, expr := range []string{"", "* * * *", "* * * * * *", "x * * * *", "*/0 * * * *", "*/x * * * *", "-1 * * * *"} {
			_, err := ParsePattern(expr)
			assert.Error(t, err, "pattern %q", expr)
		}
	})

	t.Run("matches", func(t *testing.T) {
		cases := []struct {
			name    string
			expr    string
			at      time.Time
			matches bool
		}{
			{
				name:    "hourly fires on the hour",
				expr:    "0 * * * *",
				at:      time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC),
				matches: true,
			},
			{
				name:    "hourly skips mid-hour",
				expr:    "0 * * * *",
				at:      time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC),
				matches: false,
			},
			{
				name:    "every ten minutes fires at :50",
				expr:    "*/10 * * * *",
				at:      time.Date(2025, 3, 10, 14, 50, 0, 0, time.UTC),
				matches: true,
			},
			{
				name:    "every ten minutes skips :55",
				expr:    "*/10 * * * *",
				at:      time.Date(2025, 3, 10, 14, 55, 0, 0, time.UTC),
				matches: false,
			},
			{
				name:    "weekly fires monday 9am",
				expr:    "0 9 * * 1",
				at:      time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), // a Monday
				matches: true,
			},
			{
				name:    "weekly skips tuesday 9am",
				expr:    "0 9 * * 1",
				at:      time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC),
				matches: false,
			},
			{
				name:    "comma list",
				expr:    "15,45 * * * *",
				at:      time.Date(2025, 3, 10, 9, 45, 0, 0, time.UTC),
				matches: true,
			},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				p, err := ParsePattern(tc.expr)
				require.NoError(t, err)
				assert.Equal(t, tc.matches, p.Matches(tc.at))
			})
		}
	})
}

func TestPatternFor(t *testing.T) {
	for _, name := range []string{TriggerHourly, TriggerEvery10Minutes, TriggerWeeklyMonday} {
		expr, ok := PatternFor(name)
		require.True(t, ok, name)
		_, err := ParsePattern(expr)
		assert.NoError(t, err, name)
	}

	_, ok := PatternFor("nope")
	assert.False(t, ok)
}

func TestScheduler_Evaluate(t *testing.T) {
	ctx := context.Background()
	monday9 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("fires matching entries once per minute", func(t *testing.T) {
		clk := clock.NewMockClock(monday9)
		s := NewScheduler(clk, time.Second, testLogger())

		var fired atomic.Int32
		_, err := s.AddNamed(TriggerHourly, func(context.Context) { fired.Add(1) })
		require.NoError(t, err)

		s.Evaluate(ctx)
		require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)

		// Same minute: no double fire.
		clk.Add(10 * time.Second)
		s.Evaluate(ctx)
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, int32(1), fired.Load())

		// Next matching minute fires again.
		clk.Set(monday9.Add(time.Hour))
		s.Evaluate(ctx)
		require.Eventually(t, func() bool { return fired.Load() == 2 }, time.Second, time.Millisecond)
	})

	t.Run("non-matching minute does not fire", func(t *testing.T) {
		clk := clock.NewMockClock(monday9.Add(7 * time.Minute))
		s := NewScheduler(clk, time.Second, testLogger())

		var fired atomic.Int32
		_, err := s.AddNamed(TriggerEvery10Minutes, func(context.Context) { fired.Add(1) })
		require.NoError(t, err)

		s.Evaluate(ctx)
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, int32(0), fired.Load())
	})

	t.Run("removed entry stops firing", func(t *testing.T) {
		clk := clock.NewMockClock(monday9)
		s := NewScheduler(clk, time.Second, testLogger())

		var fired atomic.Int32
		h, err := s.AddFunc("* * * * *", func(context.Context) { fired.Add(1) })
		require.NoError(t, err)

		s.Evaluate(ctx)
		require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)

		s.Remove(h)
		clk.Add(time.Minute)
		s.Evaluate(ctx)
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, int32(1), fired.Load())
	})

	t.Run("unknown named trigger is rejected", func(t *testing.T) {
		s := NewScheduler(clock.NewMockClock(monday9), time.Second, testLogger())
		_, err := s.AddNamed("every-leap-year", func(context.Context) {})
		assert.Error(t, err)
	})
}

func TestScheduler_EnqueueRecurring(t *testing.T) {
	ctx := context.Background()
	monday9 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(monday9)

	q := NewMemoryQueue(clk)
	s := NewScheduler(clk, time.Second, testLogger())

	h, err := s.EnqueueRecurring(q, Scheduling, []byte(`{"sweep":"hourly"}`), "0 * * * *")
	require.NoError(t, err)

	s.Evaluate(ctx)
	require.Eventually(t, func() bool {
		job, err := q.Claim(ctx, Scheduling)
		return err == nil && job != nil
	}, time.Second, time.Millisecond)

	// Cancelled triggers enqueue nothing on later matches.
	s.CancelRecurring(h)
	clk.Set(monday9.Add(time.Hour))
	s.Evaluate(ctx)
	time.Sleep(20 * time.Millisecond)

	job, err := q.Claim(ctx, Scheduling)
	require.NoError(t, err)
	assert.Nil(t, job)
}
