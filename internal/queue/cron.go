package queue

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"mentorhub-notify/internal/pkg/clock"
	"mentorhub-notify/internal/pkg/errs"

	"github.com/google/uuid"
)

// Named recurring triggers exposed to the sweep engine.
const (
	TriggerHourly         = "hourly"
	TriggerEvery10Minutes = "every-10-minutes"
	TriggerWeeklyMonday   = "weekly-monday-9am"
)

var namedTriggers = map[string]string{
	TriggerHourly:         "0 * * * *",
	TriggerEvery10Minutes: "*/10 * * * *",
	TriggerWeeklyMonday:   "0 9 * * 1",
}

// PatternFor resolves a named trigger to its cron pattern.
func PatternFor(name string) (string, bool) {
	p, ok := namedTriggers[name]
	return p, ok
}

// cronField matches one position of a five-field pattern. Supported forms:
// "*", "*/n", "a,b,c" and plain numbers; ranges are not needed by any trigger
// this subsystem defines.
type cronField struct {
	any    bool
	step   int
	values map[int]bool
}

func parseCronField(s string) (cronField, error) {
	if s == "*" {
		return cronField{any: true}, nil
	}
	if rest, ok := strings.CutPrefix(s, "*/"); ok {
		step, err := strconv.Atoi(rest)
		if err != nil || step <= 0 {
			return cronField{}, errs.Newf("invalid cron step %q", s)
		}
		return cronField{step: step}, nil
	}

	values := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return cronField{}, errs.Newf("invalid cron value %q", s)
		}
		values[v] = true
	}
	return cronField{values: values}, nil
}

func (f cronField) matches(v int) bool {
	switch {
	case f.any:
		return true
	case f.step > 0:
		return v%f.step == 0
	default:
		return f.values[v]
	}
}

// Pattern is a parsed five-field cron expression: minute, hour, day-of-month,
// month, day-of-week (0 = Sunday).
type Pattern struct {
	minute, hour, dom, month, dow cronField
}

func ParsePattern(expr string) (Pattern, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return Pattern{}, errs.Newf("cron pattern must have 5 fields, got %q", expr)
	}

	var p Pattern
	var err error
	for i, dst := range []*cronField{&p.minute, &p.hour, &p.dom, &p.month, &p.dow} {
		if *dst, err = parseCronField(fields[i]); err != nil {
			return Pattern{}, err
		}
	}
	return p, nil
}

func (p Pattern) Matches(t time.Time) bool {
	return p.minute.matches(t.Minute()) &&
		p.hour.matches(t.Hour()) &&
		p.dom.matches(t.Day()) &&
		p.month.matches(int(t.Month())) &&
		p.dow.matches(int(t.Weekday()))
}

// Handle identifies a registered recurring trigger for cancellation.
type Handle uuid.UUID

type cronEntry struct {
	pattern  Pattern
	fn       func(context.Context)
	lastFire time.Time // minute-truncated, guards against double fire within one minute
}

// Scheduler evaluates recurring trigger definitions against wall-clock time on
// a steady tick. It replaces the external process scheduler the platform does
// not have: recurring jobs re-enqueue themselves here regardless of how prior
// executions ended.
type Scheduler struct {
	mu      sync.Mutex
	entries map[Handle]*cronEntry
	clk     clock.Clock
	tick    time.Duration
	logger  *slog.Logger
}

func NewScheduler(clk clock.Clock, tick time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		entries: make(map[Handle]*cronEntry),
		clk:     clk,
		tick:    tick,
		logger:  logger,
	}
}

// AddFunc registers fn to run whenever pattern matches the current minute.
func (s *Scheduler) AddFunc(pattern string, fn func(context.Context)) (Handle, error) {
	p, err := ParsePattern(pattern)
	if err != nil {
		return Handle(uuid.Nil), err
	}

	h := Handle(uuid.New())
	s.mu.Lock()
	s.entries[h] = &cronEntry{pattern: p, fn: fn}
	s.mu.Unlock()
	return h, nil
}

// AddNamed binds fn to one of the named triggers.
func (s *Scheduler) AddNamed(name string, fn func(context.Context)) (Handle, error) {
	pattern, ok := PatternFor(name)
	if !ok {
		return Handle(uuid.Nil), errs.Newf("unknown trigger %q", name)
	}
	return s.AddFunc(pattern, fn)
}

func (s *Scheduler) Remove(h Handle) {
	s.mu.Lock()
	delete(s.entries, h)
	s.mu.Unlock()
}

// EnqueueRecurring re-enqueues payload on queueName per the cron pattern,
// independent of prior execution outcomes.
func (s *Scheduler) EnqueueRecurring(q Queue, queueName string, payload []byte, pattern string) (Handle, error) {
	return s.AddFunc(pattern, func(ctx context.Context) {
		if _, err := q.Enqueue(ctx, queueName, payload, Options{}); err != nil {
			s.logger.Error("recurring enqueue failed", "queue", queueName, "error", err)
		}
	})
}

func (s *Scheduler) CancelRecurring(h Handle) {
	s.Remove(h)
}

// Run blocks until ctx is cancelled, evaluating all entries once per tick.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.logger.Info("cron scheduler started", "tick", s.tick)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("cron scheduler stopped")
			return
		case <-ticker.C:
			s.Evaluate(ctx)
		}
	}
}

// Evaluate fires every entry whose pattern matches the current minute and has
// not already fired in it. Exported so tests can drive the scheduler with a
// mock clock instead of a ticker.
func (s *Scheduler) Evaluate(ctx context.Context) {
	now := s.clk.Now()
	minute := now.Truncate(time.Minute)

	s.mu.Lock()
	var due []func(context.Context)
	for _, e := range s.entries {
		if e.lastFire.Equal(minute) || !e.pattern.Matches(now) {
			continue
		}
		e.lastFire = minute
		due = append(due, e.fn)
	}
	s.mu.Unlock()

	for _, fn := range due {
		go fn(ctx)
	}
}
