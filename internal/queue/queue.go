// Package queue provides the durable work queue feeding the notification and
// scheduling workers: enqueue-now, enqueue-with-delay and cron-style recurring
// triggers, with per-job retry/backoff and at-least-once delivery to exactly
// one worker per attempt.
package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Queue names consumed by the worker pools.
const (
	Notifications = "notifications"
	Scheduling    = "scheduling"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoffBase = 2 * time.Second
)

// Options controls the retry envelope of a single job.
type Options struct {
	MaxAttempts int           // defaults to 3
	BackoffBase time.Duration // first retry delay, doubling per attempt
	Delay       time.Duration // time before the job becomes claimable
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = DefaultBackoffBase
	}
	if o.Delay < 0 {
		o.Delay = 0
	}
	return o
}

// Job is a claimed unit of work. Attempts counts finished executions; a job
// whose execution fails retriably goes back to the ready pool with
// NotBefore = now + BackoffBase * 2^(Attempts-1).
type Job struct {
	ID          uuid.UUID
	Queue       string
	Payload     []byte
	Attempts    int
	MaxAttempts int
	BackoffBase time.Duration
	NotBefore   time.Time
	CreatedAt   time.Time
}

// Queue is the contract shared by the durable Postgres implementation and the
// in-process memory implementation. Workers and callers never depend on which
// one is active.
type Queue interface {
	// Enqueue makes payload claimable on queueName after opts.Delay.
	Enqueue(ctx context.Context, queueName string, payload []byte, opts Options) (uuid.UUID, error)
	// Claim atomically transfers the earliest ready job to the caller.
	// Returns (nil, nil) when nothing is ready; workers own the polling loop.
	Claim(ctx context.Context, queueName string) (*Job, error)
	// Ack marks the job permanently complete.
	Ack(ctx context.Context, jobID uuid.UUID) error
	// Fail returns the job to the ready pool with backoff when retriable and
	// attempts remain; otherwise the job is terminally failed and kept for
	// audit.
	Fail(ctx context.Context, jobID uuid.UUID, retriable bool, cause error) error
}

// backoffDelay computes the wait after the n-th failed attempt (1-based).
func backoffDelay(base time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}
