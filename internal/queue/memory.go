package queue

import (
	"context"
	"sort"
	"sync"

	"mentorhub-notify/internal/pkg/clock"
	"mentorhub-notify/internal/pkg/errs"

	"github.com/google/uuid"
)

type memState int

const (
	memQueued memState = iota
	memClaimed
	memCompleted
	memFailed
)

type memJob struct {
	job       Job
	state     memState
	lastError string
}

// MemoryQueue satisfies the same contract as the Postgres queue without any
// persistence. It backs local/dev runs (QUEUE_DRIVER=memory) and the unit
// tests of everything that sits on top of the queue.
type MemoryQueue struct {
	mu   sync.Mutex
	clk  clock.Clock
	jobs map[uuid.UUID]*memJob
}

func NewMemoryQueue(clk clock.Clock) *MemoryQueue {
	return &MemoryQueue{
		clk:  clk,
		jobs: make(map[uuid.UUID]*memJob),
	}
}

func (q *MemoryQueue) Enqueue(_ context.Context, queueName string, payload []byte, opts Options) (uuid.UUID, error) {
	opts = opts.withDefaults()
	now := q.clk.Now()

	job := Job{
		ID:          uuid.New(),
		Queue:       queueName,
		Payload:     payload,
		Attempts:    0,
		MaxAttempts: opts.MaxAttempts,
		BackoffBase: opts.BackoffBase,
		NotBefore:   now.Add(opts.Delay),
		CreatedAt:   now,
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs[job.ID] = &memJob{job: job, state: memQueued}
	return job.ID, nil
}

func (q *MemoryQueue) Claim(_ context.Context, queueName string) (*Job, error) {
	now := q.clk.Now()

	q.mu.Lock()
	defer q.mu.Unlock()

	var ready []*memJob
	for _, mj := range q.jobs {
		if mj.state == memQueued && mj.job.Queue == queueName && !mj.job.NotBefore.After(now) {
			ready = append(ready, mj)
		}
	}
	if len(ready) == 0 {
		return nil, nil
	}

	sort.Slice(ready, func(i, j int) bool {
		return ready[i].job.NotBefore.Before(ready[j].job.NotBefore)
	})

	claimed := ready[0]
	claimed.state = memClaimed
	jobCopy := claimed.job
	return &jobCopy, nil
}

func (q *MemoryQueue) Ack(_ context.Context, jobID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	mj, ok := q.jobs[jobID]
	if !ok {
		return errs.ErrJobNotFound
	}
	mj.state = memCompleted
	return nil
}

func (q *MemoryQueue) Fail(_ context.Context, jobID uuid.UUID, retriable bool, cause error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	mj, ok := q.jobs[jobID]
	if !ok {
		return errs.ErrJobNotFound
	}

	mj.job.Attempts++
	if cause != nil {
		mj.lastError = cause.Error()
	}

	if retriable && mj.job.Attempts < mj.job.MaxAttempts {
		mj.job.NotBefore = q.clk.Now().Add(backoffDelay(mj.job.BackoffBase, mj.job.Attempts))
		mj.state = memQueued
		return nil
	}

	mj.state = memFailed
	return nil
}

// Snapshot returns a copy of the job's current state for tests and the audit
// surface of the dev queue.
func (q *MemoryQueue) Snapshot(jobID uuid.UUID) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	mj, ok := q.jobs[jobID]
	if !ok {
		return Job{}, false
	}
	return mj.job, true
}

// Terminal reports whether the job has reached Ack or terminal Fail.
func (q *MemoryQueue) Terminal(jobID uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	mj, ok := q.jobs[jobID]
	if !ok {
		return false
	}
	return mj.state == memCompleted || mj.state == memFailed
}
