package queue

import (
	"context"
	"errors"
	"os"
	"time"

	"mentorhub-notify/internal/infra"
	"mentorhub-notify/internal/pkg/clock"
	"mentorhub-notify/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresQueue is the durable queue. A claim takes a row-level lease
// (locked_by/locked_until) under FOR UPDATE SKIP LOCKED, so at most one worker
// holds a job per attempt while a crashed worker's lease simply expires and
// the job becomes claimable again (at-least-once).
type PostgresQueue struct {
	pool     *pgxpool.Pool
	clk      clock.Clock
	lease    time.Duration
	workerID string
}

func NewPostgresQueue(pool *pgxpool.Pool, clk clock.Clock, lease time.Duration) *PostgresQueue {
	host, _ := os.Hostname()
	return &PostgresQueue{
		pool:     pool,
		clk:      clk,
		lease:    lease,
		workerID: host + "/" + uuid.NewString()[:8],
	}
}

const enqueueSQL = `
INSERT INTO jobs (id, queue, payload, status, attempts, max_attempts, backoff_base_ms, not_before, created_at, updated_at)
VALUES ($1, $2, $3, 'queued', 0, $4, $5, $6, $7, $7)`

func (q *PostgresQueue) Enqueue(ctx context.Context, queueName string, payload []byte, opts Options) (uuid.UUID, error) {
	opts = opts.withDefaults()
	now := q.clk.Now()
	id := uuid.New()

	_, err := q.pool.Exec(ctx, enqueueSQL,
		id, queueName, payload, opts.MaxAttempts, opts.BackoffBase.Milliseconds(), now.Add(opts.Delay), now)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to enqueue job", err)
	}
	return id, nil
}

const claimSQL = `
UPDATE jobs
SET status = 'claimed', locked_by = $2, locked_until = $3, updated_at = now()
WHERE id = (
    SELECT id FROM jobs
    WHERE queue = $1
      AND (status = 'queued' OR (status = 'claimed' AND locked_until < now()))
      AND not_before <= now()
    ORDER BY not_before
    FOR UPDATE SKIP LOCKED
    LIMIT 1
)
RETURNING id, queue, payload, attempts, max_attempts, backoff_base_ms, not_before, created_at`

func (q *PostgresQueue) Claim(ctx context.Context, queueName string) (*Job, error) {
	row := q.pool.QueryRow(ctx, claimSQL, queueName, q.workerID, q.clk.Now().Add(q.lease))

	var (
		job       Job
		backoffMs int64
	)
	err := row.Scan(&job.ID, &job.Queue, &job.Payload, &job.Attempts, &job.MaxAttempts, &backoffMs, &job.NotBefore, &job.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to claim job", err)
	}

	job.BackoffBase = time.Duration(backoffMs) * time.Millisecond
	return &job, nil
}

const ackSQL = `
UPDATE jobs
SET status = 'completed', locked_by = NULL, locked_until = NULL, updated_at = now()
WHERE id = $1 AND status = 'claimed'`

func (q *PostgresQueue) Ack(ctx context.Context, jobID uuid.UUID) error {
	tag, err := q.pool.Exec(ctx, ackSQL, jobID)
	if err != nil {
		return infra.WrapRepoErr("failed to ack job", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrJobNotFound
	}
	return nil
}

// failSQL folds the retry decision into one statement: attempts+1 still below
// max and retriable puts the job back in the ready pool with exponential
// backoff, anything else terminally fails it. power(2, attempts) uses the
// pre-increment value, giving backoff_base * 2^(n-1) after the n-th failure.
const failSQL = `
UPDATE jobs
SET attempts     = attempts + 1,
    status       = CASE WHEN $2::bool AND attempts + 1 < max_attempts THEN 'queued' ELSE 'failed' END,
    not_before   = CASE WHEN $2::bool AND attempts + 1 < max_attempts
                        THEN now() + backoff_base_ms * power(2, attempts) * interval '1 millisecond'
                        ELSE not_before END,
    locked_by    = NULL,
    locked_until = NULL,
    last_error   = $3,
    updated_at   = now()
WHERE id = $1 AND status = 'claimed'`

func (q *PostgresQueue) Fail(ctx context.Context, jobID uuid.UUID, retriable bool, cause error) error {
	var lastError *string
	if cause != nil {
		msg := cause.Error()
		lastError = &msg
	}

	tag, err := q.pool.Exec(ctx, failSQL, jobID, retriable, lastError)
	if err != nil {
		return infra.WrapRepoErr("failed to fail job", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrJobNotFound
	}
	return nil
}
