// Package worker runs the consumer side of the job queue: a fixed pool of
// goroutines per queue, each polling Claim and running one job end-to-end.
// Claim is the only suspension point; handlers classify failures and the pool
// translates the classification into Ack/Fail.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mentorhub-notify/internal/pkg/errs"
	"mentorhub-notify/internal/queue"
)

// Handler processes one claimed job. A nil return Acks the job; an error
// marked errs.ErrPermanent fails it terminally; any other error sends it back
// to the ready pool with backoff.
type Handler interface {
	Handle(ctx context.Context, job *queue.Job) error
}

type Pool struct {
	queue        queue.Queue
	queueName    string
	handler      Handler
	size         int
	pollInterval time.Duration
	logger       *slog.Logger
}

func NewPool(q queue.Queue, queueName string, handler Handler, size int, pollInterval time.Duration, logger *slog.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{
		queue:        q,
		queueName:    queueName,
		handler:      handler,
		size:         size,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled and all workers have drained.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.size; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.runWorker(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.logger.Info("worker started", "queue", p.queueName, "worker", id)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker stopped", "queue", p.queueName, "worker", id)
			return
		case <-ticker.C:
			p.drain(ctx, id)
		}
	}
}

// drain processes ready jobs until the queue is empty, so a backlog does not
// wait one poll interval per job.
func (p *Pool) drain(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			return
		}

		job, err := p.queue.Claim(ctx, p.queueName)
		if err != nil {
			p.logger.Error("claim failed", "queue", p.queueName, "worker", id, "error", err)
			return
		}
		if job == nil {
			return
		}
		p.process(ctx, id, job)
	}
}

func (p *Pool) process(ctx context.Context, id int, job *queue.Job) {
	start := time.Now()
	err := p.handler.Handle(ctx, job)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		if ackErr := p.queue.Ack(ctx, job.ID); ackErr != nil {
			p.logger.Error("ack failed", "queue", p.queueName, "job_id", job.ID, "error", ackErr)
			return
		}
		p.logger.Info("job completed", "queue", p.queueName, "worker", id, "job_id", job.ID, "duration", elapsed)

	case errs.Is(err, errs.ErrPermanent):
		if failErr := p.queue.Fail(ctx, job.ID, false, err); failErr != nil {
			p.logger.Error("fail failed", "queue", p.queueName, "job_id", job.ID, "error", failErr)
			return
		}
		p.logger.Error("job failed permanently", "queue", p.queueName, "worker", id, "job_id", job.ID, "duration", elapsed, "error", err)

	default:
		if failErr := p.queue.Fail(ctx, job.ID, true, err); failErr != nil {
			p.logger.Error("fail failed", "queue", p.queueName, "job_id", job.ID, "error", failErr)
			return
		}
		p.logger.Warn("job failed, will retry", "queue", p.queueName, "worker", id, "job_id", job.ID,
			"attempt", job.Attempts+1, "max_attempts", job.MaxAttempts, "error", err)
	}
}
