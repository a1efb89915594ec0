package usecase

import (
	"context"
	"time"

	"mentorhub-notify/internal/domain/notification"
	"mentorhub-notify/internal/domain/schedule"
	"mentorhub-notify/internal/pkg/clock"
	"mentorhub-notify/internal/pkg/config"
	"mentorhub-notify/internal/queue"

	"github.com/google/uuid"
)

// Notifications is the enqueue API consumed by the request-serving layer.
// Callers hand over a fully-formed payload and never wait for delivery.
type Notifications interface {
	Enqueue(ctx context.Context, p notification.Payload) (uuid.UUID, error)
	EnqueueBulk(ctx context.Context, ps []notification.Payload) ([]uuid.UUID, error)
	Schedule(ctx context.Context, p notification.Payload, delay time.Duration) (uuid.UUID, error)
	EnqueueScheduledAction(ctx context.Context, p schedule.Payload) (uuid.UUID, error)
}

type notificationsImpl struct {
	queue    queue.Queue
	clk      clock.Clock
	defaults queue.Options
}

func NewNotifications(q queue.Queue, clk clock.Clock, cfg config.QueueConfig) Notifications {
	return &notificationsImpl{
		queue: q,
		clk:   clk,
		defaults: queue.Options{
			MaxAttempts: cfg.DefaultAttempts,
			BackoffBase: cfg.DefaultBackoff,
		},
	}
}

func (uc *notificationsImpl) Enqueue(ctx context.Context, p notification.Payload) (uuid.UUID, error) {
	return uc.enqueueWithDelay(ctx, p, 0)
}

func (uc *notificationsImpl) EnqueueBulk(ctx context.Context, ps []notification.Payload) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(ps))
	for _, p := range ps {
		id, err := uc.enqueueWithDelay(ctx, p, 0)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (uc *notificationsImpl) Schedule(ctx context.Context, p notification.Payload, delay time.Duration) (uuid.UUID, error) {
	return uc.enqueueWithDelay(ctx, p, delay)
}

func (uc *notificationsImpl) EnqueueScheduledAction(ctx context.Context, p schedule.Payload) (uuid.UUID, error) {
	if err := p.Validate(); err != nil {
		return uuid.Nil, err
	}
	raw, err := p.Marshal()
	if err != nil {
		return uuid.Nil, err
	}

	opts := uc.defaults
	opts.Delay = p.Delay(uc.clk.Now())
	return uc.queue.Enqueue(ctx, queue.Scheduling, raw, opts)
}

func (uc *notificationsImpl) enqueueWithDelay(ctx context.Context, p notification.Payload, delay time.Duration) (uuid.UUID, error) {
	if err := p.Validate(); err != nil {
		return uuid.Nil, err
	}
	raw, err := p.Marshal()
	if err != nil {
		return uuid.Nil, err
	}

	opts := uc.defaults
	opts.Delay = delay
	return uc.queue.Enqueue(ctx, queue.Notifications, raw, opts)
}
