package components

import (
	"context"
	"log/slog"

	"mentorhub-notify/internal/pkg/clock"
	"mentorhub-notify/internal/pkg/config"
	"mentorhub-notify/internal/queue"
	"mentorhub-notify/internal/sender"
	"mentorhub-notify/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewNotificationWorker,
		worker.NewSchedulingHandler,
	),
	fx.Invoke(
		StartWorkers,
	),
)

func NewNotificationWorker(
	recipients worker.RecipientReads,
	records worker.RecordWriter,
	email sender.EmailSender,
	sms sender.SMSSender,
	push sender.Push,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) *worker.NotificationHandler {
	return worker.NewNotificationHandler(recipients, records, email, sms, push, clk, cfg.Queue.ChannelSendTimeout, logger)
}

// StartWorkers runs one pool per queue for the lifetime of the process.
func StartWorkers(
	lc fx.Lifecycle,
	q queue.Queue,
	cfg config.Config,
	notifications *worker.NotificationHandler,
	scheduling *worker.SchedulingHandler,
	logger *slog.Logger,
) {
	notificationPool := worker.NewPool(q, queue.Notifications, notifications, cfg.Queue.NotificationPool, cfg.Queue.PollInterval, logger)
	schedulingPool := worker.NewPool(q, queue.Scheduling, scheduling, cfg.Queue.SchedulingPool, cfg.Queue.PollInterval, logger)

	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go notificationPool.Run(runCtx)
			go schedulingPool.Run(runCtx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}
