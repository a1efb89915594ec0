package bootstrap

import (
	"context"
	"log/slog"

	"mentorhub-notify/internal/pkg/clock"
	"mentorhub-notify/internal/pkg/config"
	"mentorhub-notify/internal/queue"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var QueueModule = fx.Module("queue",
	fx.Provide(
		clock.NewRealClock,
		NewQueue,
		NewScheduler,
	),
	fx.Invoke(
		StartScheduler,
	),
)

// NewQueue selects the queue backend by config: the durable Postgres queue in
// normal operation, the in-process memory queue for local/dev runs.
func NewQueue(pool *pgxpool.Pool, clk clock.Clock, cfg config.Config) queue.Queue {
	if cfg.Queue.Driver == "memory" {
		return queue.NewMemoryQueue(clk)
	}
	return queue.NewPostgresQueue(pool, clk, cfg.Queue.ClaimLease)
}

func NewScheduler(clk clock.Clock, cfg config.Config, logger *slog.Logger) *queue.Scheduler {
	return queue.NewScheduler(clk, cfg.Queue.SchedulerTick, logger)
}

func StartScheduler(lc fx.Lifecycle, s *queue.Scheduler) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go s.Run(runCtx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}
