package components

import (
	"mentorhub-notify/internal/pkg/clock"
	"mentorhub-notify/internal/pkg/config"
	"mentorhub-notify/internal/queue"
	"mentorhub-notify/internal/sweep"
	"mentorhub-notify/internal/usecase"
	"mentorhub-notify/internal/worker"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		fx.Annotate(
			NewNotifications,
			fx.As(new(usecase.Notifications)),
			fx.As(new(worker.NotificationEnqueuer)),
			fx.As(new(sweep.NotificationEnqueuer)),
		),
	),
)

func NewNotifications(q queue.Queue, clk clock.Clock, cfg config.Config) usecase.Notifications {
	return usecase.NewNotifications(q, clk, cfg.Queue)
}
