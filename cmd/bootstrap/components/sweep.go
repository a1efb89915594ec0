package components

import (
	"mentorhub-notify/internal/queue"
	"mentorhub-notify/internal/sweep"

	"go.uber.org/fx"
)

var SweepModule = fx.Module("sweep",
	fx.Provide(
		sweep.NewEngine,
	),
	fx.Invoke(
		RegisterSweeps,
	),
)

func RegisterSweeps(e *sweep.Engine, s *queue.Scheduler) error {
	return e.Register(s)
}
