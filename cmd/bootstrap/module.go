package bootstrap

import (
	"mentorhub-notify/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	QueueModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.SenderModule,
	components.WorkerModule,
	components.SweepModule,
	components.HandlerModule,
)
