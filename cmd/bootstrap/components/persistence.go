package components

import (
	"mentorhub-notify/internal/infra/readstore"
	"mentorhub-notify/internal/infra/writerepo"
	"mentorhub-notify/internal/sweep"
	"mentorhub-notify/internal/worker"

	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		// Recipient contact projection
		fx.Annotate(
			readstore.NewRecipientReadStore,
			fx.As(new(worker.RecipientReads)),
		),
		// Session projections, shared by the scheduling worker and the sweeps
		fx.Annotate(
			readstore.NewSessionReadStore,
			fx.As(new(worker.SessionReads)),
			fx.As(new(sweep.SessionReads)),
		),
		// Delivery audit trail
		fx.Annotate(
			writerepo.NewNotificationRepository,
			fx.As(new(worker.RecordWriter)),
		),
	),
)
