package components

import (
	"mentorhub-notify/internal/gateway"
	"mentorhub-notify/internal/handler"
	"mentorhub-notify/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewNotificationHandler,
		gateway.NewGateway,
	),
	fx.Invoke(handler.NewRouter),
)
