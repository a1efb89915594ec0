package components

import (
	"log/slog"

	"mentorhub-notify/internal/pkg/config"
	"mentorhub-notify/internal/presence"
	"mentorhub-notify/internal/sender"

	"go.uber.org/fx"
)

var SenderModule = fx.Module("sender",
	fx.Provide(
		presence.NewRegistry,
		NewEmailSender,
		NewSMSSender,
		fx.Annotate(
			sender.NewPresencePush,
			fx.As(new(sender.Push)),
		),
	),
)

func NewEmailSender(cfg config.Config, logger *slog.Logger) (sender.EmailSender, error) {
	return sender.NewSMTPEmailSender(cfg.Email, logger)
}

func NewSMSSender(cfg config.Config, logger *slog.Logger) sender.SMSSender {
	return sender.NewTwilioSMSSender(cfg.SMS, logger)
}
