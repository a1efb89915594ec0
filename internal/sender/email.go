package sender

import (
	"context"
	"log/slog"

	"mentorhub-notify/internal/pkg/config"
	"mentorhub-notify/internal/pkg/errs"

	"github.com/wneessen/go-mail"
)

// SMTPEmailSender delivers over SMTP. Without credentials it runs in log-only
// mode and reports success, so local environments never block on a mail
// server.
type SMTPEmailSender struct {
	client  *mail.Client
	cfg     config.EmailConfig
	enabled bool
	logger  *slog.Logger
}

func NewSMTPEmailSender(cfg config.EmailConfig, logger *slog.Logger) (*SMTPEmailSender, error) {
	s := &SMTPEmailSender{cfg: cfg, enabled: cfg.Enabled(), logger: logger}
	if !s.enabled {
		logger.Warn("email sender disabled, missing SMTP credentials")
		return s, nil
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, errs.Wrap(err, "failed to build SMTP client")
	}
	s.client = client
	return s, nil
}

func (s *SMTPEmailSender) Send(ctx context.Context, msg Email) error {
	if !s.enabled {
		s.logger.Info("email sender disabled, skipping send", "to", msg.To, "subject", msg.Subject)
		return nil
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return errs.Wrap(err, "invalid sender address")
	}
	if err := m.To(msg.To); err != nil {
		return errs.Wrap(err, "invalid recipient address")
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		// Provider connectivity problems are retried at the job level.
		return errs.Mark(errs.Wrap(err, "failed to send email"), errs.ErrTransient)
	}

	s.logger.Info("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}
