package sender

import (
	"context"
	"log/slog"
	"strings"

	"mentorhub-notify/internal/pkg/config"
	"mentorhub-notify/internal/pkg/errs"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSMSSender delivers over the Twilio REST API. Like the email sender it
// degrades to log-only mode when credentials are absent or invalid.
type TwilioSMSSender struct {
	client  *twilio.RestClient
	cfg     config.SMSConfig
	enabled bool
	logger  *slog.Logger
}

func NewTwilioSMSSender(cfg config.SMSConfig, logger *slog.Logger) *TwilioSMSSender {
	s := &TwilioSMSSender{cfg: cfg, enabled: cfg.Enabled(), logger: logger}
	if !s.enabled {
		logger.Warn("sms sender disabled, missing or invalid Twilio credentials")
		return s
	}

	s.client = twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	logger.Info("sms sender enabled")
	return s
}

func (s *TwilioSMSSender) Send(ctx context.Context, msg SMS) error {
	if !strings.HasPrefix(msg.To, "+") {
		return errs.Mark(errs.Newf("sms destination %q is not in international form", msg.To), errs.ErrPermanent)
	}

	if !s.enabled {
		s.logger.Info("sms sender disabled, skipping send", "to", msg.To)
		return nil
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetFrom(s.cfg.FromNumber)
	params.SetBody(msg.Body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return errs.Mark(errs.Wrap(err, "failed to send sms"), errs.ErrTransient)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	s.logger.Info("sms sent", "to", msg.To, "sid", sid)
	return nil
}
