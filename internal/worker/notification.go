package worker

import (
	"context"
	"log/slog"
	"time"

	"mentorhub-notify/internal/domain/notification"
	"mentorhub-notify/internal/infra"
	"mentorhub-notify/internal/pkg/clock"
	"mentorhub-notify/internal/pkg/errs"
	"mentorhub-notify/internal/pkg/phone"
	"mentorhub-notify/internal/queue"
	"mentorhub-notify/internal/sender"
	"mentorhub-notify/internal/usecase/queries"

	"github.com/google/uuid"
)

// RecipientReads resolves the contact projection of a notification recipient.
type RecipientReads interface {
	FindByID(ctx context.Context, id uuid.UUID) (*queries.RecipientView, error)
}

// RecordWriter persists the delivery audit trail.
type RecordWriter interface {
	CreateRecord(ctx context.Context, rec *notification.Record) error
}

// NotificationHandler fans one notification job out across its requested
// channels. Channel failures are recorded individually and never abort the
// other channels; the job-level retry decision is made afterwards over the
// collected outcomes.
type NotificationHandler struct {
	recipients  RecipientReads
	records     RecordWriter
	email       sender.EmailSender
	sms         sender.SMSSender
	push        sender.Push
	clk         clock.Clock
	sendTimeout time.Duration
	logger      *slog.Logger
}

func NewNotificationHandler(
	recipients RecipientReads,
	records RecordWriter,
	email sender.EmailSender,
	sms sender.SMSSender,
	push sender.Push,
	clk clock.Clock,
	sendTimeout time.Duration,
	logger *slog.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		recipients:  recipients,
		records:     records,
		email:       email,
		sms:         sms,
		push:        push,
		clk:         clk,
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

func (h *NotificationHandler) Handle(ctx context.Context, job *queue.Job) error {
	p, err := notification.UnmarshalPayload(job.Payload)
	if err != nil {
		return errs.Mark(err, errs.ErrPermanent)
	}

	recipient, err := h.recipients.FindByID(ctx, p.RecipientUserID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(errs.Mark(err, errs.ErrRecipientNotFound), errs.ErrPermanent)
		}
		return errs.Wrap(err, "failed to resolve recipient")
	}

	outcomes := notification.Outcomes{}
	for _, ch := range p.Channels {
		outcomes[ch] = h.attempt(ctx, ch, p, recipient)
	}

	record := notification.NewRecord(p, outcomes, h.clk.Now())
	if err := h.records.CreateRecord(ctx, record); err != nil {
		// Without the audit record the execution never happened as far as the
		// platform is concerned; retry the whole job.
		return errs.Wrap(err, "failed to persist notification record")
	}

	status := outcomes.Status()
	h.logger.Info("notification processed",
		"job_id", job.ID, "recipient", p.RecipientUserID, "type", p.Type, "status", status)

	if status == notification.StatusSent {
		return nil
	}
	if hasTransientFailure(outcomes) {
		return errs.Mark(errs.Newf("delivery %s, transient channel failures remain", status), errs.ErrTransient)
	}
	return errs.Mark(errs.Newf("delivery %s with no retriable channel", status), errs.ErrPermanent)
}

// attempt delivers on a single channel. Missing contact info and recipient
// absence from the realtime layer are recorded as attempted=false, not as
// errors.
func (h *NotificationHandler) attempt(ctx context.Context, ch notification.Channel, p notification.Payload, recipient *queries.RecipientView) notification.Outcome {
	switch ch {
	case notification.ChannelRealtime:
		if !h.push.IsOnline(p.RecipientUserID) {
			return notification.Outcome{Attempted: false}
		}
		h.push.PushToUser(p.RecipientUserID, "notification", p)
		return notification.Outcome{Attempted: true, Succeeded: true}

	case notification.ChannelEmail:
		if recipient.Email == nil || *recipient.Email == "" {
			return notification.Outcome{Attempted: false}
		}
		err := h.withSendTimeout(ctx, func(ctx context.Context) error {
			return h.email.Send(ctx, sender.Email{
				To:      *recipient.Email,
				Subject: p.Title,
				Text:    p.Body,
				HTML:    "<p>" + p.Body + "</p>",
			})
		})
		return outcomeFromErr(err)

	case notification.ChannelSMS:
		if recipient.Phone == nil || *recipient.Phone == "" {
			return notification.Outcome{Attempted: false}
		}
		to := phone.Normalize(*recipient.Phone)
		err := h.withSendTimeout(ctx, func(ctx context.Context) error {
			return h.sms.Send(ctx, sender.SMS{To: to, Body: p.Title + ": " + p.Body})
		})
		return outcomeFromErr(err)

	default:
		return notification.Outcome{Attempted: false}
	}
}

// withSendTimeout bounds one provider call; expiry counts as a transient
// channel failure.
func (h *NotificationHandler) withSendTimeout(ctx context.Context, send func(context.Context) error) error {
	sendCtx, cancel := context.WithTimeout(ctx, h.sendTimeout)
	defer cancel()

	err := send(sendCtx)
	if err != nil && sendCtx.Err() == context.DeadlineExceeded {
		return errs.Mark(errs.Wrap(err, "channel send timed out"), errs.ErrTransient)
	}
	return err
}

func outcomeFromErr(err error) notification.Outcome {
	if err != nil {
		return notification.Outcome{
			Attempted: true,
			Succeeded: false,
			Error:     err.Error(),
			Transient: errs.Is(err, errs.ErrTransient),
		}
	}
	return notification.Outcome{Attempted: true, Succeeded: true}
}

// hasTransientFailure reports whether any attempted-and-failed channel was a
// provider problem (as opposed to structural).
func hasTransientFailure(outcomes notification.Outcomes) bool {
	for _, o := range outcomes {
		if o.Attempted && !o.Succeeded && o.Transient {
			return true
		}
	}
	return false
}
