package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mentorhub-notify/internal/domain/notification"
	"mentorhub-notify/internal/domain/schedule"
	"mentorhub-notify/internal/infra"
	"mentorhub-notify/internal/pkg/errs"
	"mentorhub-notify/internal/queue"
	"mentorhub-notify/internal/usecase/queries"

	"github.com/google/uuid"
)

// SessionReads resolves the target entity of a scheduled action.
type SessionReads interface {
	FindByID(ctx context.Context, id uuid.UUID) (*queries.SessionView, error)
}

// NotificationEnqueuer is the slice of the enqueue API the scheduling worker
// needs to fan reminders back into the notification queue.
type NotificationEnqueuer interface {
	Enqueue(ctx context.Context, p notification.Payload) (uuid.UUID, error)
}

// SchedulingHandler consumes scheduled-action jobs whose execution time was
// computed at enqueue time. It dispatches on the action kind; entity lookups
// failing with not-found are permanent, downstream enqueue failures retry.
type SchedulingHandler struct {
	sessions      SessionReads
	notifications NotificationEnqueuer
	logger        *slog.Logger
}

func NewSchedulingHandler(sessions SessionReads, notifications NotificationEnqueuer, logger *slog.Logger) *SchedulingHandler {
	return &SchedulingHandler{
		sessions:      sessions,
		notifications: notifications,
		logger:        logger,
	}
}

func (h *SchedulingHandler) Handle(ctx context.Context, job *queue.Job) error {
	p, err := schedule.UnmarshalPayload(job.Payload)
	if err != nil {
		return errs.Mark(err, errs.ErrPermanent)
	}

	switch p.Action {
	case schedule.ActionReminder:
		return h.handleReminder(ctx, p)
	case schedule.ActionAvailabilityCheck:
		// Extension point for scheduling-conflict validation; deterministic
		// no-op until it exists.
		h.logger.Info("availability check", "target_id", p.TargetID)
		return nil
	case schedule.ActionEntityStart:
		return h.handleSessionStart(ctx, p)
	default:
		return errs.Mark(errs.Mark(errs.Newf("action %q", p.Action), errs.ErrUnknownAction), errs.ErrPermanent)
	}
}

func (h *SchedulingHandler) handleReminder(ctx context.Context, p schedule.Payload) error {
	sess, err := h.resolveSession(ctx, p.TargetID)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil // reminder no longer meaningful
	}

	for _, target := range reminderTargets(sess) {
		payload := notification.Payload{
			RecipientUserID: target.userID,
			Type:            notification.TypeSessionReminder,
			Title:           "Recordatorio de mentoría",
			Body:            fmt.Sprintf("Tu mentoría con %s es mañana", target.counterpart),
			RelatedEntityID: &sess.ID,
			Channels:        []notification.Channel{notification.ChannelEmail, notification.ChannelSMS, notification.ChannelRealtime},
			Metadata:        sessionMetadata(sess, target.counterpart),
		}
		if _, err := h.notifications.Enqueue(ctx, payload); err != nil {
			return errs.Wrap(err, "failed to enqueue reminder notification")
		}
	}

	h.logger.Info("session reminders enqueued", "session_id", sess.ID)
	return nil
}

func (h *SchedulingHandler) handleSessionStart(ctx context.Context, p schedule.Payload) error {
	sess, err := h.resolveSession(ctx, p.TargetID)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}

	for _, target := range reminderTargets(sess) {
		payload := notification.Payload{
			RecipientUserID: target.userID,
			Type:            notification.TypeSessionStarted,
			Title:           "Tu mentoría está comenzando",
			Body:            fmt.Sprintf("Tu mentoría con %s comienza ahora", target.counterpart),
			RelatedEntityID: &sess.ID,
			Channels:        []notification.Channel{notification.ChannelRealtime},
			Metadata:        sessionMetadata(sess, target.counterpart),
		}
		if _, err := h.notifications.Enqueue(ctx, payload); err != nil {
			return errs.Wrap(err, "failed to enqueue session-start notification")
		}
	}

	h.logger.Info("session start handled", "session_id", sess.ID)
	return nil
}

// resolveSession returns (nil, nil) when the session exists but is no longer
// in a state where acting on it is meaningful.
func (h *SchedulingHandler) resolveSession(ctx context.Context, id uuid.UUID) (*queries.SessionView, error) {
	sess, err := h.sessions.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(errs.Mark(err, errs.ErrSessionNotFound), errs.ErrPermanent)
		}
		return nil, errs.Wrap(err, "failed to resolve session")
	}
	if sess.Status != queries.SessionScheduled {
		h.logger.Info("session no longer scheduled, skipping", "session_id", id, "status", sess.Status)
		return nil, nil
	}
	return sess, nil
}

type reminderTarget struct {
	userID      uuid.UUID
	counterpart string
}

func reminderTargets(sess *queries.SessionView) []reminderTarget {
	return []reminderTarget{
		{userID: sess.MenteeID, counterpart: sess.MentorName},
		{userID: sess.MentorID, counterpart: sess.MenteeName},
	}
}

func sessionMetadata(sess *queries.SessionView, counterpart string) map[string]string {
	md := map[string]string{
		"sessionId":       sess.ID.String(),
		"counterpartName": counterpart,
		"scheduledAt":     sess.ScheduledAt.Format(time.RFC3339),
		"duration":        fmt.Sprintf("%d", sess.DurationMin),
	}
	if sess.MeetingLink != nil {
		md["meetingLink"] = *sess.MeetingLink
	}
	return md
}
