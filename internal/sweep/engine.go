// Package sweep is the producer side of the reminder pipeline: periodic scans
// over upcoming sessions that enqueue notification jobs. Each sweep is safe to
// run more than once for the same window; a duplicate reminder is a nuisance,
// not a correctness bug, so no distributed lock is taken.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mentorhub-notify/internal/domain/notification"
	"mentorhub-notify/internal/pkg/clock"
	"mentorhub-notify/internal/queue"
	"mentorhub-notify/internal/usecase/queries"

	"github.com/google/uuid"
)

// SessionReads is the sweep-facing slice of the session read store.
type SessionReads interface {
	StartingBetween(ctx context.Context, from, to time.Time) ([]*queries.SessionView, error)
	WeeklyAgendas(ctx context.Context, from, to time.Time) ([]*queries.WeeklyAgendaView, error)
}

// NotificationEnqueuer feeds the notification queue.
type NotificationEnqueuer interface {
	Enqueue(ctx context.Context, p notification.Payload) (uuid.UUID, error)
}

type Engine struct {
	sessions      SessionReads
	notifications NotificationEnqueuer
	clk           clock.Clock
	logger        *slog.Logger
}

func NewEngine(sessions SessionReads, notifications NotificationEnqueuer, clk clock.Clock, logger *slog.Logger) *Engine {
	return &Engine{
		sessions:      sessions,
		notifications: notifications,
		clk:           clk,
		logger:        logger,
	}
}

// Register binds the three sweeps to their named recurring triggers.
func (e *Engine) Register(s *queue.Scheduler) error {
	if _, err := s.AddNamed(queue.TriggerHourly, e.HourlyReminders); err != nil {
		return err
	}
	if _, err := s.AddNamed(queue.TriggerEvery10Minutes, e.StartingSoon); err != nil {
		return err
	}
	if _, err := s.AddNamed(queue.TriggerWeeklyMonday, e.WeeklyDigest); err != nil {
		return err
	}
	return nil
}

// HourlyReminders enqueues day-before reminders for sessions starting in the
// 1-hour bucket 24 hours out, one notification per participant over every
// channel.
func (e *Engine) HourlyReminders(ctx context.Context) {
	now := e.clk.Now()
	from := now.Add(24 * time.Hour)
	to := from.Add(time.Hour)

	sessions, err := e.sessions.StartingBetween(ctx, from, to)
	if err != nil {
		e.logger.Error("hourly sweep query failed", "error", err)
		return
	}
	e.logger.Info("hourly sweep", "sessions", len(sessions))

	for _, sess := range sessions {
		e.enqueueForParticipants(ctx, sess,
			notification.TypeSessionReminder,
			"Recordatorio de mentoría",
			"Tu mentoría con %s es mañana",
			[]notification.Channel{notification.ChannelEmail, notification.ChannelSMS, notification.ChannelRealtime},
		)
	}
}

// StartingSoon enqueues a lighter realtime-only heads-up for sessions
// starting within the next 15 minutes.
func (e *Engine) StartingSoon(ctx context.Context) {
	now := e.clk.Now()
	to := now.Add(15 * time.Minute)

	sessions, err := e.sessions.StartingBetween(ctx, now, to)
	if err != nil {
		e.logger.Error("starting-soon sweep query failed", "error", err)
		return
	}
	e.logger.Info("starting-soon sweep", "sessions", len(sessions))

	for _, sess := range sessions {
		e.enqueueForParticipants(ctx, sess,
			notification.TypeSessionStarting,
			"¡Tu mentoría comienza pronto!",
			"Tu mentoría con %s comienza en 15 minutos",
			[]notification.Channel{notification.ChannelRealtime},
		)
	}
}

// WeeklyDigest aggregates each mentor's coming week into one email digest.
func (e *Engine) WeeklyDigest(ctx context.Context) {
	now := e.clk.Now()
	to := now.Add(7 * 24 * time.Hour)

	agendas, err := e.sessions.WeeklyAgendas(ctx, now, to)
	if err != nil {
		e.logger.Error("weekly sweep query failed", "error", err)
		return
	}
	e.logger.Info("weekly sweep", "mentors", len(agendas))

	for _, agenda := range agendas {
		if len(agenda.Sessions) == 0 {
			continue
		}

		lines := make([]string, 0, len(agenda.Sessions))
		for _, s := range agenda.Sessions {
			lines = append(lines, fmt.Sprintf("- %s - %s", s.MenteeName, s.ScheduledAt.Format("02/01/2006 15:04")))
		}

		payload := notification.Payload{
			RecipientUserID: agenda.MentorID,
			Type:            notification.TypeWeeklySummary,
			Title:           "Resumen semanal de mentorías",
			Body:            fmt.Sprintf("Tienes %d mentorías esta semana:\n%s", len(agenda.Sessions), strings.Join(lines, "\n")),
			Channels:        []notification.Channel{notification.ChannelEmail},
		}
		if _, err := e.notifications.Enqueue(ctx, payload); err != nil {
			e.logger.Error("failed to enqueue weekly digest", "mentor_id", agenda.MentorID, "error", err)
		}
	}
}

// enqueueForParticipants enqueues one payload per session participant. A
// failure on one session is logged and never aborts the sweep for the others.
func (e *Engine) enqueueForParticipants(ctx context.Context, sess *queries.SessionView, typ, title, bodyFmt string, channels []notification.Channel) {
	targets := []struct {
		userID      uuid.UUID
		counterpart string
	}{
		{sess.MenteeID, sess.MentorName},
		{sess.MentorID, sess.MenteeName},
	}

	for _, t := range targets {
		md := map[string]string{
			"sessionId":       sess.ID.String(),
			"counterpartName": t.counterpart,
			"scheduledAt":     sess.ScheduledAt.Format(time.RFC3339),
		}
		if sess.MeetingLink != nil {
			md["meetingLink"] = *sess.MeetingLink
		}

		payload := notification.Payload{
			RecipientUserID: t.userID,
			Type:            typ,
			Title:           title,
			Body:            fmt.Sprintf(bodyFmt, t.counterpart),
			RelatedEntityID: &sess.ID,
			Channels:        channels,
			Metadata:        md,
		}
		if _, err := e.notifications.Enqueue(ctx, payload); err != nil {
			e.logger.Error("failed to enqueue sweep notification",
				"session_id", sess.ID, "recipient", t.userID, "type", typ, "error", err)
		}
	}
}
