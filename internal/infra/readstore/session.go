package readstore

import (
	"context"
	"errors"
	"time"

	"mentorhub-notify/internal/infra"
	"mentorhub-notify/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionReadStore struct {
	pool *pgxpool.Pool
}

func NewSessionReadStore(pool *pgxpool.Pool) *SessionReadStore {
	return &SessionReadStore{pool: pool}
}

const sessionColumns = `
s.id, s.mentor_id, s.mentee_id,
trim(mu.first_name || ' ' || mu.last_name),
trim(eu.first_name || ' ' || eu.last_name),
s.scheduled_at, s.duration_minutes, s.status, s.meeting_link`

const findSessionSQL = `
SELECT ` + sessionColumns + `
FROM sessions s
JOIN users mu ON mu.id = s.mentor_id
JOIN users eu ON eu.id = s.mentee_id
WHERE s.id = $1`

func (s *SessionReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.SessionView, error) {
	row := s.pool.QueryRow(ctx, findSessionSQL, id)
	view, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("session not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find session", err)
	}
	return view, nil
}

const sessionsStartingBetweenSQL = `
SELECT ` + sessionColumns + `
FROM sessions s
JOIN users mu ON mu.id = s.mentor_id
JOIN users eu ON eu.id = s.mentee_id
WHERE s.status = 'scheduled'
  AND s.scheduled_at >= $1
  AND s.scheduled_at < $2
ORDER BY s.scheduled_at`

// StartingBetween returns scheduled sessions with scheduled_at in [from, to).
func (s *SessionReadStore) StartingBetween(ctx context.Context, from, to time.Time) ([]*queries.SessionView, error) {
	rows, err := s.pool.Query(ctx, sessionsStartingBetweenSQL, from, to)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query sessions in window", err)
	}
	defer rows.Close()

	var result []*queries.SessionView
	for rows.Next() {
		view, err := scanSession(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan session row", err)
		}
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate session rows", err)
	}
	return result, nil
}

const weeklyAgendaSQL = `
SELECT s.mentor_id, trim(eu.first_name || ' ' || eu.last_name), s.scheduled_at
FROM sessions s
JOIN users eu ON eu.id = s.mentee_id
JOIN users mu ON mu.id = s.mentor_id
WHERE s.status = 'scheduled'
  AND mu.role IN ('mentor', 'admin')
  AND s.scheduled_at >= $1
  AND s.scheduled_at < $2
ORDER BY s.mentor_id, s.scheduled_at`

// WeeklyAgendas groups the week's scheduled sessions per mentor-role user.
// Mentors with no sessions in the window are absent from the result.
func (s *SessionReadStore) WeeklyAgendas(ctx context.Context, from, to time.Time) ([]*queries.WeeklyAgendaView, error) {
	rows, err := s.pool.Query(ctx, weeklyAgendaSQL, from, to)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query weekly agendas", err)
	}
	defer rows.Close()

	var (
		result  []*queries.WeeklyAgendaView
		current *queries.WeeklyAgendaView
	)
	for rows.Next() {
		var (
			mentorID uuid.UUID
			entry    queries.AgendaEntry
		)
		if err := rows.Scan(&mentorID, &entry.MenteeName, &entry.ScheduledAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan agenda row", err)
		}
		if current == nil || current.MentorID != mentorID {
			current = &queries.WeeklyAgendaView{MentorID: mentorID}
			result = append(result, current)
		}
		current.Sessions = append(current.Sessions, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate agenda rows", err)
	}
	return result, nil
}

type sessionScanner interface {
	Scan(dest ...any) error
}

func scanSession(row sessionScanner) (*queries.SessionView, error) {
	var view queries.SessionView
	err := row.Scan(
		&view.ID, &view.MentorID, &view.MenteeID,
		&view.MentorName, &view.MenteeName,
		&view.ScheduledAt, &view.DurationMin, &view.Status, &view.MeetingLink,
	)
	if err != nil {
		return nil, err
	}
	return &view, nil
}
