package queries

import (
	"time"

	"github.com/google/uuid"
)

// Session states relevant to reminder logic.
const (
	SessionScheduled  = "scheduled"
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionCancelled  = "cancelled"
)

// RecipientView is the minimal contact projection the notification worker
// resolves before fanning out. Absent email/phone means the channel is not
// available for this recipient, not an error.
type RecipientView struct {
	ID          uuid.UUID
	Email       *string
	Phone       *string
	DisplayName string
}

// SessionView is the projection used by the scheduling worker and the
// reminder sweeps.
type SessionView struct {
	ID          uuid.UUID
	MentorID    uuid.UUID
	MenteeID    uuid.UUID
	MentorName  string
	MenteeName  string
	ScheduledAt time.Time
	DurationMin int32
	Status      string
	MeetingLink *string
}

// AgendaEntry is one session line of a mentor's weekly digest.
type AgendaEntry struct {
	MenteeName  string
	ScheduledAt time.Time
}

// WeeklyAgendaView aggregates a mentor's coming week.
type WeeklyAgendaView struct {
	MentorID uuid.UUID
	Sessions []AgendaEntry
}
