package notification

import (
	"time"

	"github.com/google/uuid"
)

// Record is the persisted audit trail of one delivery execution, written
// whether or not the attempt succeeded. A UserNotificationLink row is created
// alongside it so the read-state services can track per-user read status.
type Record struct {
	ID              uuid.UUID
	RecipientUserID uuid.UUID
	Type            string
	Title           string
	Body            string
	Status          Status
	Outcomes        Outcomes
	CreatedAt       time.Time
}

func NewRecord(p Payload, outcomes Outcomes, now time.Time) *Record {
	return &Record{
		ID:              uuid.New(),
		RecipientUserID: p.RecipientUserID,
		Type:            p.Type,
		Title:           p.Title,
		Body:            p.Body,
		Status:          outcomes.Status(),
		Outcomes:        outcomes,
		CreatedAt:       now,
	}
}
