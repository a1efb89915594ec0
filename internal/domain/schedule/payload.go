package schedule

import (
	"encoding/json"
	"time"

	"mentorhub-notify/internal/pkg/errs"

	"github.com/google/uuid"
)

// Action is the kind of time-shifted work a scheduling job performs.
type Action string

const (
	ActionReminder          Action = "reminder"
	ActionAvailabilityCheck Action = "availability-check"
	ActionEntityStart       Action = "entity-start"
)

func (a Action) Valid() bool {
	switch a {
	case ActionReminder, ActionAvailabilityCheck, ActionEntityStart:
		return true
	}
	return false
}

// Payload is the unit of work consumed by the scheduling worker. FireAt is
// absolute; the enqueue path converts it to a queue delay clamped at zero.
type Payload struct {
	TargetID uuid.UUID         `json:"targetEntityId"`
	Action   Action            `json:"actionKind"`
	FireAt   time.Time         `json:"fireAt"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (p Payload) Validate() error {
	if p.TargetID == uuid.Nil {
		return errs.New("scheduling payload has no target entity")
	}
	if !p.Action.Valid() {
		return errs.Mark(errs.Newf("invalid action kind %q", p.Action), errs.ErrUnknownAction)
	}
	return nil
}

// Delay returns how long the job must wait before becoming claimable.
func (p Payload) Delay(now time.Time) time.Duration {
	d := p.FireAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

func (p Payload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

func UnmarshalPayload(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, errs.Mark(errs.Wrap(err, "failed to decode scheduling payload"), errs.ErrMalformedPayload)
	}
	if err := p.Validate(); err != nil {
		return Payload{}, errs.Mark(err, errs.ErrMalformedPayload)
	}
	return p, nil
}
