package notification

import (
	"encoding/json"

	"mentorhub-notify/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrNoRecipient = errs.New("notification payload has no recipient")
	ErrEmptyTitle  = errs.New("notification payload has an empty title")
)

// Channel is one delivery mechanism for a notification.
type Channel string

const (
	ChannelRealtime Channel = "realtime"
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelRealtime, ChannelEmail, ChannelSMS:
		return true
	}
	return false
}

// Well-known notification types produced by this subsystem. Arbitrary types
// from the request-serving layer are also accepted.
const (
	TypeSessionReminder = "session-reminder"
	TypeSessionStarting = "session-starting"
	TypeSessionStarted  = "session-started"
	TypeWeeklySummary   = "weekly-summary"
)

// Payload is the unit of work consumed by the notification worker. Channels
// is the set of delivery mechanisms requested; Metadata carries
// channel-specific template variables (session time, counterpart name, ...).
type Payload struct {
	RecipientUserID uuid.UUID         `json:"recipientUserId"`
	Type            string            `json:"type"`
	Title           string            `json:"title"`
	Body            string            `json:"body"`
	RelatedEntityID *uuid.UUID        `json:"relatedEntityId,omitempty"`
	Channels        []Channel         `json:"channels"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

func NewPayload(recipient uuid.UUID, typ, title, body string, channels []Channel) (Payload, error) {
	p := Payload{
		RecipientUserID: recipient,
		Type:            typ,
		Title:           title,
		Body:            body,
		Channels:        channels,
	}
	if err := p.Validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}

func (p Payload) Validate() error {
	if p.RecipientUserID == uuid.Nil {
		return ErrNoRecipient
	}
	if p.Title == "" {
		return ErrEmptyTitle
	}
	if len(p.Channels) == 0 {
		return errs.Mark(errs.New("channels must not be empty"), errs.ErrNoChannels)
	}
	for _, c := range p.Channels {
		if !c.Valid() {
			return errs.Newf("invalid channel %q", c)
		}
	}
	return nil
}

func (p Payload) HasChannel(c Channel) bool {
	for _, ch := range p.Channels {
		if ch == c {
			return true
		}
	}
	return false
}

func (p Payload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

func UnmarshalPayload(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, errs.Mark(errs.Wrap(err, "failed to decode notification payload"), errs.ErrMalformedPayload)
	}
	if err := p.Validate(); err != nil {
		return Payload{}, errs.Mark(err, errs.ErrMalformedPayload)
	}
	return p, nil
}
