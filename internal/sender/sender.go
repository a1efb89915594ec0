// Package sender holds the outbound channel adapters. Each sender takes a
// normalized message and a destination; failures are channel-local and are
// marked transient so the job-level retry policy can distinguish them from
// structural errors.
package sender

import (
	"context"

	"github.com/google/uuid"
)

// Email is the fixed payload contract of the transactional email provider.
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// SMS destinations must already be in canonical international form
// (leading +, country code).
type SMS struct {
	To   string
	Body string
}

type EmailSender interface {
	Send(ctx context.Context, msg Email) error
}

type SMSSender interface {
	Send(ctx context.Context, msg SMS) error
}

// Push is fire-and-forget realtime delivery; no confirmation is returned.
type Push interface {
	PushToUser(userID uuid.UUID, event string, payload any)
	IsOnline(userID uuid.UUID) bool
}
