package sender

import (
	"mentorhub-notify/internal/presence"

	"github.com/google/uuid"
)

// PresencePush adapts the presence registry to the Push port consumed by the
// notification worker.
type PresencePush struct {
	registry *presence.Registry
}

func NewPresencePush(registry *presence.Registry) *PresencePush {
	return &PresencePush{registry: registry}
}

func (p *PresencePush) PushToUser(userID uuid.UUID, event string, payload any) {
	p.registry.SendToUser(userID, event, payload)
}

func (p *PresencePush) IsOnline(userID uuid.UUID) bool {
	return p.registry.IsOnline(userID)
}
