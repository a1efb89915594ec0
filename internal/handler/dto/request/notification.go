package request

import (
	"time"

	"github.com/google/uuid"
)

type EnqueueNotificationRequest struct {
	RecipientUserID uuid.UUID         `json:"recipientUserId" binding:"required"`
	Type            string            `json:"type" binding:"required"`
	Title           string            `json:"title" binding:"required"`
	Body            string            `json:"body"`
	RelatedEntityID *uuid.UUID        `json:"relatedEntityId"`
	Channels        []string          `json:"channels" binding:"required,min=1"`
	Metadata        map[string]string `json:"metadata"`
}

type EnqueueBulkRequest struct {
	Notifications []EnqueueNotificationRequest `json:"notifications" binding:"required,min=1,dive"`
}

type ScheduleNotificationRequest struct {
	EnqueueNotificationRequest
	DelayMs int64 `json:"delayMs" binding:"min=0"`
}

type ScheduledActionRequest struct {
	TargetEntityID uuid.UUID         `json:"targetEntityId" binding:"required"`
	ActionKind     string            `json:"actionKind" binding:"required"`
	FireAt         time.Time         `json:"fireAt" binding:"required"`
	Metadata       map[string]string `json:"metadata"`
}
