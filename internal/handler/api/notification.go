package api

import (
	"net/http"
	"time"

	"mentorhub-notify/internal/domain/notification"
	"mentorhub-notify/internal/domain/schedule"
	reqdto "mentorhub-notify/internal/handler/dto/request"
	resdto "mentorhub-notify/internal/handler/dto/response"
	"mentorhub-notify/internal/handler/httperr"
	"mentorhub-notify/internal/usecase"

	"github.com/gin-gonic/gin"
)

// NotificationHandler exposes the enqueue API to the request-serving layer.
// Every route returns as soon as the job is queued; delivery is asynchronous.
type NotificationHandler struct {
	notifications usecase.Notifications
}

func NewNotificationHandler(notifications usecase.Notifications) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) Enqueue(c *gin.Context) {
	var req reqdto.EnqueueNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "invalid request body", nil)
		return
	}

	payload, err := toPayload(req)
	if err != nil {
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "invalid notification payload", nil)
		return
	}

	jobID, err := h.notifications.Enqueue(c.Request.Context(), payload)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "failed to enqueue notification", nil)
		return
	}

	c.JSON(http.StatusAccepted, resdto.EnqueuedJobResponse{JobID: jobID})
}

func (h *NotificationHandler) EnqueueBulk(c *gin.Context) {
	var req reqdto.EnqueueBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "invalid request body", nil)
		return
	}

	payloads := make([]notification.Payload, 0, len(req.Notifications))
	for _, r := range req.Notifications {
		payload, err := toPayload(r)
		if err != nil {
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "invalid notification payload", nil)
			return
		}
		payloads = append(payloads, payload)
	}

	jobIDs, err := h.notifications.EnqueueBulk(c.Request.Context(), payloads)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "failed to enqueue notifications", nil)
		return
	}

	c.JSON(http.StatusAccepted, resdto.EnqueuedBulkResponse{JobIDs: jobIDs})
}

func (h *NotificationHandler) Schedule(c *gin.Context) {
	var req reqdto.ScheduleNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "invalid request body", nil)
		return
	}

	payload, err := toPayload(req.EnqueueNotificationRequest)
	if err != nil {
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "invalid notification payload", nil)
		return
	}

	jobID, err := h.notifications.Schedule(c.Request.Context(), payload, time.Duration(req.DelayMs)*time.Millisecond)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "failed to schedule notification", nil)
		return
	}

	c.JSON(http.StatusAccepted, resdto.EnqueuedJobResponse{JobID: jobID})
}

func (h *NotificationHandler) EnqueueScheduledAction(c *gin.Context) {
	var req reqdto.ScheduledActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "invalid request body", nil)
		return
	}

	payload := schedule.Payload{
		TargetID: req.TargetEntityID,
		Action:   schedule.Action(req.ActionKind),
		FireAt:   req.FireAt,
		Metadata: req.Metadata,
	}
	jobID, err := h.notifications.EnqueueScheduledAction(c.Request.Context(), payload)
	if err != nil {
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "failed to enqueue scheduled action", nil)
		return
	}

	c.JSON(http.StatusAccepted, resdto.EnqueuedJobResponse{JobID: jobID})
}

func toPayload(req reqdto.EnqueueNotificationRequest) (notification.Payload, error) {
	channels := make([]notification.Channel, 0, len(req.Channels))
	for _, ch := range req.Channels {
		channels = append(channels, notification.Channel(ch))
	}

	p := notification.Payload{
		RecipientUserID: req.RecipientUserID,
		Type:            req.Type,
		Title:           req.Title,
		Body:            req.Body,
		RelatedEntityID: req.RelatedEntityID,
		Channels:        channels,
		Metadata:        req.Metadata,
	}
	return p, p.Validate()
}
