package writerepo

import (
	"context"
	"encoding/json"

	"mentorhub-notify/internal/domain/notification"
	"mentorhub-notify/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

const insertNotificationSQL = `
INSERT INTO notifications (id, type, title, body, status, per_channel_outcome, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const insertUserNotificationSQL = `
INSERT INTO user_notifications (user_id, notification_id, is_read)
VALUES ($1, $2, false)`

// CreateRecord persists the audit record and its read-state link in one
// transaction, so the read-state services never see a dangling notification.
func (r *NotificationRepository) CreateRecord(ctx context.Context, rec *notification.Record) error {
	outcomes, err := json.Marshal(rec.Outcomes)
	if err != nil {
		return infra.WrapRepoErr("failed to encode per-channel outcomes", err)
	}

	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertNotificationSQL,
			rec.ID, rec.Type, rec.Title, rec.Body, string(rec.Status), outcomes, rec.CreatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, insertUserNotificationSQL, rec.RecipientUserID, rec.ID)
		return err
	})
	if err != nil {
		return infra.WrapRepoErr("failed to create notification record", err)
	}
	return nil
}
