package repository

import (
	"context"

	"tutoring-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]model.Notification, error)
}

type postgresNotificationRepository struct {
	db *sqlx.DB
}

func NewPostgresNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, recipient_role, event_type, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		notification.RecipientID, notification.RecipientRole,
		notification.EventType, notification.Payload,
	)
	return row.Scan(&notification.ID, &notification.CreatedAt)
}

func (r *postgresNotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]model.Notification, error) {
	var notifications []model.Notification
	query := `SELECT * FROM notifications WHERE recipient_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &notifications, query, recipientID)
	return notifications, err
}
