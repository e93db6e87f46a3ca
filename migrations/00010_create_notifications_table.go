package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateNotificationsTable, downCreateNotificationsTable)
}

func upCreateNotificationsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE notifications (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			recipient_id UUID NOT NULL,
			recipient_role VARCHAR(10) NOT NULL,
			event_type VARCHAR(50) NOT NULL,
			payload JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		CREATE INDEX idx_notifications_recipient ON notifications (recipient_id, created_at);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateNotificationsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS notifications;`)
	return err
}
