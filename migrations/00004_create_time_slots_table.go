package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateTimeSlotsTable, downCreateTimeSlotsTable)
}

func upCreateTimeSlotsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE time_slots (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			teacher_id UUID NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
			start_at TIMESTAMP WITH TIME ZONE NOT NULL,
			end_at TIMESTAMP WITH TIME ZONE NOT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'available'
				CHECK (status IN ('available', 'booked', 'expired')),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			CHECK (end_at > start_at),
			UNIQUE (teacher_id, start_at)
		);

		CREATE INDEX idx_time_slots_teacher_start ON time_slots (teacher_id, start_at);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateTimeSlotsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS time_slots;`)
	return err
}
