package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSchedulesTable, downCreateSchedulesTable)
}

func upCreateSchedulesTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE schedules (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			class_id UUID NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
			day_of_week SMALLINT NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
			start_time TIME NOT NULL,
			end_time TIME NOT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'active'
				CHECK (status IN ('active', 'inactive')),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			CHECK (end_time > start_time)
		);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateSchedulesTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS schedules;`)
	return err
}
