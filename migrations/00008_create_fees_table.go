package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateFeesTable, downCreateFeesTable)
}

func upCreateFeesTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE fees (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			teacher_id UUID NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
			class_id UUID REFERENCES classes(id) ON DELETE CASCADE,
			time_slot_id UUID REFERENCES time_slots(id) ON DELETE CASCADE,
			amount_cents BIGINT NOT NULL CHECK (amount_cents >= 0),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			CHECK ((class_id IS NULL) <> (time_slot_id IS NULL))
		);

		-- conditional uniqueness: one fee per (teacher, class) or per (teacher, slot)
		CREATE UNIQUE INDEX uq_fees_teacher_class ON fees (teacher_id, class_id)
			WHERE time_slot_id IS NULL;
		CREATE UNIQUE INDEX uq_fees_teacher_slot ON fees (teacher_id, time_slot_id)
			WHERE class_id IS NULL;
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateFeesTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS fees;`)
	return err
}
