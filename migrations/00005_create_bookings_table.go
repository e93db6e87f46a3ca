package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateBookingsTable, downCreateBookingsTable)
}

func upCreateBookingsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE bookings (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			time_slot_id UUID NOT NULL REFERENCES time_slots(id) ON DELETE CASCADE,
			student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
			class_id UUID REFERENCES classes(id) ON DELETE SET NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'confirmed', 'cancelled')),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		CREATE INDEX idx_bookings_student ON bookings (student_id);
		CREATE INDEX idx_bookings_time_slot ON bookings (time_slot_id);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateBookingsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS bookings;`)
	return err
}
