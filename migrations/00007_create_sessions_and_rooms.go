package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSessionsAndRooms, downCreateSessionsAndRooms)
}

func upCreateSessionsAndRooms(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE sessions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			class_id UUID REFERENCES classes(id) ON DELETE CASCADE,
			teacher_id UUID NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
			time_slot_id UUID REFERENCES time_slots(id) ON DELETE SET NULL,
			booking_id UUID REFERENCES bookings(id) ON DELETE SET NULL,
			student_id UUID REFERENCES students(id) ON DELETE SET NULL,
			start_at TIMESTAMP WITH TIME ZONE NOT NULL,
			end_at TIMESTAMP WITH TIME ZONE NOT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'upcoming'
				CHECK (status IN ('upcoming', 'ongoing', 'finished', 'cancelled')),
			recording_url TEXT,
			recording_public_id TEXT,
			recording_uploaded_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			CHECK (end_at > start_at)
		);

		-- natural key for idempotent recurring expansion
		CREATE UNIQUE INDEX uq_sessions_class_start ON sessions (class_id, start_at)
			WHERE class_id IS NOT NULL;
		CREATE INDEX idx_sessions_teacher_start ON sessions (teacher_id, start_at);
		CREATE INDEX idx_sessions_status ON sessions (status);

		CREATE TABLE rooms (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			session_id UUID NOT NULL UNIQUE REFERENCES sessions(id) ON DELETE CASCADE,
			room_code VARCHAR(100) NOT NULL UNIQUE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateSessionsAndRooms(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DROP TABLE IF EXISTS rooms;
		DROP TABLE IF EXISTS sessions;
	`)
	return err
}
