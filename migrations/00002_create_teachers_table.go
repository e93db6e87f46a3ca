package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateTeachersTable, downCreateTeachersTable)
}

func upCreateTeachersTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE teachers (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL,
			bio TEXT,
			birth DATE,
			label VARCHAR(10) NOT NULL CHECK (label IN ('tutor', 'teacher')),
			phone VARCHAR(20) NOT NULL DEFAULT '',
			email VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255) NOT NULL,
			img VARCHAR(255) NOT NULL DEFAULT '',
			rating NUMERIC(3,2) NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateTeachersTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS teachers;`)
	return err
}
