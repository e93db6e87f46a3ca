package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateStudentsTable, downCreateStudentsTable)
}

func upCreateStudentsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE students (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL,
			birth DATE,
			level VARCHAR(50) NOT NULL DEFAULT '',
			phone VARCHAR(20) NOT NULL DEFAULT '',
			email VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255) NOT NULL,
			img VARCHAR(255),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateStudentsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS students;`)
	return err
}
