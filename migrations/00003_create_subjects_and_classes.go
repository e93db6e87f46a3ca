package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSubjectsAndClasses, downCreateSubjectsAndClasses)
}

func upCreateSubjectsAndClasses(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE subjects (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		CREATE TABLE classes (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			subject_id UUID NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
			teacher_id UUID NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
			type VARCHAR(10) NOT NULL CHECK (type IN ('online', 'offline')),
			level VARCHAR(50) NOT NULL DEFAULT '',
			max_students INT NOT NULL DEFAULT 30 CHECK (max_students > 0),
			description TEXT NOT NULL DEFAULT '',
			status VARCHAR(10) NOT NULL DEFAULT 'active'
				CHECK (status IN ('active', 'inactive', 'full', 'completed')),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		CREATE TABLE in_class (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			class_id UUID NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
			student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			UNIQUE (class_id, student_id)
		);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateSubjectsAndClasses(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DROP TABLE IF EXISTS in_class;
		DROP TABLE IF EXISTS classes;
		DROP TABLE IF EXISTS subjects;
	`)
	return err
}
