package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreatePaymentsTables, downCreatePaymentsTables)
}

func upCreatePaymentsTables(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE payments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			teacher_id UUID NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
			session_id UUID REFERENCES sessions(id) ON DELETE SET NULL,
			period CHAR(7) NOT NULL,
			amount_cents BIGINT NOT NULL CHECK (amount_cents >= 0),
			status VARCHAR(10) NOT NULL DEFAULT 'completed'
				CHECK (status IN ('pending', 'completed', 'cancelled')),
			paid_date TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			UNIQUE (teacher_id, period)
		);

		CREATE TABLE payment_sessions (
			payment_id UUID NOT NULL REFERENCES payments(id) ON DELETE CASCADE,
			session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			PRIMARY KEY (payment_id, session_id)
		);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreatePaymentsTables(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DROP TABLE IF EXISTS payment_sessions;
		DROP TABLE IF EXISTS payments;
	`)
	return err
}
