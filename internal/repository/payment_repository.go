package repository

import (
	"context"
	"database/sql"
	"errors"

	"tutoring-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PaymentRepository interface {
	// Create relies on UNIQUE(teacher_id, period); a unique violation means
	// the period is already paid out.
	Create(ctx context.Context, q sqlx.ExtContext, payment *model.Payment) (*model.Payment, error)
	AddSessions(ctx context.Context, q sqlx.ExtContext, paymentID uuid.UUID, sessionIDs []uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	FindByTeacherAndPeriod(ctx context.Context, teacherID uuid.UUID, period string) (*model.Payment, error)
	List(ctx context.Context) ([]model.Payment, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Payment, error)
	ListSessionIDs(ctx context.Context, paymentID uuid.UUID) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresPaymentRepository struct {
	db *sqlx.DB
}

func NewPostgresPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &postgresPaymentRepository{db: db}
}

func (r *postgresPaymentRepository) Create(ctx context.Context, q sqlx.ExtContext, payment *model.Payment) (*model.Payment, error) {
	query := `
		INSERT INTO payments (teacher_id, session_id, period, amount_cents, status, paid_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	row := q.QueryRowxContext(ctx, query,
		payment.TeacherID, payment.SessionID, payment.Period,
		payment.AmountCents, payment.Status, payment.PaidDate,
	)
	if err := row.Scan(&payment.ID, &payment.CreatedAt); err != nil {
		return nil, err
	}

	return payment, nil
}

func (r *postgresPaymentRepository) AddSessions(ctx context.Context, q sqlx.ExtContext, paymentID uuid.UUID, sessionIDs []uuid.UUID) error {
	query := `INSERT INTO payment_sessions (payment_id, session_id) VALUES ($1, $2)`
	for _, sessionID := range sessionIDs {
		if _, err := q.ExecContext(ctx, query, paymentID, sessionID); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	query := `SELECT * FROM payments WHERE id = $1`
	err := r.db.GetContext(ctx, &payment, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &payment, nil
}

func (r *postgresPaymentRepository) FindByTeacherAndPeriod(ctx context.Context, teacherID uuid.UUID, period string) (*model.Payment, error) {
	var payment model.Payment
	query := `SELECT * FROM payments WHERE teacher_id = $1 AND period = $2`
	err := r.db.GetContext(ctx, &payment, query, teacherID, period)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &payment, nil
}

func (r *postgresPaymentRepository) List(ctx context.Context) ([]model.Payment, error) {
	var payments []model.Payment
	query := `SELECT * FROM payments ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &payments, query)
	return payments, err
}

func (r *postgresPaymentRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	query := `SELECT * FROM payments WHERE teacher_id = $1 ORDER BY period DESC`
	err := r.db.SelectContext(ctx, &payments, query, teacherID)
	return payments, err
}

func (r *postgresPaymentRepository) ListSessionIDs(ctx context.Context, paymentID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `SELECT session_id FROM payment_sessions WHERE payment_id = $1`
	err := r.db.SelectContext(ctx, &ids, query, paymentID)
	return ids, err
}

func (r *postgresPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM payments WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
