package repository

import (
	"context"
	"database/sql"
	"errors"

	"tutoring-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type FeeRepository interface {
	// Create relies on the partial unique indexes for the one-fee-per-scope
	// invariant; callers check IsUniqueViolation on the returned error.
	Create(ctx context.Context, fee *model.Fee) (*model.Fee, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Fee, error)
	FindByTeacherAndClass(ctx context.Context, q sqlx.ExtContext, teacherID, classID uuid.UUID) (*model.Fee, error)
	FindByTeacherAndSlot(ctx context.Context, q sqlx.ExtContext, teacherID, slotID uuid.UUID) (*model.Fee, error)
	List(ctx context.Context) ([]model.Fee, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Fee, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresFeeRepository struct {
	db *sqlx.DB
}

func NewPostgresFeeRepository(db *sqlx.DB) FeeRepository {
	return &postgresFeeRepository{db: db}
}

func (r *postgresFeeRepository) Create(ctx context.Context, fee *model.Fee) (*model.Fee, error) {
	query := `
		INSERT INTO fees (teacher_id, class_id, time_slot_id, amount_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		fee.TeacherID, fee.ClassID, fee.TimeSlotID, fee.AmountCents,
	)
	if err := row.Scan(&fee.ID, &fee.CreatedAt); err != nil {
		return nil, err
	}

	return fee, nil
}

func (r *postgresFeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Fee, error) {
	var fee model.Fee
	query := `SELECT * FROM fees WHERE id = $1`
	err := r.db.GetContext(ctx, &fee, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &fee, nil
}

func (r *postgresFeeRepository) FindByTeacherAndClass(ctx context.Context, q sqlx.ExtContext, teacherID, classID uuid.UUID) (*model.Fee, error) {
	var fee model.Fee
	query := `
		SELECT * FROM fees
		WHERE teacher_id = $1 AND class_id = $2 AND time_slot_id IS NULL
	`
	err := sqlx.GetContext(ctx, q, &fee, query, teacherID, classID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &fee, nil
}

func (r *postgresFeeRepository) FindByTeacherAndSlot(ctx context.Context, q sqlx.ExtContext, teacherID, slotID uuid.UUID) (*model.Fee, error) {
	var fee model.Fee
	query := `
		SELECT * FROM fees
		WHERE teacher_id = $1 AND time_slot_id = $2 AND class_id IS NULL
	`
	err := sqlx.GetContext(ctx, q, &fee, query, teacherID, slotID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &fee, nil
}

func (r *postgresFeeRepository) List(ctx context.Context) ([]model.Fee, error) {
	var fees []model.Fee
	query := `SELECT * FROM fees ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &fees, query)
	return fees, err
}

func (r *postgresFeeRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Fee, error) {
	var fees []model.Fee
	query := `SELECT * FROM fees WHERE teacher_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &fees, query, teacherID)
	return fees, err
}

func (r *postgresFeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM fees WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
