package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tutoring-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SlotRepository is the slot ledger. Reserve and Release are the only code
// paths that flip a slot between available and booked; both are conditional
// single-statement updates so the status column itself is the lock.
type SlotRepository interface {
	Create(ctx context.Context, q sqlx.ExtContext, slot *model.TimeSlot) (*model.TimeSlot, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.TimeSlot, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.TimeSlot, error)
	List(ctx context.Context, teacherID *uuid.UUID, status *model.SlotStatus) ([]model.TimeSlot, error)
	ListForTeacherLocked(ctx context.Context, q sqlx.ExtContext, teacherID uuid.UUID) ([]model.TimeSlot, error)
	Reserve(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (bool, error)
	Release(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) error
	ExpirePast(ctx context.Context, now time.Time) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresSlotRepository struct {
	db *sqlx.DB
}

func NewPostgresSlotRepository(db *sqlx.DB) SlotRepository {
	return &postgresSlotRepository{db: db}
}

func (r *postgresSlotRepository) Create(ctx context.Context, q sqlx.ExtContext, slot *model.TimeSlot) (*model.TimeSlot, error) {
	query := `
		INSERT INTO time_slots (teacher_id, start_at, end_at, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	row := q.QueryRowxContext(ctx, query,
		slot.TeacherID, slot.StartAt, slot.EndAt, slot.Status,
	)
	if err := row.Scan(&slot.ID, &slot.CreatedAt); err != nil {
		return nil, err
	}

	return slot, nil
}

func (r *postgresSlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	query := `SELECT * FROM time_slots WHERE id = $1`
	err := r.db.GetContext(ctx, &slot, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &slot, nil
}

func (r *postgresSlotRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.TimeSlot, error) {
	result := make(map[uuid.UUID]model.TimeSlot, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM time_slots WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var slots []model.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	for _, s := range slots {
		result[s.ID] = s
	}
	return result, nil
}

func (r *postgresSlotRepository) List(ctx context.Context, teacherID *uuid.UUID, status *model.SlotStatus) ([]model.TimeSlot, error) {
	query := `SELECT * FROM time_slots WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if teacherID != nil {
		query += fmt.Sprintf(" AND teacher_id = $%d", argID)
		args = append(args, *teacherID)
		argID++
	}
	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *status)
	}
	query += ` ORDER BY start_at`

	var slots []model.TimeSlot
	err := r.db.SelectContext(ctx, &slots, query, args...)
	return slots, err
}

// ListForTeacherLocked loads all slots of a teacher with their rows locked,
// so a concurrent create cannot slip an overlapping slot in between the
// overlap check and the insert.
func (r *postgresSlotRepository) ListForTeacherLocked(ctx context.Context, q sqlx.ExtContext, teacherID uuid.UUID) ([]model.TimeSlot, error) {
	query := `SELECT * FROM time_slots WHERE teacher_id = $1 FOR UPDATE`

	var slots []model.TimeSlot
	err := sqlx.SelectContext(ctx, q, &slots, query, teacherID)
	return slots, err
}

// Reserve flips available -> booked. It returns false without error when the
// slot was not available; of N concurrent callers exactly one sees true.
func (r *postgresSlotRepository) Reserve(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (bool, error) {
	query := `
		UPDATE time_slots
		SET status = 'booked'
		WHERE id = $1 AND status = 'available'
	`

	result, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// Release flips booked -> available. Releasing a slot that is not booked is
// a no-op, which makes booking cancellation idempotent.
func (r *postgresSlotRepository) Release(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) error {
	query := `
		UPDATE time_slots
		SET status = 'available'
		WHERE id = $1 AND status = 'booked'
	`

	_, err := q.ExecContext(ctx, query, id)
	return err
}

// ExpirePast marks available slots whose window has passed. Booked slots are
// left alone; their fate belongs to the owning booking.
func (r *postgresSlotRepository) ExpirePast(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE time_slots
		SET status = 'expired'
		WHERE status = 'available' AND end_at <= $1
	`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresSlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM time_slots WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
