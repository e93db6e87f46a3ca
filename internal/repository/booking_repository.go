package repository

import (
	"context"
	"database/sql"
	"errors"

	"tutoring-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BookingRepository interface {
	Create(ctx context.Context, q sqlx.ExtContext, booking *model.Booking) (*model.Booking, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Booking, error)
	List(ctx context.Context) ([]model.Booking, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Booking, error)
	// UpdateStatusIf moves a booking from one status to another and reports
	// whether the row actually changed. A false return means the booking was
	// not in the expected status.
	UpdateStatusIf(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, from, to model.BookingStatus) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresBookingRepository struct {
	db *sqlx.DB
}

func NewPostgresBookingRepository(db *sqlx.DB) BookingRepository {
	return &postgresBookingRepository{db: db}
}

func (r *postgresBookingRepository) Create(ctx context.Context, q sqlx.ExtContext, booking *model.Booking) (*model.Booking, error) {
	query := `
		INSERT INTO bookings (time_slot_id, student_id, class_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	row := q.QueryRowxContext(ctx, query,
		booking.TimeSlotID, booking.StudentID, booking.ClassID, booking.Status,
	)
	if err := row.Scan(&booking.ID, &booking.CreatedAt); err != nil {
		return nil, err
	}

	return booking, nil
}

func (r *postgresBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var booking model.Booking
	query := `SELECT * FROM bookings WHERE id = $1`
	err := r.db.GetContext(ctx, &booking, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &booking, nil
}

func (r *postgresBookingRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Booking, error) {
	result := make(map[uuid.UUID]model.Booking, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM bookings WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var bookings []model.Booking
	if err := r.db.SelectContext(ctx, &bookings, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	for _, b := range bookings {
		result[b.ID] = b
	}
	return result, nil
}

func (r *postgresBookingRepository) List(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	query := `SELECT * FROM bookings ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &bookings, query)
	return bookings, err
}

func (r *postgresBookingRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Booking, error) {
	var bookings []model.Booking
	query := `SELECT * FROM bookings WHERE student_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &bookings, query, studentID)
	return bookings, err
}

func (r *postgresBookingRepository) UpdateStatusIf(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, from, to model.BookingStatus) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	result, err := q.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *postgresBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM bookings WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
