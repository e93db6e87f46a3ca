package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tutoring-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type SessionRepository interface {
	Create(ctx context.Context, q sqlx.ExtContext, session *model.Session) (*model.Session, error)
	// CreateOccurrence inserts a schedule-derived session keyed by
	// (class_id, start_at). It reports false when the occurrence already
	// exists, which makes repeated expansion runs idempotent.
	CreateOccurrence(ctx context.Context, q sqlx.ExtContext, session *model.Session) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	FindByRoomCode(ctx context.Context, roomCode string) (*model.Session, error)
	List(ctx context.Context) ([]model.Session, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Session, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Session, error)
	ListFinishedInPeriod(ctx context.Context, q sqlx.ExtContext, teacherID uuid.UUID, from, until time.Time) ([]model.Session, error)
	// UpdateStatusIf is the single write path for session transitions; the
	// WHERE clause on the current status keeps every move forward-only.
	UpdateStatusIf(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, from, to model.SessionStatus) (bool, error)
	CancelUpcomingByBooking(ctx context.Context, q sqlx.ExtContext, bookingID uuid.UUID) (int64, error)
	MarkOngoing(ctx context.Context, now time.Time) (int64, error)
	MarkFinished(ctx context.Context, now time.Time) (int64, error)
	SetRecording(ctx context.Context, id uuid.UUID, url, publicID string, uploadedAt time.Time) error
	Update(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresSessionRepository struct {
	db *sqlx.DB
}

func NewPostgresSessionRepository(db *sqlx.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) Create(ctx context.Context, q sqlx.ExtContext, session *model.Session) (*model.Session, error) {
	query := `
		INSERT INTO sessions (class_id, teacher_id, time_slot_id, booking_id, student_id, start_at, end_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	row := q.QueryRowxContext(ctx, query,
		session.ClassID, session.TeacherID, session.TimeSlotID, session.BookingID,
		session.StudentID, session.StartAt, session.EndAt, session.Status,
	)
	if err := row.Scan(&session.ID, &session.CreatedAt); err != nil {
		return nil, err
	}

	return session, nil
}

func (r *postgresSessionRepository) CreateOccurrence(ctx context.Context, q sqlx.ExtContext, session *model.Session) (bool, error) {
	query := `
		INSERT INTO sessions (class_id, teacher_id, start_at, end_at, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (class_id, start_at) WHERE class_id IS NOT NULL DO NOTHING
		RETURNING id, created_at
	`

	row := q.QueryRowxContext(ctx, query,
		session.ClassID, session.TeacherID, session.StartAt, session.EndAt, session.Status,
	)
	err := row.Scan(&session.ID, &session.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (r *postgresSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var session model.Session
	query := `SELECT * FROM sessions WHERE id = $1`
	err := r.db.GetContext(ctx, &session, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

func (r *postgresSessionRepository) FindByRoomCode(ctx context.Context, roomCode string) (*model.Session, error) {
	var session model.Session
	query := `
		SELECT s.* FROM sessions s
		JOIN rooms r ON r.session_id = s.id
		WHERE r.room_code = $1
	`
	err := r.db.GetContext(ctx, &session, query, roomCode)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

func (r *postgresSessionRepository) List(ctx context.Context) ([]model.Session, error) {
	var sessions []model.Session
	query := `SELECT * FROM sessions ORDER BY start_at DESC`
	err := r.db.SelectContext(ctx, &sessions, query)
	return sessions, err
}

func (r *postgresSessionRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Session, error) {
	var sessions []model.Session
	query := `SELECT * FROM sessions WHERE teacher_id = $1 ORDER BY start_at DESC`
	err := r.db.SelectContext(ctx, &sessions, query, teacherID)
	return sessions, err
}

// ListByStudent returns ad-hoc sessions booked by the student plus recurring
// sessions of every class the student is enrolled in.
func (r *postgresSessionRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Session, error) {
	var sessions []model.Session
	query := `
		SELECT DISTINCT s.* FROM sessions s
		LEFT JOIN in_class ic ON ic.class_id = s.class_id
		WHERE s.student_id = $1 OR ic.student_id = $1
		ORDER BY s.start_at DESC
	`
	err := r.db.SelectContext(ctx, &sessions, query, studentID)
	return sessions, err
}

func (r *postgresSessionRepository) ListFinishedInPeriod(ctx context.Context, q sqlx.ExtContext, teacherID uuid.UUID, from, until time.Time) ([]model.Session, error) {
	var sessions []model.Session
	query := `
		SELECT * FROM sessions
		WHERE teacher_id = $1
		  AND status = 'finished'
		  AND start_at >= $2
		  AND start_at < $3
		ORDER BY start_at
	`
	err := sqlx.SelectContext(ctx, q, &sessions, query, teacherID, from, until)
	return sessions, err
}

func (r *postgresSessionRepository) UpdateStatusIf(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, from, to model.SessionStatus) (bool, error) {
	query := `
		UPDATE sessions
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

// CancelUpcomingByBooking cancels the session a booking spawned, but only
// while it is still upcoming. Ongoing and finished sessions are decoupled
// from their booking.
func (r *postgresSessionRepository) CancelUpcomingByBooking(ctx context.Context, q sqlx.ExtContext, bookingID uuid.UUID) (int64, error) {
	query := `
		UPDATE sessions
		SET status = 'cancelled'
		WHERE booking_id = $1 AND status = 'upcoming'
	`

	result, err := q.ExecContext(ctx, query, bookingID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresSessionRepository) MarkOngoing(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE sessions
		SET status = 'ongoing'
		WHERE status = 'upcoming' AND start_at <= $1 AND end_at > $1
	`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresSessionRepository) MarkFinished(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE sessions
		SET status = 'finished'
		WHERE status IN ('upcoming', 'ongoing') AND end_at <= $1
	`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresSessionRepository) SetRecording(ctx context.Context, id uuid.UUID, url, publicID string, uploadedAt time.Time) error {
	query := `
		UPDATE sessions
		SET recording_url = $1, recording_public_id = $2, recording_uploaded_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, url, publicID, uploadedAt, id)
	return err
}

func (r *postgresSessionRepository) Update(ctx context.Context, session *model.Session) error {
	query := `
		UPDATE sessions
		SET class_id = $1, teacher_id = $2, time_slot_id = $3, booking_id = $4,
		    student_id = $5, start_at = $6, end_at = $7
		WHERE id = $8
	`
	_, err := r.db.ExecContext(ctx, query,
		session.ClassID, session.TeacherID, session.TimeSlotID, session.BookingID,
		session.StudentID, session.StartAt, session.EndAt, session.ID,
	)
	return err
}

func (r *postgresSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM sessions WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
