package repository

import (
	"context"
	"database/sql"
	"errors"

	"tutoring-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) (*model.Schedule, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error)
	List(ctx context.Context) ([]model.Schedule, error)
	ListActive(ctx context.Context) ([]model.Schedule, error)
	Update(ctx context.Context, schedule *model.Schedule) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresScheduleRepository struct {
	db *sqlx.DB
}

func NewPostgresScheduleRepository(db *sqlx.DB) ScheduleRepository {
	return &postgresScheduleRepository{db: db}
}

func (r *postgresScheduleRepository) Create(ctx context.Context, schedule *model.Schedule) (*model.Schedule, error) {
	query := `
		INSERT INTO schedules (class_id, day_of_week, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		schedule.ClassID, schedule.DayOfWeek, schedule.StartTime,
		schedule.EndTime, schedule.Status,
	)
	if err := row.Scan(&schedule.ID, &schedule.CreatedAt); err != nil {
		return nil, err
	}

	return schedule, nil
}

func (r *postgresScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	var schedule model.Schedule
	query := `SELECT * FROM schedules WHERE id = $1`
	err := r.db.GetContext(ctx, &schedule, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &schedule, nil
}

func (r *postgresScheduleRepository) List(ctx context.Context) ([]model.Schedule, error) {
	var schedules []model.Schedule
	query := `SELECT * FROM schedules ORDER BY day_of_week, start_time`
	err := r.db.SelectContext(ctx, &schedules, query)
	return schedules, err
}

func (r *postgresScheduleRepository) ListActive(ctx context.Context) ([]model.Schedule, error) {
	var schedules []model.Schedule
	query := `SELECT * FROM schedules WHERE status = 'active' ORDER BY day_of_week, start_time`
	err := r.db.SelectContext(ctx, &schedules, query)
	return schedules, err
}

func (r *postgresScheduleRepository) Update(ctx context.Context, schedule *model.Schedule) error {
	query := `
		UPDATE schedules
		SET class_id = $1, day_of_week = $2, start_time = $3, end_time = $4, status = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query,
		schedule.ClassID, schedule.DayOfWeek, schedule.StartTime,
		schedule.EndTime, schedule.Status, schedule.ID,
	)
	return err
}

func (r *postgresScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM schedules WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
