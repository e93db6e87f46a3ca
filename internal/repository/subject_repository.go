package repository

import (
	"context"
	"database/sql"
	"errors"

	"tutoring-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type SubjectRepository interface {
	Create(ctx context.Context, subject *model.Subject) (*model.Subject, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Subject, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Subject, error)
	List(ctx context.Context) ([]model.Subject, error)
	Update(ctx context.Context, subject *model.Subject) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresSubjectRepository struct {
	db *sqlx.DB
}

func NewPostgresSubjectRepository(db *sqlx.DB) SubjectRepository {
	return &postgresSubjectRepository{db: db}
}

func (r *postgresSubjectRepository) Create(ctx context.Context, subject *model.Subject) (*model.Subject, error) {
	query := `
		INSERT INTO subjects (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query, subject.Name, subject.Description)
	if err := row.Scan(&subject.ID, &subject.CreatedAt); err != nil {
		return nil, err
	}

	return subject, nil
}

func (r *postgresSubjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Subject, error) {
	var subject model.Subject
	query := `SELECT * FROM subjects WHERE id = $1`
	err := r.db.GetContext(ctx, &subject, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &subject, nil
}

func (r *postgresSubjectRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Subject, error) {
	result := make(map[uuid.UUID]model.Subject, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM subjects WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var subjects []model.Subject
	if err := r.db.SelectContext(ctx, &subjects, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	for _, s := range subjects {
		result[s.ID] = s
	}
	return result, nil
}

func (r *postgresSubjectRepository) List(ctx context.Context) ([]model.Subject, error) {
	var subjects []model.Subject
	query := `SELECT * FROM subjects ORDER BY name`
	err := r.db.SelectContext(ctx, &subjects, query)
	return subjects, err
}

func (r *postgresSubjectRepository) Update(ctx context.Context, subject *model.Subject) error {
	query := `UPDATE subjects SET name = $1, description = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, subject.Name, subject.Description, subject.ID)
	return err
}

func (r *postgresSubjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM subjects WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
