package repository

import (
	"context"
	"database/sql"
	"errors"

	"tutoring-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TeacherRepository interface {
	Create(ctx context.Context, teacher *model.Teacher) (*model.Teacher, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Teacher, error)
	FindByEmail(ctx context.Context, email string) (*model.Teacher, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Teacher, error)
	List(ctx context.Context) ([]model.Teacher, error)
	ListByLabel(ctx context.Context, label string) ([]model.Teacher, error)
	Update(ctx context.Context, teacher *model.Teacher) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresTeacherRepository struct {
	db *sqlx.DB
}

func NewPostgresTeacherRepository(db *sqlx.DB) TeacherRepository {
	return &postgresTeacherRepository{db: db}
}

func (r *postgresTeacherRepository) Create(ctx context.Context, teacher *model.Teacher) (*model.Teacher, error) {
	query := `
		INSERT INTO teachers (name, bio, birth, label, phone, email, password, img, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		teacher.Name, teacher.Bio, teacher.Birth, teacher.Label, teacher.Phone,
		teacher.Email, teacher.Password, teacher.Img, teacher.Rating,
	)
	if err := row.Scan(&teacher.ID, &teacher.CreatedAt); err != nil {
		return nil, err
	}

	return teacher, nil
}

func (r *postgresTeacherRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Teacher, error) {
	var teacher model.Teacher
	query := `SELECT * FROM teachers WHERE id = $1`
	err := r.db.GetContext(ctx, &teacher, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &teacher, nil
}

func (r *postgresTeacherRepository) FindByEmail(ctx context.Context, email string) (*model.Teacher, error) {
	var teacher model.Teacher
	query := `SELECT * FROM teachers WHERE email = $1`
	err := r.db.GetContext(ctx, &teacher, query, email)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &teacher, nil
}

func (r *postgresTeacherRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Teacher, error) {
	result := make(map[uuid.UUID]model.Teacher, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM teachers WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var teachers []model.Teacher
	if err := r.db.SelectContext(ctx, &teachers, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	for _, t := range teachers {
		result[t.ID] = t
	}
	return result, nil
}

func (r *postgresTeacherRepository) List(ctx context.Context) ([]model.Teacher, error) {
	var teachers []model.Teacher
	query := `SELECT * FROM teachers ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &teachers, query)
	return teachers, err
}

func (r *postgresTeacherRepository) ListByLabel(ctx context.Context, label string) ([]model.Teacher, error) {
	var teachers []model.Teacher
	query := `SELECT * FROM teachers WHERE label = $1 ORDER BY rating DESC`
	err := r.db.SelectContext(ctx, &teachers, query, label)
	return teachers, err
}

func (r *postgresTeacherRepository) Update(ctx context.Context, teacher *model.Teacher) error {
	query := `
		UPDATE teachers
		SET name = $1, bio = $2, birth = $3, label = $4, phone = $5,
		    email = $6, img = $7, rating = $8
		WHERE id = $9
	`
	_, err := r.db.ExecContext(ctx, query,
		teacher.Name, teacher.Bio, teacher.Birth, teacher.Label, teacher.Phone,
		teacher.Email, teacher.Img, teacher.Rating, teacher.ID,
	)
	return err
}

func (r *postgresTeacherRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	query := `UPDATE teachers SET password = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, hash, id)
	return err
}

func (r *postgresTeacherRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM teachers WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
