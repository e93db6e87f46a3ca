package repository

import (
	"context"
	"database/sql"
	"errors"

	"tutoring-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) (*model.Student, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Student, error)
	FindByEmail(ctx context.Context, email string) (*model.Student, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Student, error)
	List(ctx context.Context) ([]model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresStudentRepository struct {
	db *sqlx.DB
}

func NewPostgresStudentRepository(db *sqlx.DB) StudentRepository {
	return &postgresStudentRepository{db: db}
}

func (r *postgresStudentRepository) Create(ctx context.Context, student *model.Student) (*model.Student, error) {
	query := `
		INSERT INTO students (name, birth, level, phone, email, password, img)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		student.Name, student.Birth, student.Level, student.Phone,
		student.Email, student.Password, student.Img,
	)
	if err := row.Scan(&student.ID, &student.CreatedAt); err != nil {
		return nil, err
	}

	return student, nil
}

func (r *postgresStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	var student model.Student
	query := `SELECT * FROM students WHERE id = $1`
	err := r.db.GetContext(ctx, &student, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &student, nil
}

func (r *postgresStudentRepository) FindByEmail(ctx context.Context, email string) (*model.Student, error) {
	var student model.Student
	query := `SELECT * FROM students WHERE email = $1`
	err := r.db.GetContext(ctx, &student, query, email)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &student, nil
}

func (r *postgresStudentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Student, error) {
	result := make(map[uuid.UUID]model.Student, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM students WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var students []model.Student
	if err := r.db.SelectContext(ctx, &students, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	for _, s := range students {
		result[s.ID] = s
	}
	return result, nil
}

func (r *postgresStudentRepository) List(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	query := `SELECT * FROM students ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &students, query)
	return students, err
}

func (r *postgresStudentRepository) Update(ctx context.Context, student *model.Student) error {
	query := `
		UPDATE students
		SET name = $1, birth = $2, level = $3, phone = $4, email = $5, img = $6
		WHERE id = $7
	`
	_, err := r.db.ExecContext(ctx, query,
		student.Name, student.Birth, student.Level, student.Phone,
		student.Email, student.Img, student.ID,
	)
	return err
}

func (r *postgresStudentRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	query := `UPDATE students SET password = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, hash, id)
	return err
}

func (r *postgresStudentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM students WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
