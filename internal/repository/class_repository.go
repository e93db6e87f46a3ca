package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tutoring-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ClassFilter narrows the class collection endpoint. Nil fields are ignored.
type ClassFilter struct {
	ClassID   *uuid.UUID
	TeacherID *uuid.UUID
	StudentID *uuid.UUID
	Status    *model.ClassStatus
}

type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) (*model.Class, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Class, error)
	// FindByIDLocked loads the class row FOR UPDATE; the enrollment capacity
	// check runs under this lock.
	FindByIDLocked(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (*model.Class, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Class, error)
	List(ctx context.Context, filter ClassFilter) ([]model.Class, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Class, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Class, error)
	Update(ctx context.Context, class *model.Class) error
	UpdateStatus(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, status model.ClassStatus) error
	Delete(ctx context.Context, id uuid.UUID) error

	CountMembers(ctx context.Context, q sqlx.ExtContext, classID uuid.UUID) (int, error)
	AddMember(ctx context.Context, q sqlx.ExtContext, classID, studentID uuid.UUID) (*model.InClass, error)
	RemoveMember(ctx context.Context, q sqlx.ExtContext, classID, studentID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, classID uuid.UUID) ([]model.InClass, error)
}

type postgresClassRepository struct {
	db *sqlx.DB
}

func NewPostgresClassRepository(db *sqlx.DB) ClassRepository {
	return &postgresClassRepository{db: db}
}

func (r *postgresClassRepository) Create(ctx context.Context, class *model.Class) (*model.Class, error) {
	query := `
		INSERT INTO classes (subject_id, teacher_id, type, level, max_students, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		class.SubjectID, class.TeacherID, class.Type, class.Level,
		class.MaxStudents, class.Description, class.Status,
	)
	if err := row.Scan(&class.ID, &class.CreatedAt); err != nil {
		return nil, err
	}

	return class, nil
}

func (r *postgresClassRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	var class model.Class
	query := `SELECT * FROM classes WHERE id = $1`
	err := r.db.GetContext(ctx, &class, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &class, nil
}

func (r *postgresClassRepository) FindByIDLocked(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (*model.Class, error) {
	var class model.Class
	query := `SELECT * FROM classes WHERE id = $1 FOR UPDATE`
	err := sqlx.GetContext(ctx, q, &class, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &class, nil
}

func (r *postgresClassRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Class, error) {
	result := make(map[uuid.UUID]model.Class, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM classes WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var classes []model.Class
	if err := r.db.SelectContext(ctx, &classes, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	for _, c := range classes {
		result[c.ID] = c
	}
	return result, nil
}

func (r *postgresClassRepository) List(ctx context.Context, filter ClassFilter) ([]model.Class, error) {
	query := `SELECT c.* FROM classes c`
	args := []interface{}{}
	argID := 1

	if filter.StudentID != nil {
		query += ` JOIN in_class ic ON ic.class_id = c.id AND ic.student_id = $1`
		args = append(args, *filter.StudentID)
		argID++
	}
	query += ` WHERE 1=1`
	if filter.ClassID != nil {
		query += fmt.Sprintf(" AND c.id = $%d", argID)
		args = append(args, *filter.ClassID)
		argID++
	}
	if filter.TeacherID != nil {
		query += fmt.Sprintf(" AND c.teacher_id = $%d", argID)
		args = append(args, *filter.TeacherID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND c.status = $%d", argID)
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY c.created_at DESC`

	var classes []model.Class
	err := r.db.SelectContext(ctx, &classes, query, args...)
	return classes, err
}

func (r *postgresClassRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Class, error) {
	return r.List(ctx, ClassFilter{StudentID: &studentID})
}

func (r *postgresClassRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Class, error) {
	return r.List(ctx, ClassFilter{TeacherID: &teacherID})
}

func (r *postgresClassRepository) Update(ctx context.Context, class *model.Class) error {
	query := `
		UPDATE classes
		SET subject_id = $1, teacher_id = $2, type = $3, level = $4,
		    max_students = $5, description = $6, status = $7
		WHERE id = $8
	`
	_, err := r.db.ExecContext(ctx, query,
		class.SubjectID, class.TeacherID, class.Type, class.Level,
		class.MaxStudents, class.Description, class.Status, class.ID,
	)
	return err
}

func (r *postgresClassRepository) UpdateStatus(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, status model.ClassStatus) error {
	query := `UPDATE classes SET status = $1 WHERE id = $2`
	_, err := q.ExecContext(ctx, query, status, id)
	return err
}

func (r *postgresClassRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM classes WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *postgresClassRepository) CountMembers(ctx context.Context, q sqlx.ExtContext, classID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM in_class WHERE class_id = $1`
	err := sqlx.GetContext(ctx, q, &count, query, classID)
	return count, err
}

func (r *postgresClassRepository) AddMember(ctx context.Context, q sqlx.ExtContext, classID, studentID uuid.UUID) (*model.InClass, error) {
	membership := &model.InClass{ClassID: classID, StudentID: studentID}
	query := `
		INSERT INTO in_class (class_id, student_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	row := q.QueryRowxContext(ctx, query, classID, studentID)
	if err := row.Scan(&membership.ID, &membership.CreatedAt); err != nil {
		return nil, err
	}

	return membership, nil
}

func (r *postgresClassRepository) RemoveMember(ctx context.Context, q sqlx.ExtContext, classID, studentID uuid.UUID) (bool, error) {
	query := `DELETE FROM in_class WHERE class_id = $1 AND student_id = $2`

	result, err := q.ExecContext(ctx, query, classID, studentID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *postgresClassRepository) ListMembers(ctx context.Context, classID uuid.UUID) ([]model.InClass, error) {
	var members []model.InClass
	query := `SELECT * FROM in_class WHERE class_id = $1 ORDER BY created_at`
	err := r.db.SelectContext(ctx, &members, query, classID)
	return members, err
}
