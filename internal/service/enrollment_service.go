package service

import (
	"context"
	"errors"
	"fmt"

	"tutoring-backend/internal/model"
	"tutoring-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrClassNotFound   = errors.New("class not found")
	ErrClassNotOpen    = errors.New("class is not open for enrollment")
	ErrClassFull       = errors.New("class is full")
	ErrAlreadyEnrolled = errors.New("student is already enrolled in this class")
)

type EnrollmentService interface {
	CreateClass(ctx context.Context, class *model.Class) (*model.Class, error)
	GetClass(ctx context.Context, classID uuid.UUID) (*model.Class, error)
	GetClassDetails(ctx context.Context, classID uuid.UUID) (*model.ClassDetails, error)
	ListClasses(ctx context.Context, filter repository.ClassFilter) ([]model.ClassDetails, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.ClassDetails, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.ClassDetails, error)
	UpdateClass(ctx context.Context, class *model.Class) (*model.Class, error)
	DeleteClass(ctx context.Context, classID uuid.UUID) error

	Enroll(ctx context.Context, classID, studentID uuid.UUID) (*model.InClass, error)
	Unenroll(ctx context.Context, classID, studentID uuid.UUID) error
	ListMembers(ctx context.Context, classID uuid.UUID) ([]model.InClass, error)
}

type enrollmentService struct {
	db          *sqlx.DB
	classRepo   repository.ClassRepository
	subjectRepo repository.SubjectRepository
	teacherRepo repository.TeacherRepository
}

func NewEnrollmentService(
	db *sqlx.DB,
	classRepo repository.ClassRepository,
	subjectRepo repository.SubjectRepository,
	teacherRepo repository.TeacherRepository,
) EnrollmentService {
	return &enrollmentService{
		db:          db,
		classRepo:   classRepo,
		subjectRepo: subjectRepo,
		teacherRepo: teacherRepo,
	}
}

func (s *enrollmentService) CreateClass(ctx context.Context, class *model.Class) (*model.Class, error) {
	if class.MaxStudents <= 0 {
		class.MaxStudents = 30
	}
	if class.Status == "" {
		class.Status = model.ClassStatusActive
	}
	return s.classRepo.Create(ctx, class)
}

func (s *enrollmentService) GetClass(ctx context.Context, classID uuid.UUID) (*model.Class, error) {
	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to find class: %w", err)
	}
	if class == nil {
		return nil, ErrClassNotFound
	}
	return class, nil
}

func (s *enrollmentService) GetClassDetails(ctx context.Context, classID uuid.UUID) (*model.ClassDetails, error) {
	class, err := s.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	details, err := s.expand(ctx, []model.Class{*class})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *enrollmentService) ListClasses(ctx context.Context, filter repository.ClassFilter) ([]model.ClassDetails, error) {
	classes, err := s.classRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return s.expand(ctx, classes)
}

func (s *enrollmentService) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.ClassDetails, error) {
	classes, err := s.classRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes for student: %w", err)
	}
	return s.expand(ctx, classes)
}

func (s *enrollmentService) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.ClassDetails, error) {
	classes, err := s.classRepo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes for teacher: %w", err)
	}
	return s.expand(ctx, classes)
}

// expand joins subjects and teachers onto class rows with two batched
// lookups instead of one query per class.
func (s *enrollmentService) expand(ctx context.Context, classes []model.Class) ([]model.ClassDetails, error) {
	subjectIDs := make([]uuid.UUID, 0, len(classes))
	teacherIDs := make([]uuid.UUID, 0, len(classes))
	for i := range classes {
		subjectIDs = append(subjectIDs, classes[i].SubjectID)
		teacherIDs = append(teacherIDs, classes[i].TeacherID)
	}

	subjects, err := s.subjectRepo.FindByIDs(ctx, subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load subjects: %w", err)
	}
	teachers, err := s.teacherRepo.FindByIDs(ctx, teacherIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load teachers: %w", err)
	}

	details := make([]model.ClassDetails, len(classes))
	for i := range classes {
		details[i] = model.ClassDetails{
			Class:   classes[i],
			Subject: subjects[classes[i].SubjectID],
			Teacher: teachers[classes[i].TeacherID],
		}
	}
	return details, nil
}

func (s *enrollmentService) UpdateClass(ctx context.Context, class *model.Class) (*model.Class, error) {
	if _, err := s.GetClass(ctx, class.ID); err != nil {
		return nil, err
	}
	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, fmt.Errorf("failed to update class: %w", err)
	}
	return class, nil
}

func (s *enrollmentService) DeleteClass(ctx context.Context, classID uuid.UUID) error {
	if _, err := s.GetClass(ctx, classID); err != nil {
		return err
	}
	return s.classRepo.Delete(ctx, classID)
}

func (s *enrollmentService) ListMembers(ctx context.Context, classID uuid.UUID) ([]model.InClass, error) {
	if _, err := s.GetClass(ctx, classID); err != nil {
		return nil, err
	}
	return s.classRepo.ListMembers(ctx, classID)
}

// Enroll adds a student to a class under the class row lock. The capacity
// count runs while the row is held FOR UPDATE, and the unique
// (class, student) index backs the no-double-enroll invariant in case two
// requests for the same student still interleave.
func (s *enrollmentService) Enroll(ctx context.Context, classID, studentID uuid.UUID) (*model.InClass, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	class, err := s.classRepo.FindByIDLocked(ctx, tx, classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrClassNotFound
	}

	switch class.Status {
	case model.ClassStatusActive:
	case model.ClassStatusFull:
		return nil, ErrClassFull
	default:
		return nil, ErrClassNotOpen
	}

	count, err := s.classRepo.CountMembers(ctx, tx, classID)
	if err != nil {
		return nil, err
	}
	if count >= class.MaxStudents {
		return nil, ErrClassFull
	}

	membership, err := s.classRepo.AddMember(ctx, tx, classID, studentID)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	if count+1 == class.MaxStudents {
		if err := s.classRepo.UpdateStatus(ctx, tx, classID, model.ClassStatusFull); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return membership, nil
}

// Unenroll removes a membership. Removing a missing membership is a no-op; a
// full class with a freed seat reopens.
func (s *enrollmentService) Unenroll(ctx context.Context, classID, studentID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	class, err := s.classRepo.FindByIDLocked(ctx, tx, classID)
	if err != nil {
		return err
	}
	if class == nil {
		return ErrClassNotFound
	}

	removed, err := s.classRepo.RemoveMember(ctx, tx, classID, studentID)
	if err != nil {
		return err
	}

	if removed && class.Status == model.ClassStatusFull {
		if err := s.classRepo.UpdateStatus(ctx, tx, classID, model.ClassStatusActive); err != nil {
			return err
		}
	}

	return tx.Commit()
}
