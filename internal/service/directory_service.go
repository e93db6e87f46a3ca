package service

import (
	"context"
	"errors"
	"fmt"

	"tutoring-backend/internal/model"
	"tutoring-backend/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrEmailTaken      = errors.New("email is already registered")
)

// DirectoryService owns the people and subject catalog. Passwords are
// bcrypt-hashed before they reach the repositories.
type DirectoryService interface {
	CreateStudent(ctx context.Context, student *model.Student) (*model.Student, error)
	GetStudent(ctx context.Context, id uuid.UUID) (*model.Student, error)
	ListStudents(ctx context.Context) ([]model.Student, error)
	UpdateStudent(ctx context.Context, student *model.Student) (*model.Student, error)
	DeleteStudent(ctx context.Context, id uuid.UUID) error

	CreateTeacher(ctx context.Context, teacher *model.Teacher) (*model.Teacher, error)
	GetTeacher(ctx context.Context, id uuid.UUID) (*model.Teacher, error)
	ListTeachers(ctx context.Context) ([]model.Teacher, error)
	ListTutors(ctx context.Context) ([]model.Teacher, error)
	UpdateTeacher(ctx context.Context, teacher *model.Teacher) (*model.Teacher, error)
	DeleteTeacher(ctx context.Context, id uuid.UUID) error

	CreateSubject(ctx context.Context, subject *model.Subject) (*model.Subject, error)
	GetSubject(ctx context.Context, id uuid.UUID) (*model.Subject, error)
	ListSubjects(ctx context.Context) ([]model.Subject, error)
	UpdateSubject(ctx context.Context, subject *model.Subject) (*model.Subject, error)
	DeleteSubject(ctx context.Context, id uuid.UUID) error
}

type directoryService struct {
	studentRepo repository.StudentRepository
	teacherRepo repository.TeacherRepository
	subjectRepo repository.SubjectRepository
	auth        AuthService
}

func NewDirectoryService(
	studentRepo repository.StudentRepository,
	teacherRepo repository.TeacherRepository,
	subjectRepo repository.SubjectRepository,
	auth AuthService,
) DirectoryService {
	return &directoryService{
		studentRepo: studentRepo,
		teacherRepo: teacherRepo,
		subjectRepo: subjectRepo,
		auth:        auth,
	}
}

func (s *directoryService) CreateStudent(ctx context.Context, student *model.Student) (*model.Student, error) {
	hash, err := s.auth.HashPassword(student.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	student.Password = hash

	created, err := s.studentRepo.Create(ctx, student)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}
	return created, nil
}

func (s *directoryService) GetStudent(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	student, err := s.studentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find student: %w", err)
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

func (s *directoryService) ListStudents(ctx context.Context) ([]model.Student, error) {
	return s.studentRepo.List(ctx)
}

// UpdateStudent replaces the student's profile. An empty password keeps the
// stored hash; a non-empty one is rehashed.
func (s *directoryService) UpdateStudent(ctx context.Context, student *model.Student) (*model.Student, error) {
	existing, err := s.GetStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	if student.Password == "" {
		student.Password = existing.Password
	} else {
		hash, err := s.auth.HashPassword(student.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		student.Password = hash
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update student: %w", err)
	}
	return student, nil
}

func (s *directoryService) DeleteStudent(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetStudent(ctx, id); err != nil {
		return err
	}
	return s.studentRepo.Delete(ctx, id)
}

func (s *directoryService) CreateTeacher(ctx context.Context, teacher *model.Teacher) (*model.Teacher, error) {
	if teacher.Label == "" {
		teacher.Label = model.TeacherLabelTeacher
	}

	hash, err := s.auth.HashPassword(teacher.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	teacher.Password = hash

	created, err := s.teacherRepo.Create(ctx, teacher)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}
	return created, nil
}

func (s *directoryService) GetTeacher(ctx context.Context, id uuid.UUID) (*model.Teacher, error) {
	teacher, err := s.teacherRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find teacher: %w", err)
	}
	if teacher == nil {
		return nil, ErrTeacherNotFound
	}
	return teacher, nil
}

func (s *directoryService) ListTeachers(ctx context.Context) ([]model.Teacher, error) {
	return s.teacherRepo.List(ctx)
}

func (s *directoryService) ListTutors(ctx context.Context) ([]model.Teacher, error) {
	return s.teacherRepo.ListByLabel(ctx, model.TeacherLabelTutor)
}

func (s *directoryService) UpdateTeacher(ctx context.Context, teacher *model.Teacher) (*model.Teacher, error) {
	existing, err := s.GetTeacher(ctx, teacher.ID)
	if err != nil {
		return nil, err
	}

	if teacher.Password == "" {
		teacher.Password = existing.Password
	} else {
		hash, err := s.auth.HashPassword(teacher.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		teacher.Password = hash
	}

	if err := s.teacherRepo.Update(ctx, teacher); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update teacher: %w", err)
	}
	return teacher, nil
}

func (s *directoryService) DeleteTeacher(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetTeacher(ctx, id); err != nil {
		return err
	}
	return s.teacherRepo.Delete(ctx, id)
}

func (s *directoryService) CreateSubject(ctx context.Context, subject *model.Subject) (*model.Subject, error) {
	return s.subjectRepo.Create(ctx, subject)
}

func (s *directoryService) GetSubject(ctx context.Context, id uuid.UUID) (*model.Subject, error) {
	subject, err := s.subjectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find subject: %w", err)
	}
	if subject == nil {
		return nil, ErrSubjectNotFound
	}
	return subject, nil
}

func (s *directoryService) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	return s.subjectRepo.List(ctx)
}

func (s *directoryService) UpdateSubject(ctx context.Context, subject *model.Subject) (*model.Subject, error) {
	if _, err := s.GetSubject(ctx, subject.ID); err != nil {
		return nil, err
	}
	if err := s.subjectRepo.Update(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to update subject: %w", err)
	}
	return subject, nil
}

func (s *directoryService) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetSubject(ctx, id); err != nil {
		return err
	}
	return s.subjectRepo.Delete(ctx, id)
}
