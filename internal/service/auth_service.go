package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"tutoring-backend/internal/jwt"
	"tutoring-backend/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("no account with this email")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// LoginResult is the authenticated identity handed back to the API layer.
// Role is "student" for students and the teacher's label otherwise.
type LoginResult struct {
	ID    uuid.UUID
	Role  string
	Name  string
	Email string
	Token string
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	HashPassword(password string) (string, error)
}

type authService struct {
	studentRepo repository.StudentRepository
	teacherRepo repository.TeacherRepository
}

func NewAuthService(studentRepo repository.StudentRepository, teacherRepo repository.TeacherRepository) AuthService {
	return &authService{
		studentRepo: studentRepo,
		teacherRepo: teacherRepo,
	}
}

// Login authenticates against teachers first, then students. Accounts
// imported with plaintext passwords are upgraded to bcrypt on their first
// successful login.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	teacher, err := s.teacherRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up teacher: %w", err)
	}
	if teacher != nil {
		if err := s.verify(ctx, teacher.ID, teacher.Password, password, s.teacherRepo.UpdatePassword); err != nil {
			return nil, err
		}
		return s.result(teacher.ID, teacher.Label, teacher.Name, teacher.Email)
	}

	student, err := s.studentRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up student: %w", err)
	}
	if student == nil {
		return nil, ErrUserNotFound
	}
	if err := s.verify(ctx, student.ID, student.Password, password, s.studentRepo.UpdatePassword); err != nil {
		return nil, err
	}
	return s.result(student.ID, "student", student.Name, student.Email)
}

func (s *authService) result(id uuid.UUID, role, name, email string) (*LoginResult, error) {
	token, err := jwt.GenerateToken(id, role, name, email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &LoginResult{ID: id, Role: role, Name: name, Email: email, Token: token}, nil
}

// verify checks the supplied password against the stored value. Stored
// values not in bcrypt form are treated as legacy plaintext and rehashed
// in place on a match.
func (s *authService) verify(ctx context.Context, id uuid.UUID, stored, password string, persist func(context.Context, uuid.UUID, string) error) error {
	if strings.HasPrefix(stored, "$2") {
		if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)); err != nil {
			return ErrInvalidCredentials
		}
		return nil
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		return ErrInvalidCredentials
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to rehash password: %w", err)
	}
	if err := persist(ctx, id, hash); err != nil {
		return fmt.Errorf("failed to persist rehashed password: %w", err)
	}
	return nil
}

func (s *authService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
