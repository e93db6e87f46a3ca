package service_test

import (
	"context"
	"testing"

	"tutoring-backend/internal/model"
	"tutoring-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func bcryptHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func noTeacher() *teacherRepoStub {
	return &teacherRepoStub{
		findByEmail: func(_ context.Context, _ string) (*model.Teacher, error) { return nil, nil },
	}
}

func TestAuthService_Login_Student(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	student := &model.Student{
		ID:       uuid.New(),
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: bcryptHash(t, "secret"),
	}
	students := &studentRepoStub{
		findByEmail: func(_ context.Context, email string) (*model.Student, error) {
			require.Equal(t, student.Email, email)
			return student, nil
		},
	}

	svc := service.NewAuthService(students, noTeacher())
	result, err := svc.Login(context.Background(), student.Email, "secret")
	require.NoError(t, err)
	require.Equal(t, student.ID, result.ID)
	require.Equal(t, "student", result.Role)
	require.NotEmpty(t, result.Token)
}

func TestAuthService_Login_TeacherRoleIsTheLabel(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	teacher := &model.Teacher{
		ID:       uuid.New(),
		Name:     "Budi",
		Label:    model.TeacherLabelTutor,
		Email:    "budi@example.com",
		Password: bcryptHash(t, "secret"),
	}
	teachers := &teacherRepoStub{
		findByEmail: func(_ context.Context, _ string) (*model.Teacher, error) { return teacher, nil },
	}

	svc := service.NewAuthService(nil, teachers)
	result, err := svc.Login(context.Background(), teacher.Email, "secret")
	require.NoError(t, err)
	require.Equal(t, model.TeacherLabelTutor, result.Role)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	student := &model.Student{
		ID:       uuid.New(),
		Email:    "ana@example.com",
		Password: bcryptHash(t, "secret"),
	}
	students := &studentRepoStub{
		findByEmail: func(_ context.Context, _ string) (*model.Student, error) { return student, nil },
	}

	svc := service.NewAuthService(students, noTeacher())
	_, err := svc.Login(context.Background(), student.Email, "not-the-password")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	students := &studentRepoStub{
		findByEmail: func(_ context.Context, _ string) (*model.Student, error) { return nil, nil },
	}

	svc := service.NewAuthService(students, noTeacher())
	_, err := svc.Login(context.Background(), "nobody@example.com", "secret")
	require.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestAuthService_Login_UpgradesLegacyPlaintext(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	student := &model.Student{
		ID:       uuid.New(),
		Email:    "ana@example.com",
		Password: "secret", // imported before hashing existed
	}
	var rehashed string
	students := &studentRepoStub{
		findByEmail: func(_ context.Context, _ string) (*model.Student, error) { return student, nil },
		updatePassword: func(_ context.Context, id uuid.UUID, hash string) error {
			require.Equal(t, student.ID, id)
			rehashed = hash
			return nil
		},
	}

	svc := service.NewAuthService(students, noTeacher())
	_, err := svc.Login(context.Background(), student.Email, "secret")
	require.NoError(t, err)
	require.NotEmpty(t, rehashed)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(rehashed), []byte("secret")))
}

func TestAuthService_Login_LegacyPlaintextStillRejectsWrongPassword(t *testing.T) {
	student := &model.Student{
		ID:       uuid.New(),
		Email:    "ana@example.com",
		Password: "secret",
	}
	students := &studentRepoStub{
		findByEmail: func(_ context.Context, _ string) (*model.Student, error) { return student, nil },
		updatePassword: func(_ context.Context, _ uuid.UUID, _ string) error {
			t.Fatal("no rehash on a failed login")
			return nil
		},
	}

	svc := service.NewAuthService(students, noTeacher())
	_, err := svc.Login(context.Background(), student.Email, "wrong")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}
