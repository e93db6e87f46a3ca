package service_test

import (
	"context"
	"testing"

	"tutoring-backend/internal/model"
	"tutoring-backend/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func activeClass(id uuid.UUID, capacity int) *model.Class {
	return &model.Class{
		ID:          id,
		SubjectID:   uuid.New(),
		TeacherID:   uuid.New(),
		Type:        model.ClassTypeOnline,
		MaxStudents: capacity,
		Status:      model.ClassStatusActive,
	}
}

func TestEnrollmentService_Enroll(t *testing.T) {
	db, mock := newTxDB(t)

	classID := uuid.New()
	studentID := uuid.New()
	classes := &classRepoStub{
		findByIDLocked: func(_ context.Context, _ sqlx.ExtContext, id uuid.UUID) (*model.Class, error) {
			require.Equal(t, classID, id)
			return activeClass(classID, 10), nil
		},
		countMembers: func(_ context.Context, _ sqlx.ExtContext, _ uuid.UUID) (int, error) {
			return 3, nil
		},
		addMember: func(_ context.Context, _ sqlx.ExtContext, cID, sID uuid.UUID) (*model.InClass, error) {
			return &model.InClass{ClassID: cID, StudentID: sID}, nil
		},
		updateStatus: func(_ context.Context, _ sqlx.ExtContext, _ uuid.UUID, _ model.ClassStatus) error {
			t.Fatal("class is not full, status must stay active")
			return nil
		},
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := service.NewEnrollmentService(db, classes, nil, nil)
	membership, err := svc.Enroll(context.Background(), classID, studentID)
	require.NoError(t, err)
	require.Equal(t, studentID, membership.StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentService_Enroll_LastSeatFlipsClassToFull(t *testing.T) {
	db, mock := newTxDB(t)

	classID := uuid.New()
	flipped := false
	classes := &classRepoStub{
		findByIDLocked: func(_ context.Context, _ sqlx.ExtContext, id uuid.UUID) (*model.Class, error) {
			return activeClass(id, 10), nil
		},
		countMembers: func(_ context.Context, _ sqlx.ExtContext, _ uuid.UUID) (int, error) {
			return 9, nil
		},
		addMember: func(_ context.Context, _ sqlx.ExtContext, cID, sID uuid.UUID) (*model.InClass, error) {
			return &model.InClass{ClassID: cID, StudentID: sID}, nil
		},
		updateStatus: func(_ context.Context, _ sqlx.ExtContext, _ uuid.UUID, status model.ClassStatus) error {
			require.Equal(t, model.ClassStatusFull, status)
			flipped = true
			return nil
		},
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := service.NewEnrollmentService(db, classes, nil, nil)
	_, err := svc.Enroll(context.Background(), classID, uuid.New())
	require.NoError(t, err)
	require.True(t, flipped)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentService_Enroll_AtCapacity(t *testing.T) {
	db, mock := newTxDB(t)

	classes := &classRepoStub{
		findByIDLocked: func(_ context.Context, _ sqlx.ExtContext, id uuid.UUID) (*model.Class, error) {
			return activeClass(id, 10), nil
		},
		countMembers: func(_ context.Context, _ sqlx.ExtContext, _ uuid.UUID) (int, error) {
			return 10, nil
		},
		addMember: func(_ context.Context, _ sqlx.ExtContext, _, _ uuid.UUID) (*model.InClass, error) {
			t.Fatal("no membership may be written into a full class")
			return nil, nil
		},
	}

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := service.NewEnrollmentService(db, classes, nil, nil)
	_, err := svc.Enroll(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, service.ErrClassFull)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentService_Enroll_Duplicate(t *testing.T) {
	db, mock := newTxDB(t)

	classes := &classRepoStub{
		findByIDLocked: func(_ context.Context, _ sqlx.ExtContext, id uuid.UUID) (*model.Class, error) {
			return activeClass(id, 10), nil
		},
		countMembers: func(_ context.Context, _ sqlx.ExtContext, _ uuid.UUID) (int, error) {
			return 3, nil
		},
		addMember: func(_ context.Context, _ sqlx.ExtContext, _, _ uuid.UUID) (*model.InClass, error) {
			return nil, &pgconn.PgError{Code: "23505"}
		},
	}

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := service.NewEnrollmentService(db, classes, nil, nil)
	_, err := svc.Enroll(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, service.ErrAlreadyEnrolled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentService_Enroll_InactiveClass(t *testing.T) {
	db, mock := newTxDB(t)

	classes := &classRepoStub{
		findByIDLocked: func(_ context.Context, _ sqlx.ExtContext, id uuid.UUID) (*model.Class, error) {
			class := activeClass(id, 10)
			class.Status = model.ClassStatusInactive
			return class, nil
		},
	}

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := service.NewEnrollmentService(db, classes, nil, nil)
	_, err := svc.Enroll(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, service.ErrClassNotOpen)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentService_Unenroll_ReopensFullClass(t *testing.T) {
	db, mock := newTxDB(t)

	classID := uuid.New()
	reopened := false
	classes := &classRepoStub{
		findByIDLocked: func(_ context.Context, _ sqlx.ExtContext, id uuid.UUID) (*model.Class, error) {
			class := activeClass(id, 10)
			class.Status = model.ClassStatusFull
			return class, nil
		},
		removeMember: func(_ context.Context, _ sqlx.ExtContext, _, _ uuid.UUID) (bool, error) {
			return true, nil
		},
		updateStatus: func(_ context.Context, _ sqlx.ExtContext, _ uuid.UUID, status model.ClassStatus) error {
			require.Equal(t, model.ClassStatusActive, status)
			reopened = true
			return nil
		},
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := service.NewEnrollmentService(db, classes, nil, nil)
	require.NoError(t, svc.Unenroll(context.Background(), classID, uuid.New()))
	require.True(t, reopened)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentService_Unenroll_MissingMembershipIsANoop(t *testing.T) {
	db, mock := newTxDB(t)

	classes := &classRepoStub{
		findByIDLocked: func(_ context.Context, _ sqlx.ExtContext, id uuid.UUID) (*model.Class, error) {
			return activeClass(id, 10), nil
		},
		removeMember: func(_ context.Context, _ sqlx.ExtContext, _, _ uuid.UUID) (bool, error) {
			return false, nil
		},
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := service.NewEnrollmentService(db, classes, nil, nil)
	require.NoError(t, svc.Unenroll(context.Background(), uuid.New(), uuid.New()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentService_CreateClass_Defaults(t *testing.T) {
	db, _ := newTxDB(t)

	classes := &classRepoStub{
		createFn: func(_ context.Context, class *model.Class) (*model.Class, error) {
			return class, nil
		},
	}

	svc := service.NewEnrollmentService(db, classes, nil, nil)
	class, err := svc.CreateClass(context.Background(), &model.Class{
		SubjectID: uuid.New(),
		TeacherID: uuid.New(),
		Type:      model.ClassTypeOffline,
	})
	require.NoError(t, err)
	require.Equal(t, 30, class.MaxStudents)
	require.Equal(t, model.ClassStatusActive, class.Status)
}
