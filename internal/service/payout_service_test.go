package service_test

import (
	"context"
	"testing"
	"time"

	"tutoring-backend/internal/model"
	"tutoring-backend/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func TestPayoutService_RunPayout_SumsFinishedSessionFees(t *testing.T) {
	db, mock := newTxDB(t)

	teacherID := uuid.New()
	classID := uuid.New()
	slotID := uuid.New()
	finished := []model.Session{
		{ID: uuid.New(), TeacherID: teacherID, ClassID: &classID, Status: model.SessionStatusFinished},
		{ID: uuid.New(), TeacherID: teacherID, ClassID: &classID, Status: model.SessionStatusFinished},
		{ID: uuid.New(), TeacherID: teacherID, TimeSlotID: &slotID, Status: model.SessionStatusFinished},
	}

	sessions := &sessionRepoStub{
		listFinishedInPeriod: func(_ context.Context, _ sqlx.ExtContext, id uuid.UUID, from, until time.Time) ([]model.Session, error) {
			require.Equal(t, teacherID, id)
			require.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), from)
			require.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), until)
			return finished, nil
		},
	}
	fees := &feeRepoStub{
		findByTeacherAndClass: func(_ context.Context, _ sqlx.ExtContext, _, _ uuid.UUID) (*model.Fee, error) {
			return &model.Fee{TeacherID: teacherID, ClassID: &classID, AmountCents: 2000}, nil
		},
		findByTeacherAndSlot: func(_ context.Context, _ sqlx.ExtContext, _, _ uuid.UUID) (*model.Fee, error) {
			return &model.Fee{TeacherID: teacherID, TimeSlotID: &slotID, AmountCents: 2000}, nil
		},
	}

	var linked []uuid.UUID
	payments := &paymentRepoStub{
		findByTeacherAndPeriod: func(_ context.Context, _ uuid.UUID, _ string) (*model.Payment, error) {
			return nil, nil
		},
		create: func(_ context.Context, _ sqlx.ExtContext, payment *model.Payment) (*model.Payment, error) {
			payment.ID = uuid.New()
			return payment, nil
		},
		addSessions: func(_ context.Context, _ sqlx.ExtContext, _ uuid.UUID, ids []uuid.UUID) error {
			linked = ids
			return nil
		},
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := service.NewPayoutService(db, fees, payments, sessions, nopPublisher{})
	payment, err := svc.RunPayout(context.Background(), teacherID, "2026-07")
	require.NoError(t, err)
	require.Equal(t, int64(6000), payment.AmountCents)
	require.Equal(t, model.PaymentStatusPending, payment.Status)
	require.Equal(t, "2026-07", payment.Period)
	require.NotNil(t, payment.SessionID)
	require.Equal(t, finished[0].ID, *payment.SessionID)
	require.Len(t, linked, 3)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutService_RunPayout_MissingFeeCountsAsZero(t *testing.T) {
	db, mock := newTxDB(t)

	teacherID := uuid.New()
	classID := uuid.New()
	sessions := &sessionRepoStub{
		listFinishedInPeriod: func(_ context.Context, _ sqlx.ExtContext, _ uuid.UUID, _, _ time.Time) ([]model.Session, error) {
			return []model.Session{
				{ID: uuid.New(), TeacherID: teacherID, ClassID: &classID, Status: model.SessionStatusFinished},
			}, nil
		},
	}
	fees := &feeRepoStub{
		findByTeacherAndClass: func(_ context.Context, _ sqlx.ExtContext, _, _ uuid.UUID) (*model.Fee, error) {
			return nil, nil
		},
	}
	payments := &paymentRepoStub{
		findByTeacherAndPeriod: func(_ context.Context, _ uuid.UUID, _ string) (*model.Payment, error) {
			return nil, nil
		},
		create: func(_ context.Context, _ sqlx.ExtContext, payment *model.Payment) (*model.Payment, error) {
			payment.ID = uuid.New()
			return payment, nil
		},
		addSessions: func(_ context.Context, _ sqlx.ExtContext, _ uuid.UUID, _ []uuid.UUID) error {
			return nil
		},
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := service.NewPayoutService(db, fees, payments, sessions, nopPublisher{})
	payment, err := svc.RunPayout(context.Background(), teacherID, "2026-07")
	require.NoError(t, err)
	require.Equal(t, int64(0), payment.AmountCents)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutService_RunPayout_SecondRunForSamePeriod(t *testing.T) {
	db, mock := newTxDB(t)

	sessions := &sessionRepoStub{
		listFinishedInPeriod: func(_ context.Context, _ sqlx.ExtContext, _ uuid.UUID, _, _ time.Time) ([]model.Session, error) {
			return nil, nil
		},
	}
	payments := &paymentRepoStub{
		findByTeacherAndPeriod: func(_ context.Context, _ uuid.UUID, _ string) (*model.Payment, error) {
			// lost the race, the insert below hits the unique index
			return nil, nil
		},
		create: func(_ context.Context, _ sqlx.ExtContext, _ *model.Payment) (*model.Payment, error) {
			return nil, &pgconn.PgError{Code: "23505"}
		},
	}

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := service.NewPayoutService(db, nil, payments, sessions, nopPublisher{})
	_, err := svc.RunPayout(context.Background(), uuid.New(), "2026-07")
	require.ErrorIs(t, err, service.ErrAlreadyPaid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutService_RunPayout_ExistingPaymentShortCircuits(t *testing.T) {
	db, mock := newTxDB(t)

	teacherID := uuid.New()
	payments := &paymentRepoStub{
		findByTeacherAndPeriod: func(_ context.Context, id uuid.UUID, period string) (*model.Payment, error) {
			require.Equal(t, teacherID, id)
			require.Equal(t, "2026-07", period)
			return &model.Payment{ID: uuid.New(), TeacherID: teacherID, Period: "2026-07"}, nil
		},
	}

	// no transaction is opened when the period was already paid out
	svc := service.NewPayoutService(db, nil, payments, nil, nopPublisher{})
	_, err := svc.RunPayout(context.Background(), teacherID, "2026-07")
	require.ErrorIs(t, err, service.ErrAlreadyPaid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutService_RunPayout_BadPeriod(t *testing.T) {
	db, _ := newTxDB(t)

	svc := service.NewPayoutService(db, nil, nil, nil, nopPublisher{})
	for _, period := range []string{"", "2026", "2026-13", "July 2026"} {
		_, err := svc.RunPayout(context.Background(), uuid.New(), period)
		require.ErrorIs(t, err, service.ErrInvalidPeriod, "period %q", period)
	}
}

func TestPayoutService_SetFee_ScopeMustBeExclusive(t *testing.T) {
	db, _ := newTxDB(t)
	svc := service.NewPayoutService(db, nil, nil, nil, nopPublisher{})

	teacherID := uuid.New()
	classID := uuid.New()
	slotID := uuid.New()

	_, err := svc.SetFee(context.Background(), &model.Fee{TeacherID: teacherID, AmountCents: 2000})
	require.ErrorIs(t, err, service.ErrFeeScope)

	_, err = svc.SetFee(context.Background(), &model.Fee{
		TeacherID: teacherID, ClassID: &classID, TimeSlotID: &slotID, AmountCents: 2000,
	})
	require.ErrorIs(t, err, service.ErrFeeScope)
}

func TestPayoutService_SetFee_DuplicateScope(t *testing.T) {
	db, _ := newTxDB(t)

	fees := &feeRepoStub{
		create: func(_ context.Context, _ *model.Fee) (*model.Fee, error) {
			return nil, &pgconn.PgError{Code: "23505"}
		},
	}
	svc := service.NewPayoutService(db, fees, nil, nil, nopPublisher{})

	classID := uuid.New()
	_, err := svc.SetFee(context.Background(), &model.Fee{
		TeacherID: uuid.New(), ClassID: &classID, AmountCents: 2000,
	})
	require.ErrorIs(t, err, service.ErrDuplicateFee)
}
