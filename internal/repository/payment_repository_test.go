package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"tutoring-backend/internal/model"
	repo "tutoring-backend/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestPostgresPaymentRepository_Create(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := repo.NewPostgresPaymentRepository(sqlxDB)

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO payments (teacher_id, session_id, period, amount_cents, status, paid_date)`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id.String(), now))

	sessionID := uuid.New()
	payment := &model.Payment{
		TeacherID:   uuid.New(),
		SessionID:   &sessionID,
		Period:      "2026-07",
		AmountCents: 6000,
		Status:      model.PaymentStatusPending,
	}
	created, err := r.Create(context.Background(), sqlxDB, payment)
	require.NoError(t, err)
	require.Equal(t, id, created.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPaymentRepository_Create_DuplicatePeriod(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := repo.NewPostgresPaymentRepository(sqlxDB)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO payments`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	payment := &model.Payment{
		TeacherID:   uuid.New(),
		Period:      "2026-07",
		AmountCents: 6000,
		Status:      model.PaymentStatusPending,
	}
	_, err := r.Create(context.Background(), sqlxDB, payment)
	require.Error(t, err)
	require.True(t, repo.IsUniqueViolation(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPaymentRepository_AddSessions(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := repo.NewPostgresPaymentRepository(sqlxDB)

	paymentID := uuid.New()
	sessionIDs := []uuid.UUID{uuid.New(), uuid.New()}
	for _, sessionID := range sessionIDs {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payment_sessions (payment_id, session_id) VALUES ($1, $2)`)).
			WithArgs(paymentID, sessionID).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	err := r.AddSessions(context.Background(), sqlxDB, paymentID, sessionIDs)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPaymentRepository_ListSessionIDs(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := repo.NewPostgresPaymentRepository(sqlxDB)

	paymentID := uuid.New()
	first, second := uuid.New(), uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT session_id FROM payment_sessions WHERE payment_id = $1`)).
		WithArgs(paymentID).
		WillReturnRows(sqlmock.NewRows([]string{"session_id"}).AddRow(first.String()).AddRow(second.String()))

	ids, err := r.ListSessionIDs(context.Background(), paymentID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{first, second}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}
