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
	"github.com/stretchr/testify/require"
)

func TestPostgresSessionRepository_CreateOccurrence_Inserts(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := repo.NewPostgresSessionRepository(sqlxDB)

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (class_id, start_at) WHERE class_id IS NOT NULL DO NOTHING`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id.String(), now))

	classID := uuid.New()
	session := &model.Session{
		ClassID:   &classID,
		TeacherID: uuid.New(),
		StartAt:   time.Now().Add(time.Hour),
		EndAt:     time.Now().Add(2 * time.Hour),
		Status:    model.SessionStatusUpcoming,
	}
	inserted, err := r.CreateOccurrence(context.Background(), sqlxDB, session)
	require.NoError(t, err)
	require.True(t, inserted)
	require.Equal(t, id, session.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionRepository_CreateOccurrence_ConflictIsNotAnError(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := repo.NewPostgresSessionRepository(sqlxDB)

	// DO NOTHING yields no RETURNING row for an existing occurrence
	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (class_id, start_at) WHERE class_id IS NOT NULL DO NOTHING`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))

	classID := uuid.New()
	session := &model.Session{
		ClassID:   &classID,
		TeacherID: uuid.New(),
		StartAt:   time.Now().Add(time.Hour),
		EndAt:     time.Now().Add(2 * time.Hour),
		Status:    model.SessionStatusUpcoming,
	}
	inserted, err := r.CreateOccurrence(context.Background(), sqlxDB, session)
	require.NoError(t, err)
	require.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionRepository_UpdateStatusIf(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := repo.NewPostgresSessionRepository(sqlxDB)

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions`)).
		WithArgs(model.SessionStatusFinished, id, model.SessionStatusOngoing).
		WillReturnResult(sqlmock.NewResult(0, 1))

	changed, err := r.UpdateStatusIf(context.Background(), sqlxDB, id, model.SessionStatusOngoing, model.SessionStatusFinished)
	require.NoError(t, err)
	require.True(t, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionRepository_UpdateStatusIf_WrongState(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := repo.NewPostgresSessionRepository(sqlxDB)

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions`)).
		WithArgs(model.SessionStatusCancelled, id, model.SessionStatusUpcoming).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := r.UpdateStatusIf(context.Background(), sqlxDB, id, model.SessionStatusUpcoming, model.SessionStatusCancelled)
	require.NoError(t, err)
	require.False(t, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionRepository_MarkFinished_OnlyPastNonTerminal(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := repo.NewPostgresSessionRepository(sqlxDB)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`WHERE status IN ('upcoming', 'ongoing') AND end_at <= $1`)).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := r.MarkFinished(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionRepository_CancelUpcomingByBooking(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := repo.NewPostgresSessionRepository(sqlxDB)

	bookingID := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`WHERE booking_id = $1 AND status = 'upcoming'`)).
		WithArgs(bookingID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := r.CancelUpcomingByBooking(context.Background(), sqlxDB, bookingID)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
