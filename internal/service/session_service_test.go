package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tutoring-backend/internal/model"
	"tutoring-backend/internal/service"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func TestSessionService_Finish_FromOngoing(t *testing.T) {
	db, _ := newTxDB(t)

	session := &model.Session{ID: uuid.New(), TeacherID: uuid.New(), Status: model.SessionStatusOngoing}
	sessions := &sessionRepoStub{
		findByID: func(_ context.Context, _ uuid.UUID) (*model.Session, error) { return session, nil },
		updateStatusIf: func(_ context.Context, _ sqlx.ExtContext, _ uuid.UUID, from, to model.SessionStatus) (bool, error) {
			require.Equal(t, model.SessionStatusOngoing, from)
			require.Equal(t, model.SessionStatusFinished, to)
			return true, nil
		},
	}

	svc := service.NewSessionService(db, sessions, nil, nil, nil, nil, nil, nopPublisher{})
	finished, err := svc.Finish(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, model.SessionStatusFinished, finished.Status)
}

func TestSessionService_Finish_AlreadyFinishedIsANoop(t *testing.T) {
	db, _ := newTxDB(t)

	session := &model.Session{ID: uuid.New(), Status: model.SessionStatusFinished}
	sessions := &sessionRepoStub{
		findByID: func(_ context.Context, _ uuid.UUID) (*model.Session, error) { return session, nil },
		updateStatusIf: func(_ context.Context, _ sqlx.ExtContext, _ uuid.UUID, _, _ model.SessionStatus) (bool, error) {
			t.Fatal("finished session must not be written again")
			return false, nil
		},
	}

	svc := service.NewSessionService(db, sessions, nil, nil, nil, nil, nil, nopPublisher{})
	finished, err := svc.Finish(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, model.SessionStatusFinished, finished.Status)
}

func TestSessionService_Finish_FromCancelled(t *testing.T) {
	db, _ := newTxDB(t)

	session := &model.Session{ID: uuid.New(), Status: model.SessionStatusCancelled}
	sessions := &sessionRepoStub{
		findByID: func(_ context.Context, _ uuid.UUID) (*model.Session, error) { return session, nil },
	}

	svc := service.NewSessionService(db, sessions, nil, nil, nil, nil, nil, nopPublisher{})
	_, err := svc.Finish(context.Background(), session.ID)
	require.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestSessionService_Cancel_FromFinished(t *testing.T) {
	db, _ := newTxDB(t)

	session := &model.Session{ID: uuid.New(), Status: model.SessionStatusFinished}
	sessions := &sessionRepoStub{
		findByID: func(_ context.Context, _ uuid.UUID) (*model.Session, error) { return session, nil },
	}

	svc := service.NewSessionService(db, sessions, nil, nil, nil, nil, nil, nopPublisher{})
	_, err := svc.Cancel(context.Background(), session.ID)
	require.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestSessionService_ExpandSchedules_SkipsAlreadyMaterialized(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	classID := uuid.New()
	teacherID := uuid.New()
	schedules := &scheduleRepoStub{
		listActive: func(_ context.Context) ([]model.Schedule, error) {
			return []model.Schedule{{
				ID:        uuid.New(),
				ClassID:   classID,
				DayOfWeek: 2, // Tuesday
				StartTime: "10:00:00",
				EndTime:   "11:30:00",
				Status:    model.ScheduleStatusActive,
			}}, nil
		},
	}
	classes := &classRepoStub{
		findByID: func(_ context.Context, id uuid.UUID) (*model.Class, error) {
			return &model.Class{ID: id, TeacherID: teacherID, Status: model.ClassStatusActive}, nil
		},
	}

	calls := 0
	sessions := &sessionRepoStub{
		createOccurrence: func(_ context.Context, _ sqlx.ExtContext, session *model.Session) (bool, error) {
			calls++
			require.Equal(t, teacherID, session.TeacherID)
			require.Equal(t, model.SessionStatusUpcoming, session.Status)
			require.Equal(t, 90*time.Minute, session.EndAt.Sub(session.StartAt))
			if calls == 1 {
				session.ID = uuid.New()
				return true, nil
			}
			return false, nil
		},
	}
	roomsCreated := 0
	rooms := &roomRepoStub{
		create: func(_ context.Context, _ sqlx.ExtContext, room *model.Room) (*model.Room, error) {
			roomsCreated++
			require.NotEmpty(t, room.RoomCode)
			return room, nil
		},
	}

	// Monday July 6th 2026, two Tuesdays inside the window
	now := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)
	svc := service.NewSessionService(db, sessions, schedules, classes, nil, nil, rooms, nopPublisher{})
	created, err := svc.ExpandSchedules(context.Background(), now, 14*24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Equal(t, 1, created)
	require.Equal(t, 1, roomsCreated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionService_ExpandSchedules_RoomFailureRollsBackSession(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	classID := uuid.New()
	teacherID := uuid.New()
	schedules := &scheduleRepoStub{
		listActive: func(_ context.Context) ([]model.Schedule, error) {
			return []model.Schedule{{
				ID:        uuid.New(),
				ClassID:   classID,
				DayOfWeek: 2,
				StartTime: "10:00:00",
				EndTime:   "11:00:00",
				Status:    model.ScheduleStatusActive,
			}}, nil
		},
	}
	classes := &classRepoStub{
		findByID: func(_ context.Context, id uuid.UUID) (*model.Class, error) {
			return &model.Class{ID: id, TeacherID: teacherID, Status: model.ClassStatusActive}, nil
		},
	}
	sessions := &sessionRepoStub{
		createOccurrence: func(_ context.Context, _ sqlx.ExtContext, session *model.Session) (bool, error) {
			session.ID = uuid.New()
			return true, nil
		},
	}
	rooms := &roomRepoStub{
		create: func(_ context.Context, _ sqlx.ExtContext, _ *model.Room) (*model.Room, error) {
			return nil, errors.New("rooms table unavailable")
		},
	}

	// one Tuesday inside the window
	now := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)
	svc := service.NewSessionService(db, sessions, schedules, classes, nil, nil, rooms, nopPublisher{})
	created, err := svc.ExpandSchedules(context.Background(), now, 7*24*time.Hour)
	require.Error(t, err)
	require.Zero(t, created)
	// the session insert must not outlive the failed room insert
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionService_GetByRoomCode(t *testing.T) {
	db, _ := newTxDB(t)

	session := &model.Session{ID: uuid.New(), Status: model.SessionStatusOngoing}
	sessions := &sessionRepoStub{
		findByRoomCode: func(_ context.Context, code string) (*model.Session, error) {
			require.Equal(t, "room-abc", code)
			return session, nil
		},
	}

	svc := service.NewSessionService(db, sessions, nil, nil, nil, nil, nil, nopPublisher{})
	got, err := svc.GetByRoomCode(context.Background(), "room-abc")
	require.NoError(t, err)
	require.Equal(t, session.ID, got.ID)
}

func TestSessionService_GetByRoomCode_Unknown(t *testing.T) {
	db, _ := newTxDB(t)

	sessions := &sessionRepoStub{
		findByRoomCode: func(_ context.Context, _ string) (*model.Session, error) { return nil, nil },
	}

	svc := service.NewSessionService(db, sessions, nil, nil, nil, nil, nil, nopPublisher{})
	_, err := svc.GetByRoomCode(context.Background(), "no-such-room")
	require.ErrorIs(t, err, service.ErrRoomNotFound)
}

func TestSessionService_ExpandSchedules_IgnoresClosedClasses(t *testing.T) {
	db, _ := newTxDB(t)

	schedules := &scheduleRepoStub{
		listActive: func(_ context.Context) ([]model.Schedule, error) {
			return []model.Schedule{{
				ID:        uuid.New(),
				ClassID:   uuid.New(),
				DayOfWeek: 2,
				StartTime: "10:00:00",
				EndTime:   "11:00:00",
				Status:    model.ScheduleStatusActive,
			}}, nil
		},
	}
	classes := &classRepoStub{
		findByID: func(_ context.Context, id uuid.UUID) (*model.Class, error) {
			return &model.Class{ID: id, Status: model.ClassStatusCompleted}, nil
		},
	}

	now := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)
	svc := service.NewSessionService(db, nil, schedules, classes, nil, nil, nil, nopPublisher{})
	created, err := svc.ExpandSchedules(context.Background(), now, 14*24*time.Hour)
	require.NoError(t, err)
	require.Zero(t, created)
}

func TestSessionService_CreateSchedule_Validation(t *testing.T) {
	db, _ := newTxDB(t)
	svc := service.NewSessionService(db, nil, nil, nil, nil, nil, nil, nopPublisher{})

	_, err := svc.CreateSchedule(context.Background(), &model.Schedule{
		ClassID:   uuid.New(),
		DayOfWeek: 7,
		StartTime: "10:00:00",
		EndTime:   "11:00:00",
	})
	require.ErrorIs(t, err, service.ErrInvalidSchedule)

	_, err = svc.CreateSchedule(context.Background(), &model.Schedule{
		ClassID:   uuid.New(),
		DayOfWeek: 3,
		StartTime: "11:00:00",
		EndTime:   "10:00:00",
	})
	require.ErrorIs(t, err, service.ErrInvalidSchedule)
}

func TestSessionService_CreateSchedule_UnknownClass(t *testing.T) {
	db, _ := newTxDB(t)

	classes := &classRepoStub{
		findByID: func(_ context.Context, _ uuid.UUID) (*model.Class, error) { return nil, nil },
	}
	svc := service.NewSessionService(db, nil, nil, classes, nil, nil, nil, nopPublisher{})

	_, err := svc.CreateSchedule(context.Background(), &model.Schedule{
		ClassID:   uuid.New(),
		DayOfWeek: 3,
		StartTime: "10:00:00",
		EndTime:   "11:00:00",
	})
	require.ErrorIs(t, err, service.ErrClassNotFound)
}
