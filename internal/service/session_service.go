package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tutoring-backend/internal/events"
	"tutoring-backend/internal/model"
	"tutoring-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrRoomNotFound     = errors.New("room not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrInvalidSchedule  = errors.New("schedule has an invalid day or time window")
)

type SessionService interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*model.Session, error)
	GetDetails(ctx context.Context, sessionID uuid.UUID) (*model.SessionDetails, error)
	List(ctx context.Context) ([]model.Session, error)
	ListDetailsByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.SessionDetails, error)
	ListDetailsByStudent(ctx context.Context, studentID uuid.UUID) ([]model.SessionDetails, error)
	Finish(ctx context.Context, sessionID uuid.UUID) (*model.Session, error)
	Cancel(ctx context.Context, sessionID uuid.UUID) (*model.Session, error)
	// GetByRoomCode resolves the session that owns a room code.
	GetByRoomCode(ctx context.Context, roomCode string) (*model.Session, error)
	AttachRecording(ctx context.Context, roomCode, url, publicID string) (*model.Session, error)
	// ExpandSchedules materializes sessions for every active schedule over
	// the look-ahead window starting at now. Safe to re-run.
	ExpandSchedules(ctx context.Context, now time.Time, window time.Duration) (int, error)
	// SweepStatuses applies the time-driven transitions as of now. Sweep
	// transitions are bulk updates and do not emit session.finished; only
	// the operator Finish path publishes.
	SweepStatuses(ctx context.Context, now time.Time) error

	Update(ctx context.Context, session *model.Session) (*model.Session, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error

	CreateSchedule(ctx context.Context, schedule *model.Schedule) (*model.Schedule, error)
	GetSchedule(ctx context.Context, scheduleID uuid.UUID) (*model.Schedule, error)
	ListSchedules(ctx context.Context) ([]model.Schedule, error)
	UpdateSchedule(ctx context.Context, schedule *model.Schedule) (*model.Schedule, error)
	DeleteSchedule(ctx context.Context, scheduleID uuid.UUID) error

	GetRoom(ctx context.Context, roomID uuid.UUID) (*model.Room, error)
	ListRooms(ctx context.Context) ([]model.Room, error)
	DeleteRoom(ctx context.Context, roomID uuid.UUID) error
}

type sessionService struct {
	db           *sqlx.DB
	sessionRepo  repository.SessionRepository
	scheduleRepo repository.ScheduleRepository
	classRepo    repository.ClassRepository
	teacherRepo  repository.TeacherRepository
	bookingRepo  repository.BookingRepository
	roomRepo     repository.RoomRepository
	publisher    events.EventPublisher
}

func NewSessionService(
	db *sqlx.DB,
	sessionRepo repository.SessionRepository,
	scheduleRepo repository.ScheduleRepository,
	classRepo repository.ClassRepository,
	teacherRepo repository.TeacherRepository,
	bookingRepo repository.BookingRepository,
	roomRepo repository.RoomRepository,
	publisher events.EventPublisher,
) SessionService {
	return &sessionService{
		db:           db,
		sessionRepo:  sessionRepo,
		scheduleRepo: scheduleRepo,
		classRepo:    classRepo,
		teacherRepo:  teacherRepo,
		bookingRepo:  bookingRepo,
		roomRepo:     roomRepo,
		publisher:    publisher,
	}
}

func (s *sessionService) Get(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionService) GetDetails(ctx context.Context, sessionID uuid.UUID) (*model.SessionDetails, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	details, err := s.expand(ctx, []model.Session{*session})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *sessionService) List(ctx context.Context) ([]model.Session, error) {
	return s.sessionRepo.List(ctx)
}

func (s *sessionService) ListDetailsByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.SessionDetails, error) {
	sessions, err := s.sessionRepo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, sessions)
}

func (s *sessionService) ListDetailsByStudent(ctx context.Context, studentID uuid.UUID) ([]model.SessionDetails, error) {
	sessions, err := s.sessionRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, sessions)
}

// expand batches the related-entity lookups for the expanded read shape.
func (s *sessionService) expand(ctx context.Context, sessions []model.Session) ([]model.SessionDetails, error) {
	teacherIDs := make([]uuid.UUID, 0, len(sessions))
	classIDs := make([]uuid.UUID, 0, len(sessions))
	bookingIDs := make([]uuid.UUID, 0, len(sessions))
	for i := range sessions {
		teacherIDs = append(teacherIDs, sessions[i].TeacherID)
		if sessions[i].ClassID != nil {
			classIDs = append(classIDs, *sessions[i].ClassID)
		}
		if sessions[i].BookingID != nil {
			bookingIDs = append(bookingIDs, *sessions[i].BookingID)
		}
	}

	teachers, err := s.teacherRepo.FindByIDs(ctx, teacherIDs)
	if err != nil {
		return nil, err
	}
	classes, err := s.classRepo.FindByIDs(ctx, classIDs)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookingRepo.FindByIDs(ctx, bookingIDs)
	if err != nil {
		return nil, err
	}

	details := make([]model.SessionDetails, len(sessions))
	for i := range sessions {
		details[i] = model.SessionDetails{Session: sessions[i]}
		details[i].Teacher = teachers[sessions[i].TeacherID]
		if sessions[i].ClassID != nil {
			if class, ok := classes[*sessions[i].ClassID]; ok {
				details[i].Class = &class
			}
		}
		if sessions[i].BookingID != nil {
			if booking, ok := bookings[*sessions[i].BookingID]; ok {
				details[i].Booking = &booking
			}
		}
	}
	return details, nil
}

// Finish is the operator path for ongoing -> finished. Finishing a finished
// session is treated as already done; any other state is an illegal move.
func (s *sessionService) Finish(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionStatusFinished {
		return session, nil
	}
	if !session.Status.CanTransitionTo(model.SessionStatusFinished) {
		return nil, ErrInvalidTransition
	}

	changed, err := s.sessionRepo.UpdateStatusIf(ctx, s.db, sessionID, session.Status, model.SessionStatusFinished)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrInvalidTransition
	}

	session.Status = model.SessionStatusFinished
	go s.publisher.PublishSessionFinished(session)
	return session, nil
}

// Cancel is the operator path for upcoming -> cancelled.
func (s *sessionService) Cancel(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionStatusCancelled {
		return session, nil
	}
	if !session.Status.CanTransitionTo(model.SessionStatusCancelled) {
		return nil, ErrInvalidTransition
	}

	changed, err := s.sessionRepo.UpdateStatusIf(ctx, s.db, sessionID, session.Status, model.SessionStatusCancelled)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrInvalidTransition
	}

	session.Status = model.SessionStatusCancelled
	return session, nil
}

func (s *sessionService) GetByRoomCode(ctx context.Context, roomCode string) (*model.Session, error) {
	session, err := s.sessionRepo.FindByRoomCode(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrRoomNotFound
	}
	return session, nil
}

// AttachRecording writes the recording metadata onto the session that owns
// the room. Re-uploads overwrite the previous metadata.
func (s *sessionService) AttachRecording(ctx context.Context, roomCode, url, publicID string) (*model.Session, error) {
	session, err := s.GetByRoomCode(ctx, roomCode)
	if err != nil {
		return nil, err
	}

	uploadedAt := time.Now()
	if err := s.sessionRepo.SetRecording(ctx, session.ID, url, publicID, uploadedAt); err != nil {
		return nil, err
	}

	session.RecordingURL = &url
	session.RecordingPublicID = &publicID
	session.RecordingUploadedAt = &uploadedAt
	return session, nil
}

func (s *sessionService) ExpandSchedules(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	schedules, err := s.scheduleRepo.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	until := now.Add(window)
	for i := range schedules {
		schedule := &schedules[i]

		duration := schedule.Duration()
		if duration <= 0 {
			slog.Warn("Skipping schedule with invalid time window", "schedule_id", schedule.ID)
			continue
		}

		class, err := s.classRepo.FindByID(ctx, schedule.ClassID)
		if err != nil {
			return created, err
		}
		if class == nil || class.Status == model.ClassStatusInactive || class.Status == model.ClassStatusCompleted {
			continue
		}

		for _, startAt := range schedule.Occurrences(now, until) {
			session := &model.Session{
				ClassID:   &schedule.ClassID,
				TeacherID: class.TeacherID,
				StartAt:   startAt,
				EndAt:     startAt.Add(duration),
				Status:    model.SessionStatusUpcoming,
			}

			inserted, err := s.materializeOccurrence(ctx, session)
			if err != nil {
				return created, err
			}
			if inserted {
				created++
			}
		}
	}

	return created, nil
}

// materializeOccurrence writes a schedule occurrence and its room in one
// transaction, so a failed room insert cannot leave a committed session that
// later runs would skip as already materialized.
func (s *sessionService) materializeOccurrence(ctx context.Context, session *model.Session) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	inserted, err := s.sessionRepo.CreateOccurrence(ctx, tx, session)
	if err != nil {
		return false, err
	}
	if !inserted {
		return false, nil // already materialized by an earlier run
	}

	room := &model.Room{SessionID: session.ID, RoomCode: newRoomCode()}
	if _, err := s.roomRepo.Create(ctx, tx, room); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *sessionService) SweepStatuses(ctx context.Context, now time.Time) error {
	if _, err := s.sessionRepo.MarkOngoing(ctx, now); err != nil {
		return err
	}
	if _, err := s.sessionRepo.MarkFinished(ctx, now); err != nil {
		return err
	}
	return nil
}

// Update rewrites a session's time window. Status changes go through Finish
// and Cancel, never through here.
func (s *sessionService) Update(ctx context.Context, session *model.Session) (*model.Session, error) {
	existing, err := s.Get(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	session.Status = existing.Status

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return err
	}
	return s.sessionRepo.Delete(ctx, sessionID)
}

func validateSchedule(schedule *model.Schedule) error {
	if schedule.DayOfWeek < 0 || schedule.DayOfWeek > 6 {
		return ErrInvalidSchedule
	}
	if schedule.Duration() <= 0 {
		return ErrInvalidSchedule
	}
	return nil
}

func (s *sessionService) CreateSchedule(ctx context.Context, schedule *model.Schedule) (*model.Schedule, error) {
	if schedule.Status == "" {
		schedule.Status = model.ScheduleStatusActive
	}
	if err := validateSchedule(schedule); err != nil {
		return nil, err
	}

	class, err := s.classRepo.FindByID(ctx, schedule.ClassID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrClassNotFound
	}

	return s.scheduleRepo.Create(ctx, schedule)
}

func (s *sessionService) GetSchedule(ctx context.Context, scheduleID uuid.UUID) (*model.Schedule, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}
	return schedule, nil
}

func (s *sessionService) ListSchedules(ctx context.Context) ([]model.Schedule, error) {
	return s.scheduleRepo.List(ctx)
}

func (s *sessionService) UpdateSchedule(ctx context.Context, schedule *model.Schedule) (*model.Schedule, error) {
	if _, err := s.GetSchedule(ctx, schedule.ID); err != nil {
		return nil, err
	}
	if err := validateSchedule(schedule); err != nil {
		return nil, err
	}
	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *sessionService) DeleteSchedule(ctx context.Context, scheduleID uuid.UUID) error {
	if _, err := s.GetSchedule(ctx, scheduleID); err != nil {
		return err
	}
	return s.scheduleRepo.Delete(ctx, scheduleID)
}

func (s *sessionService) GetRoom(ctx context.Context, roomID uuid.UUID) (*model.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (s *sessionService) ListRooms(ctx context.Context) ([]model.Room, error) {
	return s.roomRepo.List(ctx)
}

func (s *sessionService) DeleteRoom(ctx context.Context, roomID uuid.UUID) error {
	if _, err := s.GetRoom(ctx, roomID); err != nil {
		return err
	}
	return s.roomRepo.Delete(ctx, roomID)
}
