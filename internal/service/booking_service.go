package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tutoring-backend/internal/events"
	"tutoring-backend/internal/model"
	"tutoring-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrSlotUnavailable   = errors.New("time slot is not available")
	ErrSlotNotFound      = errors.New("time slot not found")
	ErrSlotInPast        = errors.New("time slot is in the past")
	ErrSlotOverlap       = errors.New("time slot overlaps an existing slot")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("illegal status transition")
	ErrInvalidSlotWindow = errors.New("slot end must be after start")
)

type BookingService interface {
	CreateSlot(ctx context.Context, slot *model.TimeSlot) (*model.TimeSlot, error)
	GetSlot(ctx context.Context, slotID uuid.UUID) (*model.TimeSlot, error)
	ListSlots(ctx context.Context, teacherID *uuid.UUID, status *model.SlotStatus) ([]model.TimeSlot, error)
	DeleteSlot(ctx context.Context, slotID uuid.UUID) error

	Create(ctx context.Context, studentID, slotID uuid.UUID, classID *uuid.UUID) (*model.Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error)
	Get(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error)
	GetDetails(ctx context.Context, bookingID uuid.UUID) (*model.BookingDetails, error)
	List(ctx context.Context) ([]model.Booking, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Booking, error)
}

type bookingService struct {
	db          *sqlx.DB
	slotRepo    repository.SlotRepository
	bookingRepo repository.BookingRepository
	sessionRepo repository.SessionRepository
	roomRepo    repository.RoomRepository
	studentRepo repository.StudentRepository
	classRepo   repository.ClassRepository
	publisher   events.EventPublisher
}

func NewBookingService(
	db *sqlx.DB,
	slotRepo repository.SlotRepository,
	bookingRepo repository.BookingRepository,
	sessionRepo repository.SessionRepository,
	roomRepo repository.RoomRepository,
	studentRepo repository.StudentRepository,
	classRepo repository.ClassRepository,
	publisher events.EventPublisher,
) BookingService {
	return &bookingService{
		db:          db,
		slotRepo:    slotRepo,
		bookingRepo: bookingRepo,
		sessionRepo: sessionRepo,
		roomRepo:    roomRepo,
		studentRepo: studentRepo,
		classRepo:   classRepo,
		publisher:   publisher,
	}
}

// CreateSlot publishes a new bookable slot for a teacher. The teacher's slot
// rows are locked while checking for overlap so two concurrent creates cannot
// both pass the check.
func (s *bookingService) CreateSlot(ctx context.Context, slot *model.TimeSlot) (*model.TimeSlot, error) {
	if !slot.EndAt.After(slot.StartAt) {
		return nil, ErrInvalidSlotWindow
	}
	if slot.Status == "" {
		slot.Status = model.SlotStatusAvailable
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	existing, err := s.slotRepo.ListForTeacherLocked(ctx, tx, slot.TeacherID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].Overlaps(slot.StartAt, slot.EndAt) {
			return nil, ErrSlotOverlap
		}
	}

	if _, err := s.slotRepo.Create(ctx, tx, slot); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return slot, nil
}

// Create reserves the slot and records the booking, the spawned session and
// its room in one transaction. The conditional slot update is the race
// arbiter: the losing caller gets ErrSlotUnavailable and nothing is written.
func (s *bookingService) Create(ctx context.Context, studentID, slotID uuid.UUID, classID *uuid.UUID) (*model.Booking, error) {
	slot, err := s.slotRepo.FindByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	if slot.StartAt.Before(time.Now()) {
		return nil, ErrSlotInPast
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	reserved, err := s.slotRepo.Reserve(ctx, tx, slotID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, ErrSlotUnavailable
	}

	// auto-confirm policy: a successful reservation is the confirmation
	booking := &model.Booking{
		TimeSlotID: slotID,
		StudentID:  studentID,
		ClassID:    classID,
		Status:     model.BookingStatusConfirmed,
	}
	if _, err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
		return nil, err
	}

	session := &model.Session{
		ClassID:    classID,
		TeacherID:  slot.TeacherID,
		TimeSlotID: &slot.ID,
		BookingID:  &booking.ID,
		StudentID:  &studentID,
		StartAt:    slot.StartAt,
		EndAt:      slot.EndAt,
		Status:     model.SessionStatusUpcoming,
	}
	if _, err := s.sessionRepo.Create(ctx, tx, session); err != nil {
		return nil, err
	}

	room := &model.Room{
		SessionID: session.ID,
		RoomCode:  newRoomCode(),
	}
	if _, err := s.roomRepo.Create(ctx, tx, room); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	go s.publisher.PublishBookingCreated(booking, slot.TeacherID)

	return booking, nil
}

// Cancel is idempotent: cancelling an already-cancelled booking returns the
// booking unchanged. The slot release is conditional on the slot still being
// booked, and only a still-upcoming session is cancelled along the way.
func (s *bookingService) Cancel(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if booking.Status == model.BookingStatusCancelled {
		return booking, nil
	}
	if !booking.Status.CanTransitionTo(model.BookingStatusCancelled) {
		return nil, ErrInvalidTransition
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	changed, err := s.bookingRepo.UpdateStatusIf(ctx, tx, bookingID, booking.Status, model.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	if !changed {
		// lost a race with another cancel; the end state is the same
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		booking.Status = model.BookingStatusCancelled
		return booking, nil
	}

	if err := s.slotRepo.Release(ctx, tx, booking.TimeSlotID); err != nil {
		return nil, err
	}

	if _, err := s.sessionRepo.CancelUpcomingByBooking(ctx, tx, bookingID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	booking.Status = model.BookingStatusCancelled

	slot, err := s.slotRepo.FindByID(ctx, booking.TimeSlotID)
	if err == nil && slot != nil {
		go s.publisher.PublishBookingCancelled(booking, slot.TeacherID)
	}

	return booking, nil
}

func (s *bookingService) Get(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func (s *bookingService) GetDetails(ctx context.Context, bookingID uuid.UUID) (*model.BookingDetails, error) {
	booking, err := s.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	details := &model.BookingDetails{Booking: *booking}

	student, err := s.studentRepo.FindByID(ctx, booking.StudentID)
	if err != nil {
		return nil, err
	}
	if student != nil {
		details.Student = *student
	}

	slot, err := s.slotRepo.FindByID(ctx, booking.TimeSlotID)
	if err != nil {
		return nil, err
	}
	if slot != nil {
		details.TimeSlot = *slot
	}

	if booking.ClassID != nil {
		class, err := s.classRepo.FindByID(ctx, *booking.ClassID)
		if err != nil {
			return nil, err
		}
		details.Class = class
	}

	return details, nil
}

func (s *bookingService) List(ctx context.Context) ([]model.Booking, error) {
	return s.bookingRepo.List(ctx)
}

func (s *bookingService) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Booking, error) {
	return s.bookingRepo.ListByStudent(ctx, studentID)
}

func (s *bookingService) GetSlot(ctx context.Context, slotID uuid.UUID) (*model.TimeSlot, error) {
	slot, err := s.slotRepo.FindByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	return slot, nil
}

func (s *bookingService) ListSlots(ctx context.Context, teacherID *uuid.UUID, status *model.SlotStatus) ([]model.TimeSlot, error) {
	return s.slotRepo.List(ctx, teacherID, status)
}

// DeleteSlot removes an unbooked slot. Booked slots stay until their booking
// is cancelled.
func (s *bookingService) DeleteSlot(ctx context.Context, slotID uuid.UUID) error {
	slot, err := s.GetSlot(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.Status == model.SlotStatusBooked {
		return ErrSlotUnavailable
	}
	return s.slotRepo.Delete(ctx, slotID)
}

func newRoomCode() string {
	return "room-" + uuid.NewString()
}
