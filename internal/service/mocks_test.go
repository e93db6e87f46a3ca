package service_test

import (
	"context"
	"testing"
	"time"

	"tutoring-backend/internal/model"
	"tutoring-backend/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// newTxDB returns a sqlmock-backed sqlx.DB for services that open
// transactions. The repositories themselves are stubbed, so the mock only
// sees Begin/Commit/Rollback.
func newTxDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

// Stubs embed their interface so each test only fills in the methods it
// exercises. An unexpected call panics on the nil embedded interface, which
// is what we want.

type slotRepoStub struct {
	repository.SlotRepository
	findByID             func(ctx context.Context, id uuid.UUID) (*model.TimeSlot, error)
	create               func(ctx context.Context, q sqlx.ExtContext, slot *model.TimeSlot) (*model.TimeSlot, error)
	listForTeacherLocked func(ctx context.Context, q sqlx.ExtContext, teacherID uuid.UUID) ([]model.TimeSlot, error)
	reserve              func(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (bool, error)
	release              func(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) error
	deleteFn             func(ctx context.Context, id uuid.UUID) error
}

func (s *slotRepoStub) FindByID(ctx context.Context, id uuid.UUID) (*model.TimeSlot, error) {
	return s.findByID(ctx, id)
}

func (s *slotRepoStub) Create(ctx context.Context, q sqlx.ExtContext, slot *model.TimeSlot) (*model.TimeSlot, error) {
	return s.create(ctx, q, slot)
}

func (s *slotRepoStub) ListForTeacherLocked(ctx context.Context, q sqlx.ExtContext, teacherID uuid.UUID) ([]model.TimeSlot, error) {
	return s.listForTeacherLocked(ctx, q, teacherID)
}

func (s *slotRepoStub) Reserve(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (bool, error) {
	return s.reserve(ctx, q, id)
}

func (s *slotRepoStub) Release(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) error {
	return s.release(ctx, q, id)
}

func (s *slotRepoStub) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

type bookingRepoStub struct {
	repository.BookingRepository
	create         func(ctx context.Context, q sqlx.ExtContext, booking *model.Booking) (*model.Booking, error)
	findByID       func(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	updateStatusIf func(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, from, to model.BookingStatus) (bool, error)
}

func (s *bookingRepoStub) Create(ctx context.Context, q sqlx.ExtContext, booking *model.Booking) (*model.Booking, error) {
	return s.create(ctx, q, booking)
}

func (s *bookingRepoStub) FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return s.findByID(ctx, id)
}

func (s *bookingRepoStub) UpdateStatusIf(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, from, to model.BookingStatus) (bool, error) {
	return s.updateStatusIf(ctx, q, id, from, to)
}

type sessionRepoStub struct {
	repository.SessionRepository
	create                  func(ctx context.Context, q sqlx.ExtContext, session *model.Session) (*model.Session, error)
	createOccurrence        func(ctx context.Context, q sqlx.ExtContext, session *model.Session) (bool, error)
	findByID                func(ctx context.Context, id uuid.UUID) (*model.Session, error)
	findByRoomCode          func(ctx context.Context, roomCode string) (*model.Session, error)
	listFinishedInPeriod    func(ctx context.Context, q sqlx.ExtContext, teacherID uuid.UUID, from, until time.Time) ([]model.Session, error)
	updateStatusIf          func(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, from, to model.SessionStatus) (bool, error)
	cancelUpcomingByBooking func(ctx context.Context, q sqlx.ExtContext, bookingID uuid.UUID) (int64, error)
}

func (s *sessionRepoStub) Create(ctx context.Context, q sqlx.ExtContext, session *model.Session) (*model.Session, error) {
	return s.create(ctx, q, session)
}

func (s *sessionRepoStub) CreateOccurrence(ctx context.Context, q sqlx.ExtContext, session *model.Session) (bool, error) {
	return s.createOccurrence(ctx, q, session)
}

func (s *sessionRepoStub) FindByRoomCode(ctx context.Context, roomCode string) (*model.Session, error) {
	return s.findByRoomCode(ctx, roomCode)
}

func (s *sessionRepoStub) FindByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	return s.findByID(ctx, id)
}

func (s *sessionRepoStub) ListFinishedInPeriod(ctx context.Context, q sqlx.ExtContext, teacherID uuid.UUID, from, until time.Time) ([]model.Session, error) {
	return s.listFinishedInPeriod(ctx, q, teacherID, from, until)
}

func (s *sessionRepoStub) UpdateStatusIf(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, from, to model.SessionStatus) (bool, error) {
	return s.updateStatusIf(ctx, q, id, from, to)
}

func (s *sessionRepoStub) CancelUpcomingByBooking(ctx context.Context, q sqlx.ExtContext, bookingID uuid.UUID) (int64, error) {
	return s.cancelUpcomingByBooking(ctx, q, bookingID)
}

type roomRepoStub struct {
	repository.RoomRepository
	create func(ctx context.Context, q sqlx.ExtContext, room *model.Room) (*model.Room, error)
}

func (s *roomRepoStub) Create(ctx context.Context, q sqlx.ExtContext, room *model.Room) (*model.Room, error) {
	return s.create(ctx, q, room)
}

type classRepoStub struct {
	repository.ClassRepository
	createFn       func(ctx context.Context, class *model.Class) (*model.Class, error)
	findByID       func(ctx context.Context, id uuid.UUID) (*model.Class, error)
	findByIDLocked func(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (*model.Class, error)
	countMembers   func(ctx context.Context, q sqlx.ExtContext, classID uuid.UUID) (int, error)
	addMember      func(ctx context.Context, q sqlx.ExtContext, classID, studentID uuid.UUID) (*model.InClass, error)
	removeMember   func(ctx context.Context, q sqlx.ExtContext, classID, studentID uuid.UUID) (bool, error)
	updateStatus   func(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, status model.ClassStatus) error
}

func (s *classRepoStub) Create(ctx context.Context, class *model.Class) (*model.Class, error) {
	return s.createFn(ctx, class)
}

func (s *classRepoStub) FindByID(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	return s.findByID(ctx, id)
}

func (s *classRepoStub) FindByIDLocked(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (*model.Class, error) {
	return s.findByIDLocked(ctx, q, id)
}

func (s *classRepoStub) CountMembers(ctx context.Context, q sqlx.ExtContext, classID uuid.UUID) (int, error) {
	return s.countMembers(ctx, q, classID)
}

func (s *classRepoStub) AddMember(ctx context.Context, q sqlx.ExtContext, classID, studentID uuid.UUID) (*model.InClass, error) {
	return s.addMember(ctx, q, classID, studentID)
}

func (s *classRepoStub) RemoveMember(ctx context.Context, q sqlx.ExtContext, classID, studentID uuid.UUID) (bool, error) {
	return s.removeMember(ctx, q, classID, studentID)
}

func (s *classRepoStub) UpdateStatus(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, status model.ClassStatus) error {
	return s.updateStatus(ctx, q, id, status)
}

type scheduleRepoStub struct {
	repository.ScheduleRepository
	createFn   func(ctx context.Context, schedule *model.Schedule) (*model.Schedule, error)
	findByID   func(ctx context.Context, id uuid.UUID) (*model.Schedule, error)
	listActive func(ctx context.Context) ([]model.Schedule, error)
}

func (s *scheduleRepoStub) Create(ctx context.Context, schedule *model.Schedule) (*model.Schedule, error) {
	return s.createFn(ctx, schedule)
}

func (s *scheduleRepoStub) FindByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	return s.findByID(ctx, id)
}

func (s *scheduleRepoStub) ListActive(ctx context.Context) ([]model.Schedule, error) {
	return s.listActive(ctx)
}

type feeRepoStub struct {
	repository.FeeRepository
	create                func(ctx context.Context, fee *model.Fee) (*model.Fee, error)
	findByTeacherAndClass func(ctx context.Context, q sqlx.ExtContext, teacherID, classID uuid.UUID) (*model.Fee, error)
	findByTeacherAndSlot  func(ctx context.Context, q sqlx.ExtContext, teacherID, slotID uuid.UUID) (*model.Fee, error)
}

func (s *feeRepoStub) Create(ctx context.Context, fee *model.Fee) (*model.Fee, error) {
	return s.create(ctx, fee)
}

func (s *feeRepoStub) FindByTeacherAndClass(ctx context.Context, q sqlx.ExtContext, teacherID, classID uuid.UUID) (*model.Fee, error) {
	return s.findByTeacherAndClass(ctx, q, teacherID, classID)
}

func (s *feeRepoStub) FindByTeacherAndSlot(ctx context.Context, q sqlx.ExtContext, teacherID, slotID uuid.UUID) (*model.Fee, error) {
	return s.findByTeacherAndSlot(ctx, q, teacherID, slotID)
}

type paymentRepoStub struct {
	repository.PaymentRepository
	create                 func(ctx context.Context, q sqlx.ExtContext, payment *model.Payment) (*model.Payment, error)
	addSessions            func(ctx context.Context, q sqlx.ExtContext, paymentID uuid.UUID, sessionIDs []uuid.UUID) error
	findByTeacherAndPeriod func(ctx context.Context, teacherID uuid.UUID, period string) (*model.Payment, error)
}

func (s *paymentRepoStub) Create(ctx context.Context, q sqlx.ExtContext, payment *model.Payment) (*model.Payment, error) {
	return s.create(ctx, q, payment)
}

func (s *paymentRepoStub) AddSessions(ctx context.Context, q sqlx.ExtContext, paymentID uuid.UUID, sessionIDs []uuid.UUID) error {
	return s.addSessions(ctx, q, paymentID, sessionIDs)
}

func (s *paymentRepoStub) FindByTeacherAndPeriod(ctx context.Context, teacherID uuid.UUID, period string) (*model.Payment, error) {
	return s.findByTeacherAndPeriod(ctx, teacherID, period)
}

type studentRepoStub struct {
	repository.StudentRepository
	createFn       func(ctx context.Context, student *model.Student) (*model.Student, error)
	findByEmail    func(ctx context.Context, email string) (*model.Student, error)
	updatePassword func(ctx context.Context, id uuid.UUID, hash string) error
}

func (s *studentRepoStub) Create(ctx context.Context, student *model.Student) (*model.Student, error) {
	return s.createFn(ctx, student)
}

func (s *studentRepoStub) FindByEmail(ctx context.Context, email string) (*model.Student, error) {
	return s.findByEmail(ctx, email)
}

func (s *studentRepoStub) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return s.updatePassword(ctx, id, hash)
}

type teacherRepoStub struct {
	repository.TeacherRepository
	createFn       func(ctx context.Context, teacher *model.Teacher) (*model.Teacher, error)
	findByEmail    func(ctx context.Context, email string) (*model.Teacher, error)
	updatePassword func(ctx context.Context, id uuid.UUID, hash string) error
}

func (s *teacherRepoStub) Create(ctx context.Context, teacher *model.Teacher) (*model.Teacher, error) {
	return s.createFn(ctx, teacher)
}

func (s *teacherRepoStub) FindByEmail(ctx context.Context, email string) (*model.Teacher, error) {
	return s.findByEmail(ctx, email)
}

func (s *teacherRepoStub) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return s.updatePassword(ctx, id, hash)
}

// nopPublisher satisfies events.EventPublisher without touching NATS. It is
// stateless so the fire-and-forget publish goroutines cannot race the test.
type nopPublisher struct{}

func (nopPublisher) PublishBookingCreated(*model.Booking, uuid.UUID) error   { return nil }
func (nopPublisher) PublishBookingCancelled(*model.Booking, uuid.UUID) error { return nil }
func (nopPublisher) PublishSessionFinished(*model.Session) error             { return nil }
func (nopPublisher) PublishPaymentCreated(*model.Payment) error              { return nil }
