package service

import (
	"context"
	"errors"
	"fmt"

	"tutoring-backend/internal/events"
	"tutoring-backend/internal/model"
	"tutoring-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrFeeScope        = errors.New("fee must reference exactly one of class or time slot")
	ErrDuplicateFee    = errors.New("fee already set for this scope")
	ErrFeeNotFound     = errors.New("fee not found")
	ErrInvalidPeriod   = errors.New("period must be formatted as YYYY-MM")
	ErrAlreadyPaid     = errors.New("payment already exists for this period")
	ErrPaymentNotFound = errors.New("payment not found")
)

type PayoutService interface {
	SetFee(ctx context.Context, fee *model.Fee) (*model.Fee, error)
	GetFee(ctx context.Context, feeID uuid.UUID) (*model.Fee, error)
	ListFees(ctx context.Context) ([]model.Fee, error)
	ListFeesByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Fee, error)
	DeleteFee(ctx context.Context, feeID uuid.UUID) error

	RunPayout(ctx context.Context, teacherID uuid.UUID, period string) (*model.Payment, error)
	GetPayment(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error)
	ListPayments(ctx context.Context) ([]model.Payment, error)
	ListPaymentsByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Payment, error)
	PaymentSessions(ctx context.Context, paymentID uuid.UUID) ([]uuid.UUID, error)
}

type payoutService struct {
	db          *sqlx.DB
	feeRepo     repository.FeeRepository
	paymentRepo repository.PaymentRepository
	sessionRepo repository.SessionRepository
	publisher   events.EventPublisher
}

func NewPayoutService(
	db *sqlx.DB,
	feeRepo repository.FeeRepository,
	paymentRepo repository.PaymentRepository,
	sessionRepo repository.SessionRepository,
	publisher events.EventPublisher,
) PayoutService {
	return &payoutService{
		db:          db,
		feeRepo:     feeRepo,
		paymentRepo: paymentRepo,
		sessionRepo: sessionRepo,
		publisher:   publisher,
	}
}

// SetFee records the rate a teacher earns for one class or one slot. The
// scope must name exactly one of the two; the partial unique indexes reject a
// second fee for the same (teacher, scope) pair.
func (s *payoutService) SetFee(ctx context.Context, fee *model.Fee) (*model.Fee, error) {
	if (fee.ClassID == nil) == (fee.TimeSlotID == nil) {
		return nil, ErrFeeScope
	}
	if fee.AmountCents < 0 {
		return nil, fmt.Errorf("fee amount must not be negative")
	}

	created, err := s.feeRepo.Create(ctx, fee)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateFee
		}
		return nil, fmt.Errorf("failed to create fee: %w", err)
	}
	return created, nil
}

func (s *payoutService) GetFee(ctx context.Context, feeID uuid.UUID) (*model.Fee, error) {
	fee, err := s.feeRepo.FindByID(ctx, feeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find fee: %w", err)
	}
	if fee == nil {
		return nil, ErrFeeNotFound
	}
	return fee, nil
}

func (s *payoutService) ListFees(ctx context.Context) ([]model.Fee, error) {
	return s.feeRepo.List(ctx)
}

func (s *payoutService) ListFeesByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Fee, error) {
	return s.feeRepo.ListByTeacher(ctx, teacherID)
}

func (s *payoutService) DeleteFee(ctx context.Context, feeID uuid.UUID) error {
	fee, err := s.feeRepo.FindByID(ctx, feeID)
	if err != nil {
		return fmt.Errorf("failed to find fee: %w", err)
	}
	if fee == nil {
		return ErrFeeNotFound
	}
	return s.feeRepo.Delete(ctx, feeID)
}

// RunPayout aggregates a teacher's finished sessions for one calendar month
// into a single payment row. UNIQUE(teacher_id, period) makes the run
// idempotent: a second run for the same month fails the insert and writes
// nothing.
func (s *payoutService) RunPayout(ctx context.Context, teacherID uuid.UUID, period string) (*model.Payment, error) {
	from, until, err := model.PeriodBounds(period)
	if err != nil {
		return nil, ErrInvalidPeriod
	}

	// the unique index on (teacher_id, period) remains the arbiter under races
	existing, err := s.paymentRepo.FindByTeacherAndPeriod(ctx, teacherID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing payment: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyPaid
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sessions, err := s.sessionRepo.ListFinishedInPeriod(ctx, tx, teacherID, from, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list finished sessions: %w", err)
	}

	var total int64
	for i := range sessions {
		amount, err := s.sessionFee(ctx, tx, &sessions[i])
		if err != nil {
			return nil, err
		}
		total += amount
	}

	payment := &model.Payment{
		TeacherID:   teacherID,
		Period:      period,
		AmountCents: total,
		Status:      model.PaymentStatusPending,
	}
	if len(sessions) > 0 {
		payment.SessionID = &sessions[0].ID
	}

	created, err := s.paymentRepo.Create(ctx, tx, payment)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrAlreadyPaid
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	if len(sessions) > 0 {
		ids := make([]uuid.UUID, len(sessions))
		for i := range sessions {
			ids[i] = sessions[i].ID
		}
		if err := s.paymentRepo.AddSessions(ctx, tx, created.ID, ids); err != nil {
			return nil, fmt.Errorf("failed to link payment sessions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	go s.publisher.PublishPaymentCreated(created)

	return created, nil
}

// sessionFee resolves the rate covering one session. A class session uses the
// teacher's class fee, an ad-hoc session the slot fee. Sessions with no fee
// on record contribute zero rather than failing the whole run.
func (s *payoutService) sessionFee(ctx context.Context, q sqlx.ExtContext, session *model.Session) (int64, error) {
	switch {
	case session.ClassID != nil:
		fee, err := s.feeRepo.FindByTeacherAndClass(ctx, q, session.TeacherID, *session.ClassID)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve class fee: %w", err)
		}
		if fee == nil {
			return 0, nil
		}
		return fee.AmountCents, nil
	case session.TimeSlotID != nil:
		fee, err := s.feeRepo.FindByTeacherAndSlot(ctx, q, session.TeacherID, *session.TimeSlotID)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve slot fee: %w", err)
		}
		if fee == nil {
			return 0, nil
		}
		return fee.AmountCents, nil
	default:
		return 0, nil
	}
}

func (s *payoutService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *payoutService) ListPayments(ctx context.Context) ([]model.Payment, error) {
	return s.paymentRepo.List(ctx)
}

func (s *payoutService) ListPaymentsByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Payment, error) {
	return s.paymentRepo.ListByTeacher(ctx, teacherID)
}

func (s *payoutService) PaymentSessions(ctx context.Context, paymentID uuid.UUID) ([]uuid.UUID, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return s.paymentRepo.ListSessionIDs(ctx, paymentID)
}
