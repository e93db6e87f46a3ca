package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"tutoring-backend/internal/model"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	SubjectBookingCreated   = "booking.created"
	SubjectBookingCancelled = "booking.cancelled"
	// SubjectSessionFinished is emitted by the operator finish path only;
	// the time-driven sweep finishes sessions in bulk without publishing.
	SubjectSessionFinished = "session.finished"
	SubjectPaymentCreated  = "payment.created"
)

type EventPublisher interface {
	PublishBookingCreated(booking *model.Booking, teacherID uuid.UUID) error
	PublishBookingCancelled(booking *model.Booking, teacherID uuid.UUID) error
	PublishSessionFinished(session *model.Session) error
	PublishPaymentCreated(payment *model.Payment) error
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL)

	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

type BookingEvent struct {
	EventType  string    `json:"event_type"`
	BookingID  uuid.UUID `json:"booking_id"`
	TimeSlotID uuid.UUID `json:"time_slot_id"`
	StudentID  uuid.UUID `json:"student_id"`
	TeacherID  uuid.UUID `json:"teacher_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type SessionFinishedEvent struct {
	EventType string     `json:"event_type"`
	SessionID uuid.UUID  `json:"session_id"`
	TeacherID uuid.UUID  `json:"teacher_id"`
	StudentID *uuid.UUID `json:"student_id,omitempty"`
	EndAt     time.Time  `json:"end_at"`
}

type PaymentCreatedEvent struct {
	EventType   string    `json:"event_type"`
	PaymentID   uuid.UUID `json:"payment_id"`
	TeacherID   uuid.UUID `json:"teacher_id"`
	Period      string    `json:"period"`
	AmountCents int64     `json:"amount_cents"`
}

func (p *NatsPublisher) publish(subject string, event interface{}) error {
	eventJSON, err := json.Marshal(event)

	if err != nil {
		slog.Error("Error marshalling event JSON", "subject", subject, "error", err)
		return err
	}

	if err := p.conn.Publish(subject, eventJSON); err != nil {
		slog.Error("Error publishing to NATS", "subject", subject, "error", err)
		return err
	}

	return nil
}

func (p *NatsPublisher) PublishBookingCreated(booking *model.Booking, teacherID uuid.UUID) error {
	return p.publish(SubjectBookingCreated, BookingEvent{
		EventType:  SubjectBookingCreated,
		BookingID:  booking.ID,
		TimeSlotID: booking.TimeSlotID,
		StudentID:  booking.StudentID,
		TeacherID:  teacherID,
		OccurredAt: time.Now(),
	})
}

func (p *NatsPublisher) PublishBookingCancelled(booking *model.Booking, teacherID uuid.UUID) error {
	return p.publish(SubjectBookingCancelled, BookingEvent{
		EventType:  SubjectBookingCancelled,
		BookingID:  booking.ID,
		TimeSlotID: booking.TimeSlotID,
		StudentID:  booking.StudentID,
		TeacherID:  teacherID,
		OccurredAt: time.Now(),
	})
}

func (p *NatsPublisher) PublishSessionFinished(session *model.Session) error {
	return p.publish(SubjectSessionFinished, SessionFinishedEvent{
		EventType: SubjectSessionFinished,
		SessionID: session.ID,
		TeacherID: session.TeacherID,
		StudentID: session.StudentID,
		EndAt:     session.EndAt,
	})
}

func (p *NatsPublisher) PublishPaymentCreated(payment *model.Payment) error {
	return p.publish(SubjectPaymentCreated, PaymentCreatedEvent{
		EventType:   SubjectPaymentCreated,
		PaymentID:   payment.ID,
		TeacherID:   payment.TeacherID,
		Period:      payment.Period,
		AmountCents: payment.AmountCents,
	})
}
