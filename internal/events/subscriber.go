package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"tutoring-backend/internal/model"
	"tutoring-backend/internal/repository"

	"github.com/nats-io/nats.go"
)

// NotificationSubscriber consumes lifecycle events and persists one
// notification row per affected user. It replaces the push transport of a
// mobile deployment; the rows are what clients poll.
type NotificationSubscriber struct {
	conn *nats.Conn
	repo repository.NotificationRepository
}

func NewNotificationSubscriber(natsURL string, repo repository.NotificationRepository) (*NotificationSubscriber, error) {
	nc, err := nats.Connect(natsURL)

	if err != nil {
		return nil, err
	}

	s := &NotificationSubscriber{conn: nc, repo: repo}

	if _, err := nc.Subscribe(SubjectBookingCreated, s.handleBookingEvent); err != nil {
		return nil, err
	}
	if _, err := nc.Subscribe(SubjectBookingCancelled, s.handleBookingEvent); err != nil {
		return nil, err
	}
	if _, err := nc.Subscribe(SubjectPaymentCreated, s.handlePaymentCreated); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *NotificationSubscriber) handleBookingEvent(msg *nats.Msg) {
	var event BookingEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.Error("Error unmarshalling booking event", "error", err)
		return
	}

	// both sides of the booking get a copy
	s.store(&model.Notification{
		RecipientID:   event.StudentID,
		RecipientRole: "student",
		EventType:     event.EventType,
		Payload:       msg.Data,
	})
	s.store(&model.Notification{
		RecipientID:   event.TeacherID,
		RecipientRole: "teacher",
		EventType:     event.EventType,
		Payload:       msg.Data,
	})
}

func (s *NotificationSubscriber) handlePaymentCreated(msg *nats.Msg) {
	var event PaymentCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.Error("Error unmarshalling payment event", "error", err)
		return
	}

	s.store(&model.Notification{
		RecipientID:   event.TeacherID,
		RecipientRole: "teacher",
		EventType:     event.EventType,
		Payload:       msg.Data,
	})
}

func (s *NotificationSubscriber) store(notification *model.Notification) {
	if err := s.repo.Create(context.Background(), notification); err != nil {
		slog.Error("Failed to persist notification",
			"event_type", notification.EventType, "error", err)
	}
}

func (s *NotificationSubscriber) Close() {
	s.conn.Close()
}
