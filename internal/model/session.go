package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusUpcoming  SessionStatus = "upcoming"
	SessionStatusOngoing   SessionStatus = "ongoing"
	SessionStatusFinished  SessionStatus = "finished"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// Terminal reports whether no further transition may leave the status.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusFinished || s == SessionStatusCancelled
}

// CanTransitionTo encodes the session state machine:
// upcoming -> ongoing -> finished, with cancellation allowed only from
// upcoming and an operator finish allowed from ongoing.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	switch s {
	case SessionStatusUpcoming:
		return next == SessionStatusOngoing || next == SessionStatusCancelled
	case SessionStatusOngoing:
		return next == SessionStatusFinished
	default:
		return false
	}
}

// Session is one concrete occurrence of teaching, spawned either by a booking
// (ad hoc) or by expanding a schedule occurrence (recurring), never both. The
// booking link is non-owning: deleting the booking clears it and the session
// survives.
type Session struct {
	ID                  uuid.UUID     `db:"id" json:"id"`
	ClassID             *uuid.UUID    `db:"class_id" json:"class_id,omitempty"`
	TeacherID           uuid.UUID     `db:"teacher_id" json:"teacher_id"`
	TimeSlotID          *uuid.UUID    `db:"time_slot_id" json:"time_slot_id,omitempty"`
	BookingID           *uuid.UUID    `db:"booking_id" json:"booking_id,omitempty"`
	StudentID           *uuid.UUID    `db:"student_id" json:"student_id,omitempty"`
	StartAt             time.Time     `db:"start_at" json:"start_at"`
	EndAt               time.Time     `db:"end_at" json:"end_at"`
	Status              SessionStatus `db:"status" json:"status"`
	RecordingURL        *string       `db:"recording_url" json:"recording_url,omitempty"`
	RecordingPublicID   *string       `db:"recording_public_id" json:"recording_public_id,omitempty"`
	RecordingUploadedAt *time.Time    `db:"recording_uploaded_at" json:"recording_uploaded_at,omitempty"`
	CreatedAt           time.Time     `db:"created_at" json:"created_at"`
}

type SessionDetails struct {
	Session
	Class   *Class   `json:"class,omitempty"`
	Teacher Teacher  `json:"teacher"`
	Booking *Booking `json:"booking,omitempty"`
}
