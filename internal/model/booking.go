package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// CanTransitionTo encodes the legal booking transitions. Cancelled is
// terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled
	default:
		return false
	}
}

// Booking is a student's claim on a time slot. At most one non-cancelled
// booking exists per slot; the slot status enforces that, not a uniqueness
// check here.
type Booking struct {
	ID         uuid.UUID     `db:"id" json:"id"`
	TimeSlotID uuid.UUID     `db:"time_slot_id" json:"time_slot_id"`
	StudentID  uuid.UUID     `db:"student_id" json:"student_id"`
	ClassID    *uuid.UUID    `db:"class_id" json:"class_id,omitempty"`
	Status     BookingStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}

type BookingDetails struct {
	Booking
	Student  Student  `json:"student"`
	TimeSlot TimeSlot `json:"time_slot"`
	Class    *Class   `json:"class,omitempty"`
}
