package model

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
	SlotStatusExpired   SlotStatus = "expired"
)

// TimeSlot is a bookable interval of a teacher's time. The status column is
// the reservation lock: available -> booked happens only through the
// conditional update in the slot repository, booked -> available only through
// booking cancellation.
type TimeSlot struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	TeacherID uuid.UUID  `db:"teacher_id" json:"teacher_id"`
	StartAt   time.Time  `db:"start_at" json:"start_at"`
	EndAt     time.Time  `db:"end_at" json:"end_at"`
	Status    SlotStatus `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

type TimeSlotDetails struct {
	TimeSlot
	Teacher Teacher `json:"teacher"`
}

// Overlaps reports whether [s.StartAt, s.EndAt) intersects [start, end).
func (s *TimeSlot) Overlaps(start, end time.Time) bool {
	return s.StartAt.Before(end) && start.Before(s.EndAt)
}
