package model

import (
	"time"

	"github.com/google/uuid"
)

// Fee is a per-class or per-slot rate owed to a teacher. Exactly one of
// ClassID/TimeSlotID is set; two partial unique indexes make the pair
// (teacher, scope) unique.
type Fee struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	TeacherID   uuid.UUID  `db:"teacher_id" json:"teacher_id"`
	ClassID     *uuid.UUID `db:"class_id" json:"class_id,omitempty"`
	TimeSlotID  *uuid.UUID `db:"time_slot_id" json:"time_slot_id,omitempty"`
	AmountCents int64      `db:"amount_cents" json:"amount_cents"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
