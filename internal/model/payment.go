package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Payment is one monthly payout to a teacher. The (teacher, period) pair is
// unique; the sessions it covers live in payment_sessions and SessionID only
// points at a representative session for display.
type Payment struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	TeacherID   uuid.UUID     `db:"teacher_id" json:"teacher_id"`
	SessionID   *uuid.UUID    `db:"session_id" json:"session_id,omitempty"`
	Period      string        `db:"period" json:"period"`
	AmountCents int64         `db:"amount_cents" json:"amount_cents"`
	Status      PaymentStatus `db:"status" json:"status"`
	PaidDate    *time.Time    `db:"paid_date" json:"paid_date,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// PeriodBounds resolves a "YYYY-MM" period into its [start, end) month
// window.
func PeriodBounds(period string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", period)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 1, 0), nil
}
