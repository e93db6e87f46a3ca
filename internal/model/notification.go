package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a persisted copy of a lifecycle event addressed to one
// user, written by the NATS subscriber.
type Notification struct {
	ID            uuid.UUID `db:"id" json:"id"`
	RecipientID   uuid.UUID `db:"recipient_id" json:"recipient_id"`
	RecipientRole string    `db:"recipient_role" json:"recipient_role"`
	EventType     string    `db:"event_type" json:"event_type"`
	Payload       []byte    `db:"payload" json:"payload"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
