package model

import (
	"time"

	"github.com/google/uuid"
)

// Room is the virtual meeting place of exactly one session. It is created
// with the session and removed with it (FK cascade).
type Room struct {
	ID        uuid.UUID `db:"id" json:"id"`
	SessionID uuid.UUID `db:"session_id" json:"session_id"`
	RoomCode  string    `db:"room_code" json:"room_code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type RoomDetails struct {
	Room
	Session SessionDetails `json:"session"`
}
