package model

import (
	"time"

	"github.com/google/uuid"
)

type Student struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Birth     *time.Time `db:"birth" json:"birth,omitempty"`
	Level     string     `db:"level" json:"level"`
	Phone     string     `db:"phone" json:"phone"`
	Email     string     `db:"email" json:"email"`
	Password  string     `db:"password" json:"-"`
	Img       *string    `db:"img" json:"img,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
