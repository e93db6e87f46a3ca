package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	TeacherLabelTutor   = "tutor"
	TeacherLabelTeacher = "teacher"
)

type Teacher struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Bio       *string    `db:"bio" json:"bio,omitempty"`
	Birth     *time.Time `db:"birth" json:"birth,omitempty"`
	Label     string     `db:"label" json:"label"`
	Phone     string     `db:"phone" json:"phone"`
	Email     string     `db:"email" json:"email"`
	Password  string     `db:"password" json:"-"`
	Img       string     `db:"img" json:"img"`
	Rating    float64    `db:"rating" json:"rating"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
