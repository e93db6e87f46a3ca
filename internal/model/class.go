package model

import (
	"time"

	"github.com/google/uuid"
)

type ClassStatus string

const (
	ClassStatusActive    ClassStatus = "active"
	ClassStatusInactive  ClassStatus = "inactive"
	ClassStatusFull      ClassStatus = "full"
	ClassStatusCompleted ClassStatus = "completed"
)

const (
	ClassTypeOnline  = "online"
	ClassTypeOffline = "offline"
)

type Class struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	SubjectID   uuid.UUID   `db:"subject_id" json:"subject_id"`
	TeacherID   uuid.UUID   `db:"teacher_id" json:"teacher_id"`
	Type        string      `db:"type" json:"type"`
	Level       string      `db:"level" json:"level"`
	MaxStudents int         `db:"max_students" json:"max_students"`
	Description string      `db:"description" json:"description"`
	Status      ClassStatus `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// Open reports whether the class accepts new enrollments.
func (c *Class) Open() bool {
	return c.Status == ClassStatusActive
}

type ClassDetails struct {
	Class
	Subject Subject `json:"subject"`
	Teacher Teacher `json:"teacher"`
}

type InClass struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ClassID   uuid.UUID `db:"class_id" json:"class_id"`
	StudentID uuid.UUID `db:"student_id" json:"student_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type InClassDetails struct {
	InClass
	Class   Class   `json:"class"`
	Student Student `json:"student"`
}
