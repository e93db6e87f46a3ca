package model

import (
	"time"

	"github.com/google/uuid"
)

type ScheduleStatus string

const (
	ScheduleStatusActive   ScheduleStatus = "active"
	ScheduleStatusInactive ScheduleStatus = "inactive"
)

// Schedule is a weekly recurring template. The background worker expands it
// into concrete sessions over a look-ahead window.
type Schedule struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	ClassID   uuid.UUID      `db:"class_id" json:"class_id"`
	DayOfWeek int            `db:"day_of_week" json:"day_of_week"`
	StartTime string         `db:"start_time" json:"start_time"`
	EndTime   string         `db:"end_time" json:"end_time"`
	Status    ScheduleStatus `db:"status" json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

type ScheduleDetails struct {
	Schedule
	Class Class `json:"class"`
}

// Occurrences lists every concrete start in [from, until) that matches the
// schedule's weekday and start time. Minutes past midnight come from the
// stored "HH:MM:SS" value.
func (s *Schedule) Occurrences(from, until time.Time) []time.Time {
	start, err := time.Parse("15:04:05", s.StartTime)
	if err != nil {
		return nil
	}

	var out []time.Time
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for ; day.Before(until); day = day.AddDate(0, 0, 1) {
		if int(day.Weekday()) != s.DayOfWeek {
			continue
		}
		at := day.Add(time.Duration(start.Hour())*time.Hour +
			time.Duration(start.Minute())*time.Minute +
			time.Duration(start.Second())*time.Second)
		if !at.Before(from) && at.Before(until) {
			out = append(out, at)
		}
	}
	return out
}

// Duration returns the length of one occurrence, or zero when the stored
// times do not parse or are inverted.
func (s *Schedule) Duration() time.Duration {
	start, err1 := time.Parse("15:04:05", s.StartTime)
	end, err2 := time.Parse("15:04:05", s.EndTime)
	if err1 != nil || err2 != nil || !end.After(start) {
		return 0
	}
	return end.Sub(start)
}
