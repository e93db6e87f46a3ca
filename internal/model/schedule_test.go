package model_test

import (
	"testing"
	"time"

	"tutoring-backend/internal/model"

	"github.com/stretchr/testify/require"
)

func TestSchedule_Occurrences(t *testing.T) {
	s := model.Schedule{
		DayOfWeek: 2, // Tuesday
		StartTime: "10:00:00",
		EndTime:   "11:00:00",
	}

	from := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC) // a Monday
	until := from.Add(14 * 24 * time.Hour)
	got := s.Occurrences(from, until)
	require.Equal(t, []time.Time{
		time.Date(2026, 7, 7, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 14, 10, 0, 0, 0, time.UTC),
	}, got)
}

func TestSchedule_Occurrences_ExcludesStartsBeforeFrom(t *testing.T) {
	s := model.Schedule{
		DayOfWeek: 2,
		StartTime: "10:00:00",
		EndTime:   "11:00:00",
	}

	// window opens Tuesday at noon, so that Tuesday's 10:00 is already gone
	from := time.Date(2026, 7, 7, 12, 0, 0, 0, time.UTC)
	until := from.Add(7 * 24 * time.Hour)
	got := s.Occurrences(from, until)
	require.Equal(t, []time.Time{
		time.Date(2026, 7, 14, 10, 0, 0, 0, time.UTC),
	}, got)
}

func TestSchedule_Occurrences_UnparseableStartTime(t *testing.T) {
	s := model.Schedule{DayOfWeek: 2, StartTime: "ten o'clock", EndTime: "11:00:00"}
	require.Nil(t, s.Occurrences(time.Now(), time.Now().Add(7*24*time.Hour)))
}

func TestSchedule_Duration(t *testing.T) {
	s := model.Schedule{StartTime: "10:00:00", EndTime: "11:30:00"}
	require.Equal(t, 90*time.Minute, s.Duration())

	inverted := model.Schedule{StartTime: "11:00:00", EndTime: "10:00:00"}
	require.Zero(t, inverted.Duration())

	broken := model.Schedule{StartTime: "10:00:00", EndTime: "midnight"}
	require.Zero(t, broken.Duration())
}
