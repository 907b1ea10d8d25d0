package timetable

import (
	"fmt"

	"github.com/google/uuid"
)

const MinutesPerDay = 24 * 60

// Period is one slot of the daily timetable. Indices are contiguous from 0.
type Period struct {
	Id              uuid.UUID
	Index           int
	StartMinute     int
	DurationMinutes int
}

func (p Period) EndMinute() int {
	return p.StartMinute + p.DurationMinutes
}

type PeriodDraft struct {
	StartMinute     int `validate:"gte=0,lt=1440"`
	DurationMinutes int `validate:"gt=0,lte=1440"`
}

// ClockString renders a minute of the day as "HH:MM".
func ClockString(minute int) string {
	minute = ((minute % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
