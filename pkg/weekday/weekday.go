package weekday

import (
	"slices"
	"strings"
	"time"

	"github.com/classon/classon/pkg/color"
	"github.com/google/uuid"
)

const DaysInWeek = 7

// WeekStart selects which calendar day gets ordinal 0.
type WeekStart int

const (
	MondayFirst WeekStart = iota
	SundayFirst
)

func ParseWeekStart(s string) WeekStart {
	if strings.EqualFold(strings.TrimSpace(s), "sunday") {
		return SundayFirst
	}
	return MondayFirst
}

func (w WeekStart) String() string {
	if w == SundayFirst {
		return "sunday"
	}
	return "monday"
}

// IndexFor maps a calendar weekday to its ordinal in 0..6 under the given convention.
func IndexFor(label time.Weekday, start WeekStart) int {
	if start == SundayFirst {
		return int(label)
	}
	return (int(label) + 6) % DaysInWeek
}

// LabelFor is the inverse of IndexFor.
func LabelFor(ordinal int, start WeekStart) time.Weekday {
	ordinal = ((ordinal % DaysInWeek) + DaysInWeek) % DaysInWeek
	if start == SundayFirst {
		return time.Weekday(ordinal)
	}
	return time.Weekday((ordinal + 1) % DaysInWeek)
}

// Weekday is one of the seven always-present days. Common days carry the recurring timetable.
type Weekday struct {
	Id          uuid.UUID
	Ordinal     int
	Label       time.Weekday
	IsCommonDay bool
	Classes     []Class
}

// Class is a recurring lesson on a weekday. Start and duration are copied from a period when the
// class is created and do not follow later period edits.
type Class struct {
	Id                uuid.UUID
	WeekdayId         uuid.UUID
	Position          int
	Name              string
	StartMinute       int
	DurationMinutes   int
	Description       string
	Details           map[string]string
	Color             color.RGB
	TeacherId         *uuid.UUID
	SubjectTeacherIds []uuid.UUID
	Tags              []string
}

func (c Class) EndMinute() int {
	return c.StartMinute + c.DurationMinutes
}

type ClassDraft struct {
	Name              string            `validate:"required,max=200"`
	StartMinute       int               `validate:"gte=0,lt=1440"`
	DurationMinutes   int               `validate:"gt=0,lte=1440"`
	Description       string            `validate:"max=2000"`
	Details           map[string]string `validate:"dive,keys,required,max=100,endkeys,max=2000"`
	Color             string            `validate:"omitempty,hexcolor"`
	TeacherId         *uuid.UUID
	SubjectTeacherIds []uuid.UUID
	Tags              []string `validate:"dive,required,max=50"`
}

func (d ClassDraft) normalized() ClassDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Color = strings.TrimSpace(d.Color)
	seen := make(map[string]bool, len(d.Tags))
	var tags []string
	for _, tag := range d.Tags {
		tag = strings.TrimSpace(tag)
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	d.Tags = tags
	if d.Details == nil {
		d.Details = map[string]string{}
	}
	return d
}
