package schedule

import (
	"cmp"
	"slices"
	"time"

	"github.com/classon/classon/internal/utils"
	"github.com/classon/classon/pkg/category"
	"github.com/classon/classon/pkg/timetable"
	"github.com/classon/classon/pkg/weekday"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

type Kind string

const (
	KindClass Kind = "class"
	KindEvent Kind = "event"
)

// Occurrence is an event happening on a given day. For repeating events Start is the recurrence on
// that day, not the anchor date.
type Occurrence struct {
	Event category.Event
	Start time.Time
}

// StartMinute is 0 for all-day events.
func (o Occurrence) StartMinute() int {
	if o.Event.AllDay {
		return 0
	}
	return utils.MinuteOfDay(o.Start)
}

// AgendaItem is one entry of a day. All-day events end at MinutesPerDay and have AllDay set.
// Exactly one of Class and Event is set.
type AgendaItem struct {
	Kind        Kind
	StartMinute int
	EndMinute   int
	AllDay      bool
	Class       *weekday.Class
	Event       *category.Event
}

// WeekdayIndexFor maps date to its weekday ordinal under the given convention.
func WeekdayIndexFor(date time.Time, start weekday.WeekStart) int {
	return weekday.IndexFor(date.Weekday(), start)
}

// ClassesForDay returns the classes of the weekday with the given ordinal sorted by start minute.
// Classes starting at the same minute keep their stored order.
func ClassesForDay(days []weekday.Weekday, index int) []weekday.Class {
	for _, d := range days {
		if d.Ordinal != index {
			continue
		}
		classes := slices.Clone(d.Classes)
		slices.SortStableFunc(classes, func(a, b weekday.Class) int {
			if c := cmp.Compare(a.StartMinute, b.StartMinute); c != 0 {
				return c
			}
			return cmp.Compare(a.Position, b.Position)
		})
		if classes == nil {
			classes = []weekday.Class{}
		}
		return classes
	}
	return []weekday.Class{}
}

// EventsForDate returns the events occurring on date's calendar day in date's location, keeping the
// order of events.
func EventsForDate(events []category.Event, date time.Time) []Occurrence {
	dayStart := utils.StartOfDay(date)
	dayEnd := dayStart.AddDate(0, 0, 1)

	occurrences := make([]Occurrence, 0)
	for _, e := range events {
		anchor := e.Date.In(date.Location())
		if e.NeedLoop && e.LoopDays > 0 {
			if start, ok := recurrenceOn(e, anchor, dayStart, dayEnd); ok {
				occurrences = append(occurrences, Occurrence{Event: e, Start: start})
			}
			continue
		}
		if !anchor.Before(dayStart) && anchor.Before(dayEnd) {
			occurrences = append(occurrences, Occurrence{Event: e, Start: anchor})
		}
	}
	return occurrences
}

// recurrenceOn finds the recurrence of a repeating event inside [dayStart, dayEnd). The rule steps
// in calendar days so the wall-clock time survives DST changes.
func recurrenceOn(e category.Event, anchor, dayStart, dayEnd time.Time) (time.Time, bool) {
	if utils.StartOfDay(anchor).After(dayStart) {
		return time.Time{}, false
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: e.LoopDays,
		Dtstart:  anchor,
	})
	if err != nil {
		log.Warnf("event %s has an unusable repeat rule: %v", e.Id, err)
		return time.Time{}, false
	}
	matches := rule.Between(dayStart, dayEnd.Add(-time.Nanosecond), true)
	if len(matches) == 0 {
		return time.Time{}, false
	}
	return matches[0], true
}

// MergedAgenda orders classes and event occurrences by start minute. On equal start minutes classes
// come first; otherwise the input order is kept.
func MergedAgenda(classes []weekday.Class, occurrences []Occurrence) []AgendaItem {
	items := make([]AgendaItem, 0, len(classes)+len(occurrences))
	for i := range classes {
		c := classes[i]
		items = append(items, AgendaItem{
			Kind:        KindClass,
			StartMinute: c.StartMinute,
			EndMinute:   c.EndMinute(),
			Class:       &c,
		})
	}
	for _, o := range occurrences {
		e := o.Event
		item := AgendaItem{
			Kind:        KindEvent,
			StartMinute: o.StartMinute(),
			AllDay:      e.AllDay,
			Event:       &e,
		}
		if e.AllDay {
			item.EndMinute = timetable.MinutesPerDay
		} else {
			item.EndMinute = item.StartMinute + e.DurationMinutes
		}
		items = append(items, item)
	}
	slices.SortStableFunc(items, func(a, b AgendaItem) int {
		if c := cmp.Compare(a.StartMinute, b.StartMinute); c != 0 {
			return c
		}
		return cmp.Compare(kindRank(a.Kind), kindRank(b.Kind))
	})
	return items
}

func kindRank(k Kind) int {
	if k == KindClass {
		return 0
	}
	return 1
}

// NextOrCurrentItem returns the first item starting at or after nowMinute. Items already started
// count as past.
func NextOrCurrentItem(agenda []AgendaItem, nowMinute int) (AgendaItem, bool) {
	for _, item := range agenda {
		if item.StartMinute >= nowMinute {
			return item, true
		}
	}
	return AgendaItem{}, false
}
