package export

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/classon/classon/pkg/category"
	"github.com/classon/classon/pkg/weekday"
)

const (
	productId    = "-//ClassOn//Schedule Export//EN"
	calendarName = "ClassOn"
	icalUTC      = "20060102T150405Z"
	icalLocal    = "20060102T150405"
)

// buildCalendar writes every event touching [from, to) and one weekly series per class. Class
// series start on the first matching day on or after from and end before to.
func buildCalendar(days []weekday.Weekday, events []category.Event, from, to, now time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productId)
	cal.SetXWRCalName(calendarName)

	for _, e := range events {
		if !eventInRange(e, from, to) {
			continue
		}
		addEvent(cal, e, from.Location(), now)
	}
	for _, d := range days {
		first := firstOnOrAfter(from, d.Label)
		if !first.Before(to) {
			continue
		}
		for _, c := range d.Classes {
			addClass(cal, c, first, to, now)
		}
	}
	return cal
}

func eventInRange(e category.Event, from, to time.Time) bool {
	if !e.Date.Before(to) {
		return false
	}
	if e.Repeats() {
		return true
	}
	end := e.Date.Add(time.Duration(e.DurationMinutes) * time.Minute)
	if e.AllDay {
		end = e.Date.AddDate(0, 0, 1)
	}
	return end.After(from)
}

func addEvent(cal *ics.Calendar, e category.Event, loc *time.Location, now time.Time) {
	start := e.Date.In(loc)
	vevent := cal.AddEvent(e.Id.String() + "@event.classon")
	vevent.SetDtStampTime(now)
	vevent.SetSummary(e.Name)
	if e.Description != "" {
		vevent.SetDescription(e.Description)
	}
	if e.AllDay {
		vevent.SetAllDayStartAt(start)
		vevent.SetAllDayEndAt(start.AddDate(0, 0, 1))
	} else {
		setTime(vevent, ics.ComponentPropertyDtStart, start)
		setTime(vevent, ics.ComponentPropertyDtEnd, start.Add(time.Duration(e.DurationMinutes)*time.Minute))
	}
	if e.Repeats() {
		vevent.AddRrule(fmt.Sprintf("FREQ=DAILY;INTERVAL=%d", e.LoopDays))
	}
	if len(e.Tags) > 0 {
		vevent.SetProperty(ics.ComponentPropertyCategories, strings.Join(e.Tags, ","))
	}
	vevent.SetProperty(ics.ComponentProperty("COLOR"), e.Color.Hex())
	for _, a := range e.Alarms {
		alarm := vevent.AddAlarm()
		alarm.SetAction(ics.ActionDisplay)
		alarm.SetTrigger(triggerOffset(a.TriggerAt.Sub(e.Date)))
		description := a.Name
		if description == "" {
			description = e.Name
		}
		alarm.SetProperty(ics.ComponentPropertyDescription, description)
	}
}

func addClass(cal *ics.Calendar, c weekday.Class, first, to, now time.Time) {
	start := time.Date(first.Year(), first.Month(), first.Day(), c.StartMinute/60, c.StartMinute%60, 0, 0, first.Location())
	vevent := cal.AddEvent(c.Id.String() + "@class.classon")
	vevent.SetDtStampTime(now)
	vevent.SetSummary(c.Name)
	if c.Description != "" {
		vevent.SetDescription(c.Description)
	}
	setTime(vevent, ics.ComponentPropertyDtStart, start)
	setTime(vevent, ics.ComponentPropertyDtEnd, start.Add(time.Duration(c.DurationMinutes)*time.Minute))
	vevent.AddRrule("FREQ=WEEKLY;UNTIL=" + untilValue(to.Add(-time.Second)))
	if len(c.Tags) > 0 {
		vevent.SetProperty(ics.ComponentPropertyCategories, strings.Join(c.Tags, ","))
	}
	vevent.SetProperty(ics.ComponentProperty("COLOR"), c.Color.Hex())
}

// setTime writes t as UTC, as a floating time for the process-local zone, or as a wall-clock time
// with TZID so weekly and daily series keep their local time across DST changes.
func setTime(vevent *ics.VEvent, property ics.ComponentProperty, t time.Time) {
	switch name := t.Location().String(); name {
	case "UTC":
		vevent.SetProperty(property, t.Format(icalUTC))
	case "Local":
		vevent.SetProperty(property, t.Format(icalLocal))
	default:
		vevent.SetProperty(property, t.Format(icalLocal), &ics.KeyValues{Key: string(ics.ParameterTzid), Value: []string{name}})
	}
}

// untilValue formats an RRULE UNTIL. It is UTC unless the series start is floating.
func untilValue(t time.Time) string {
	if t.Location().String() == "Local" {
		return t.Format(icalLocal)
	}
	return t.UTC().Format(icalUTC)
}

// firstOnOrAfter returns midnight of the first day on or after from falling on label.
func firstOnOrAfter(from time.Time, label time.Weekday) time.Time {
	y, m, d := from.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, from.Location())
	shift := (int(label) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, shift)
}

// triggerOffset formats an alarm offset relative to the event start, e.g. -PT60M.
func triggerOffset(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	if minutes < 0 {
		return fmt.Sprintf("-PT%dM", -minutes)
	}
	return fmt.Sprintf("PT%dM", minutes)
}
