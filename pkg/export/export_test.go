package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	ics "github.com/arran4/golang-ical"
	"github.com/classon/classon/internal/utils"
	"github.com/classon/classon/pkg/category"
	"github.com/classon/classon/pkg/color"
	"github.com/classon/classon/pkg/timetable"
	"github.com/classon/classon/pkg/weekday"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
	"github.com/xuri/excelize/v2"
)

type stubReaders struct {
	days    []weekday.Weekday
	events  []category.Event
	periods []timetable.Period
}

func (s stubReaders) ListWeekdays(ctx context.Context) ([]weekday.Weekday, error) {
	return s.days, nil
}

func (s stubReaders) ListEvents(ctx context.Context) ([]category.Event, error) {
	return s.events, nil
}

func (s stubReaders) List(ctx context.Context) ([]timetable.Period, error) {
	return s.periods, nil
}

var monday = time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

func fixtureReaders() stubReaders {
	math := weekday.Class{Id: uuid.New(), Name: "Math", StartMinute: 480, DurationMinutes: 45, Color: color.Accent}
	art := weekday.Class{Id: uuid.New(), Name: "Art", StartMinute: 535, DurationMinutes: 45, Color: color.Accent}
	return stubReaders{
		days: []weekday.Weekday{
			{Ordinal: 0, Label: time.Monday, IsCommonDay: true, Classes: []weekday.Class{math}},
			{Ordinal: 1, Label: time.Tuesday, IsCommonDay: true, Classes: []weekday.Class{art}},
		},
		events: []category.Event{
			{
				Id:              uuid.New(),
				Name:            "Dentist",
				Date:            monday.Add(9 * time.Hour),
				DurationMinutes: 30,
				Color:           color.Accent,
				Alarms:          []category.Alarm{{Name: "leave", TriggerAt: monday.Add(8 * time.Hour)}},
			},
			{Id: uuid.New(), Name: "Gym", Date: monday.AddDate(0, 0, -30), NeedLoop: true, LoopDays: 3, Color: color.Accent},
			{Id: uuid.New(), Name: "Old", Date: monday.AddDate(0, 0, -30), Color: color.Accent},
		},
		periods: []timetable.Period{
			{Index: 0, StartMinute: 480, DurationMinutes: 45},
			{Index: 1, StartMinute: 535, DurationMinutes: 45},
		},
	}
}

func newService(readers stubReaders) *ServiceImpl {
	return NewService(readers, readers, readers, &utils.MockClock{FixedNow: monday})
}

func summaries(cal *ics.Calendar) map[string]*ics.VEvent {
	out := make(map[string]*ics.VEvent)
	for _, e := range cal.Events() {
		out[e.GetProperty(ics.ComponentPropertySummary).Value] = e
	}
	return out
}

func TestService_CalendarICS(t *testing.T) {
	s := newService(fixtureReaders())

	body, err := s.CalendarICS(context.Background(), monday, monday.AddDate(0, 0, 14))
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(body))
	require.NoError(t, err)
	events := summaries(cal)
	assert.Len(t, events, 4)
	assert.NotContains(t, events, "Old")

	gym := events["Gym"]
	require.NotNil(t, gym)
	assert.Equal(t, "FREQ=DAILY;INTERVAL=3", gym.GetProperty(ics.ComponentPropertyRrule).Value)

	art := events["Art"]
	require.NotNil(t, art)
	assert.Contains(t, art.GetProperty(ics.ComponentPropertyRrule).Value, "FREQ=WEEKLY")
	assert.Equal(t, "20250304T085500Z", art.GetProperty(ics.ComponentPropertyDtStart).Value)

	dentist := events["Dentist"]
	require.NotNil(t, dentist)
	require.Len(t, dentist.Alarms(), 1)
	assert.Equal(t, "-PT60M", dentist.Alarms()[0].GetProperty(ics.ComponentPropertyTrigger).Value)
}

func TestService_CalendarICSKeepsWallClockAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	from := time.Date(2025, time.January, 6, 0, 0, 0, 0, berlin)
	math := weekday.Class{Id: uuid.New(), Name: "Math", StartMinute: 480, DurationMinutes: 45, Color: color.Accent}
	s := newService(stubReaders{days: []weekday.Weekday{
		{Ordinal: 0, Label: time.Monday, IsCommonDay: true, Classes: []weekday.Class{math}},
	}})

	body, err := s.CalendarICS(context.Background(), from, from.AddDate(0, 0, 240))
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(body))
	require.NoError(t, err)
	event := summaries(cal)["Math"]
	require.NotNil(t, event)
	dtstart := event.GetProperty(ics.ComponentPropertyDtStart)
	assert.Equal(t, "20250106T080000", dtstart.Value)
	assert.Equal(t, []string{"Europe/Berlin"}, dtstart.ICalParameters[string(ics.ParameterTzid)])

	start, err := time.ParseInLocation("20060102T150405", dtstart.Value, berlin)
	require.NoError(t, err)
	rule, err := rrule.StrToRRule(event.GetProperty(ics.ComponentPropertyRrule).Value)
	require.NoError(t, err)
	rule.DTStart(start)
	july := time.Date(2025, time.July, 7, 0, 0, 0, 0, berlin)
	occurrences := rule.Between(july, july.AddDate(0, 0, 1), true)
	require.Len(t, occurrences, 1)
	assert.Equal(t, 8, occurrences[0].In(berlin).Hour())
	assert.Equal(t, 0, occurrences[0].In(berlin).Minute())
}

func TestService_CalendarICSRejectsEmptyRange(t *testing.T) {
	s := newService(fixtureReaders())

	_, err := s.CalendarICS(context.Background(), monday, monday)

	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestService_TimetableWorkbook(t *testing.T) {
	s := newService(fixtureReaders())

	buf, err := s.TimetableWorkbook(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	header, err := f.GetCellValue(sheetName, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Monday", header)
	slot, err := f.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "08:00-08:45", slot)
	mondayFirst, err := f.GetCellValue(sheetName, "C2")
	require.NoError(t, err)
	assert.Equal(t, "Math", mondayFirst)
	tuesdaySecond, err := f.GetCellValue(sheetName, "D3")
	require.NoError(t, err)
	assert.Equal(t, "Art", tuesdaySecond)
	empty, err := f.GetCellValue(sheetName, "D2")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestHandler_Calendar(t *testing.T) {
	handler := NewHandler(newService(fixtureReaders()), &utils.MockClock{FixedNow: monday})

	req := httptest.NewRequest(http.MethodGet, "/api/export/calendar.ics?from=2025-03-03&to=2025-03-10", nil)
	w := httptest.NewRecorder()
	handler.Calendar(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
}

func TestHandler_CalendarInvalidDate(t *testing.T) {
	handler := NewHandler(newService(fixtureReaders()), &utils.MockClock{FixedNow: monday})

	req := httptest.NewRequest(http.MethodGet, "/api/export/calendar.ics?from=march", nil)
	w := httptest.NewRecorder()
	handler.Calendar(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Timetable(t *testing.T) {
	handler := NewHandler(newService(fixtureReaders()), &utils.MockClock{FixedNow: monday})

	req := httptest.NewRequest(http.MethodGet, "/api/export/timetable.xlsx", nil)
	w := httptest.NewRecorder()
	handler.Timetable(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte("PK"), w.Body.Bytes()[:2])
}
