package export

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/classon/classon/internal/utils"
	"github.com/classon/classon/pkg/category"
	"github.com/classon/classon/pkg/timetable"
	"github.com/classon/classon/pkg/weekday"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidRange = errors.New("export range end must be after its start")

type WeekdayReader interface {
	ListWeekdays(ctx context.Context) ([]weekday.Weekday, error)
}

type EventReader interface {
	ListEvents(ctx context.Context) ([]category.Event, error)
}

type PeriodReader interface {
	List(ctx context.Context) ([]timetable.Period, error)
}

type Service interface {
	// CalendarICS renders events and classes between from and to as an iCalendar document.
	CalendarICS(ctx context.Context, from, to time.Time) (string, error)
	// TimetableWorkbook renders the weekly timetable as an xlsx workbook.
	TimetableWorkbook(ctx context.Context) (*bytes.Buffer, error)
}

type ServiceImpl struct {
	weekdays WeekdayReader
	events   EventReader
	periods  PeriodReader
	clock    utils.Clock
}

func NewService(weekdays WeekdayReader, events EventReader, periods PeriodReader, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{weekdays: weekdays, events: events, periods: periods, clock: clock}
}

func (s *ServiceImpl) CalendarICS(ctx context.Context, from, to time.Time) (string, error) {
	if !to.After(from) {
		return "", ErrInvalidRange
	}
	days, err := s.weekdays.ListWeekdays(ctx)
	if err != nil {
		return "", err
	}
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return "", err
	}
	cal := buildCalendar(days, events, from, to, s.clock.Now())
	log.Debugf("Exported calendar from %s to %s with %d entries", from.Format(time.DateOnly), to.Format(time.DateOnly), len(cal.Events()))
	return cal.Serialize(), nil
}

func (s *ServiceImpl) TimetableWorkbook(ctx context.Context) (*bytes.Buffer, error) {
	periods, err := s.periods.List(ctx)
	if err != nil {
		return nil, err
	}
	days, err := s.weekdays.ListWeekdays(ctx)
	if err != nil {
		return nil, err
	}
	buf, err := buildWorkbook(periods, days)
	if err != nil {
		log.Errorf("failed to build timetable workbook: %v", err)
		return nil, err
	}
	return buf, nil
}
