package schedule

import (
	"context"
	"time"

	"github.com/classon/classon/internal/utils"
	"github.com/classon/classon/pkg/category"
	"github.com/classon/classon/pkg/weekday"
	log "github.com/sirupsen/logrus"
)

// Agenda is the derived plan of one day. Next is only set for today.
type Agenda struct {
	Date         time.Time
	WeekdayIndex int
	Items        []AgendaItem
	Next         *AgendaItem
}

type WeekdayReader interface {
	ListWeekdays(ctx context.Context) ([]weekday.Weekday, error)
}

type EventReader interface {
	ListEvents(ctx context.Context) ([]category.Event, error)
}

type WeekStartReader interface {
	WeekStart(ctx context.Context) (weekday.WeekStart, error)
}

type Service interface {
	AgendaFor(ctx context.Context, date time.Time) (Agenda, error)
	Today(ctx context.Context) (Agenda, error)
}

type ServiceImpl struct {
	weekdays  WeekdayReader
	events    EventReader
	weekStart WeekStartReader
	clock     utils.Clock
}

func NewService(weekdays WeekdayReader, events EventReader, weekStart WeekStartReader, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		weekdays:  weekdays,
		events:    events,
		weekStart: weekStart,
		clock:     clock,
	}
}

func (s *ServiceImpl) Today(ctx context.Context) (Agenda, error) {
	return s.AgendaFor(ctx, s.clock.Now())
}

// AgendaFor reads fresh snapshots of the weekdays and events and derives the agenda of date's day.
func (s *ServiceImpl) AgendaFor(ctx context.Context, date time.Time) (Agenda, error) {
	start, err := s.weekStart.WeekStart(ctx)
	if err != nil {
		return Agenda{}, err
	}
	days, err := s.weekdays.ListWeekdays(ctx)
	if err != nil {
		return Agenda{}, err
	}
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return Agenda{}, err
	}

	index := WeekdayIndexFor(date, start)
	items := MergedAgenda(ClassesForDay(days, index), EventsForDate(events, date))
	agenda := Agenda{
		Date:         utils.StartOfDay(date),
		WeekdayIndex: index,
		Items:        items,
	}

	now := s.clock.Now().In(date.Location())
	if utils.StartOfDay(now).Equal(agenda.Date) {
		if next, ok := NextOrCurrentItem(items, utils.MinuteOfDay(now)); ok {
			agenda.Next = &next
		}
	}
	log.Debugf("Derived agenda for %s: %d items", agenda.Date.Format(time.DateOnly), len(items))
	return agenda, nil
}
