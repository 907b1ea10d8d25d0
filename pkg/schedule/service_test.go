package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/classon/classon/internal/event_bus"
	"github.com/classon/classon/internal/utils"
	"github.com/classon/classon/pkg/category"
	"github.com/classon/classon/pkg/subject"
	"github.com/classon/classon/pkg/timetable"
	"github.com/classon/classon/pkg/weekday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedWeekStart weekday.WeekStart

func (f fixedWeekStart) WeekStart(ctx context.Context) (weekday.WeekStart, error) {
	return weekday.WeekStart(f), nil
}

type fixture struct {
	ctx        context.Context
	clock      *utils.MockClock
	subjects   *subject.ServiceImpl
	periods    *timetable.ServiceImpl
	weekdays   *weekday.ServiceImpl
	categories *category.ServiceImpl
	service    *ServiceImpl
}

func setupFixture(t *testing.T, now time.Time) fixture {
	ctx := context.Background()
	bus := event_bus.NewEventBus()
	clock := &utils.MockClock{FixedNow: now}
	subjects := subject.NewService(subject.NewMemoryRepository(), bus)
	periods := timetable.NewService(timetable.NewMemoryRepository())
	weekdays := weekday.NewService(weekday.NewMemoryRepository(), subjects, periods, bus)
	categories := category.NewService(category.NewMemoryRepository())
	_, err := weekdays.EnsureDefaults(ctx, weekday.MondayFirst)
	require.NoError(t, err)
	return fixture{
		ctx:        ctx,
		clock:      clock,
		subjects:   subjects,
		periods:    periods,
		weekdays:   weekdays,
		categories: categories,
		service:    NewService(weekdays, categories, fixedWeekStart(weekday.MondayFirst), clock),
	}
}

func (f fixture) classFromPeriod(t *testing.T, ordinal int, name string, startMinute int) weekday.Class {
	subj, err := f.subjects.Add(f.ctx, subject.SubjectDraft{Name: name, Teachers: []string{name + " teacher"}})
	require.NoError(t, err)
	period, err := f.periods.Add(f.ctx, timetable.PeriodDraft{StartMinute: startMinute, DurationMinutes: 45})
	require.NoError(t, err)
	class, err := f.weekdays.AddClassFromPeriod(f.ctx, ordinal, weekday.ClassFromPeriod{SubjectId: subj.Id, PeriodId: period.Id})
	require.NoError(t, err)
	return class
}

func names(items []AgendaItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Class != nil {
			out = append(out, item.Class.Name)
		} else {
			out = append(out, item.Event.Name)
		}
	}
	return out
}

func TestService_MondayWithClassesAndDentist(t *testing.T) {
	monday := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	f := setupFixture(t, monday.Add(500*time.Minute))
	f.classFromPeriod(t, 0, "Math", 480)
	f.classFromPeriod(t, 0, "Art", 530)
	health, err := f.categories.AddCategory(f.ctx, category.CategoryDraft{Name: "Health"})
	require.NoError(t, err)
	_, err = f.categories.AddEvent(f.ctx, health.Id, category.EventDraft{Name: "Dentist", Date: monday.Add(9 * time.Hour), DurationMinutes: 30})
	require.NoError(t, err)

	agenda, err := f.service.Today(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, agenda.WeekdayIndex)
	assert.Equal(t, monday, agenda.Date)
	assert.Equal(t, []string{"Math", "Art", "Dentist"}, names(agenda.Items))
	require.NotNil(t, agenda.Next)
	assert.Equal(t, "Art", agenda.Next.Class.Name)
	assert.Equal(t, 530, agenda.Next.StartMinute)
}

func TestService_NextOnlyForToday(t *testing.T) {
	monday := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	f := setupFixture(t, monday.Add(7*time.Hour))
	f.classFromPeriod(t, 1, "Math", 480)

	agenda, err := f.service.AgendaFor(f.ctx, monday.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.Equal(t, 1, agenda.WeekdayIndex)
	assert.Len(t, agenda.Items, 1)
	assert.Nil(t, agenda.Next)
}

func TestService_EmptyWeekend(t *testing.T) {
	saturday := time.Date(2025, time.March, 8, 10, 0, 0, 0, time.UTC)
	f := setupFixture(t, saturday)
	f.classFromPeriod(t, 0, "Math", 480)

	agenda, err := f.service.Today(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, 5, agenda.WeekdayIndex)
	assert.Empty(t, agenda.Items)
	assert.Nil(t, agenda.Next)
}

func TestService_SundayFirstConvention(t *testing.T) {
	monday := time.Date(2025, time.March, 3, 7, 0, 0, 0, time.UTC)
	f := setupFixture(t, monday)
	require.NoError(t, f.weekdays.Rebase(f.ctx, weekday.SundayFirst))
	f.classFromPeriod(t, 1, "Math", 480)
	f.service.weekStart = fixedWeekStart(weekday.SundayFirst)

	agenda, err := f.service.Today(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, agenda.WeekdayIndex)
	assert.Equal(t, []string{"Math"}, names(agenda.Items))
	require.NotNil(t, agenda.Next)
}

func TestService_WeekStartChangedBetweenRestarts(t *testing.T) {
	sunday := time.Date(2025, time.March, 9, 7, 0, 0, 0, time.UTC)
	f := setupFixture(t, sunday)
	f.classFromPeriod(t, 0, "Math", 480)

	_, err := f.weekdays.EnsureDefaults(f.ctx, weekday.SundayFirst)
	require.NoError(t, err)
	f.service.weekStart = fixedWeekStart(weekday.SundayFirst)

	agenda, err := f.service.AgendaFor(f.ctx, sunday)
	require.NoError(t, err)
	assert.Equal(t, 0, agenda.WeekdayIndex)
	assert.Empty(t, agenda.Items)

	agenda, err = f.service.AgendaFor(f.ctx, sunday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, agenda.WeekdayIndex)
	assert.Equal(t, []string{"Math"}, names(agenda.Items))
}
