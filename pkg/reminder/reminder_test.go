package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/classon/classon/internal/event_bus"
	"github.com/classon/classon/internal/utils"
	"github.com/classon/classon/pkg/category"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)

func setupSchedulerTest(t *testing.T) (*Scheduler, *category.ServiceImpl, *utils.MockClock, *[]event_bus.AlarmTriggered) {
	ctx := context.Background()
	bus := event_bus.NewEventBus()
	var triggered []event_bus.AlarmTriggered
	event_bus.SubscribeTyped[event_bus.AlarmTriggered](bus, event_bus.AlarmTriggeredType, func(e event_bus.EventT[event_bus.AlarmTriggered]) error {
		triggered = append(triggered, e.Data)
		return nil
	})
	categories := category.NewService(category.NewMemoryRepository())
	health, err := categories.AddCategory(ctx, category.CategoryDraft{Name: "Health"})
	require.NoError(t, err)
	_, err = categories.AddEvent(ctx, health.Id, category.EventDraft{
		Name: "Dentist",
		Date: start.Add(2 * time.Hour),
		Alarms: []category.AlarmDraft{
			{Name: "missed", TriggerAt: start.Add(-30 * time.Minute)},
			{Name: "too old", TriggerAt: start.Add(-2 * time.Hour)},
			{Name: "leave", TriggerAt: start.Add(time.Hour)},
		},
	})
	require.NoError(t, err)
	clock := &utils.MockClock{FixedNow: start}
	return NewScheduler(categories, bus, clock, "@every 1m"), categories, clock, &triggered
}

func TestScheduler_SweepFiresDueAlarmsOnce(t *testing.T) {
	s, _, clock, triggered := setupSchedulerTest(t)
	ctx := context.Background()

	fired, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	require.Len(t, *triggered, 1)
	assert.Equal(t, "missed", (*triggered)[0].AlarmName)
	assert.Equal(t, "Dentist", (*triggered)[0].EventName)

	clock.SetNow(start.Add(30 * time.Minute))
	fired, err = s.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, fired)

	clock.SetNow(start.Add(time.Hour))
	fired, err = s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.Equal(t, "leave", (*triggered)[1].AlarmName)
}

func TestScheduler_FiredAlarmsAreMarked(t *testing.T) {
	s, categories, _, _ := setupSchedulerTest(t)
	ctx := context.Background()

	_, err := s.Sweep(ctx)
	require.NoError(t, err)

	events, err := categories.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	firedNames := map[string]bool{}
	for _, a := range events[0].Alarms {
		firedNames[a.Name] = a.Fired
	}
	assert.Equal(t, map[string]bool{"too old": false, "missed": true, "leave": false}, firedNames)
}

func TestScheduler_StartRejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(nil, nil, &utils.MockClock{FixedNow: start}, "every now and then")

	assert.Error(t, s.Start())
}

func TestScheduler_StartAndStop(t *testing.T) {
	s, _, _, _ := setupSchedulerTest(t)

	require.NoError(t, s.Start())
	s.Stop()
	s.Stop()
}
