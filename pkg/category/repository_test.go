package category

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/classon/classon/internal/test_utils"
	"github.com/classon/classon/pkg/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB test_utils.LazyDB

func TestMain(m *testing.M) {
	code := m.Run()
	testDB.Close()
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, Repository) {
	return context.Background(), NewRepo(testDB.Pool(t))
}

func storeCategory(t *testing.T, ctx context.Context, repo Repository, name string, position int) Category {
	c, err := repo.StoreCategory(ctx, Category{Name: name, Position: position, Color: color.Accent})
	require.NoError(t, err)
	return c
}

func TestRepositoryImpl_StoreEventWithTagsAndAlarms(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	category := storeCategory(t, ctx, repo, "Health", 0)
	date := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

	stored, err := repo.StoreEvent(ctx, Event{
		CategoryId:      category.Id,
		Name:            "Dentist",
		Date:            date,
		DurationMinutes: 30,
		NeedLoop:        true,
		LoopDays:        14,
		Color:           color.RGB{R: 0xAA},
		Details:         "bring card",
		Tags:            []string{"health", "teeth"},
		Alarms:          []Alarm{{Name: "leave", TriggerAt: date.Add(-time.Hour)}},
	})
	require.NoError(t, err)

	got, err := repo.GetEvent(ctx, stored.Id)
	require.NoError(t, err)
	assert.Equal(t, "Dentist", got.Name)
	assert.True(t, got.Date.Equal(date))
	assert.Equal(t, 14, got.LoopDays)
	assert.Equal(t, color.RGB{R: 0xAA}, got.Color)
	assert.Equal(t, []string{"health", "teeth"}, got.Tags)
	require.Len(t, got.Alarms, 1)
	assert.Equal(t, stored.Alarms[0].Id, got.Alarms[0].Id)
	assert.Equal(t, stored.Id, got.Alarms[0].EventId)
	assert.False(t, got.Alarms[0].Fired)
}

func TestRepositoryImpl_UpdateEventReplacesChildren(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	category := storeCategory(t, ctx, repo, "Health", 0)
	date := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	stored, err := repo.StoreEvent(ctx, Event{
		CategoryId: category.Id,
		Name:       "Dentist",
		Date:       date,
		Color:      color.Accent,
		Tags:       []string{"old"},
		Alarms:     []Alarm{{TriggerAt: date.Add(-time.Hour)}},
	})
	require.NoError(t, err)

	stored.Name = "Doctor"
	stored.Tags = []string{"new"}
	stored.Alarms = []Alarm{}
	_, err = repo.UpdateEvent(ctx, stored)
	require.NoError(t, err)

	got, err := repo.GetEvent(ctx, stored.Id)
	require.NoError(t, err)
	assert.Equal(t, "Doctor", got.Name)
	assert.Equal(t, []string{"new"}, got.Tags)
	assert.Empty(t, got.Alarms)

	_, err = repo.UpdateEvent(ctx, Event{Id: uuid.New(), Color: color.Accent})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestRepositoryImpl_DeleteCategoryCascades(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	doomed := storeCategory(t, ctx, repo, "Doomed", 0)
	kept := storeCategory(t, ctx, repo, "Kept", 1)
	date := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		_, err := repo.StoreEvent(ctx, Event{
			CategoryId: doomed.Id,
			Position:   i,
			Date:       date,
			Color:      color.Accent,
			Tags:       []string{"x"},
			Alarms:     []Alarm{{TriggerAt: date}},
		})
		require.NoError(t, err)
	}
	_, err := repo.StoreEvent(ctx, Event{CategoryId: kept.Id, Date: date, Color: color.Accent, Tags: []string{"x"}})
	require.NoError(t, err)

	var deleted int
	err = repo.WithTransaction(ctx, func(tx Repository) error {
		deleted, err = tx.DeleteCategory(ctx, doomed.Id)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, 2, deleted)
	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Len(t, categories[0].Events, 1)
	due, err := repo.DueAlarms(ctx, date.Add(-time.Hour), date)
	require.NoError(t, err)
	assert.Empty(t, due)

	_, err = repo.DeleteCategory(ctx, doomed.Id)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestRepositoryImpl_DueAlarmsAndMarkFired(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	category := storeCategory(t, ctx, repo, "Health", 0)
	date := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	_, err := repo.StoreEvent(ctx, Event{
		CategoryId: category.Id,
		Name:       "Dentist",
		Date:       date,
		Color:      color.Accent,
		Alarms: []Alarm{
			{Name: "outside", TriggerAt: date.Add(-2 * time.Hour)},
			{Name: "inside", TriggerAt: date.Add(-time.Minute)},
		},
	})
	require.NoError(t, err)

	due, err := repo.DueAlarms(ctx, date.Add(-time.Hour), date)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "inside", due[0].Name)
	assert.Equal(t, "Dentist", due[0].EventName)

	require.NoError(t, repo.MarkAlarmFired(ctx, due[0].Id))
	due, err = repo.DueAlarms(ctx, date.Add(-time.Hour), date)
	require.NoError(t, err)
	assert.Empty(t, due)
	assert.ErrorIs(t, repo.MarkAlarmFired(ctx, uuid.New()), ErrAlarmNotFound)
}

func TestRepositoryImpl_CategoryPositions(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	maxPosition, err := repo.MaxCategoryPosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, -1, maxPosition)
	a := storeCategory(t, ctx, repo, "A", 0)
	b := storeCategory(t, ctx, repo, "B", 1)

	require.NoError(t, repo.UpdateCategoryPositions(ctx, []uuid.UUID{b.Id, a.Id}))

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.Id, a.Id}, categoryIds(categories))
	maxPosition, err = repo.MaxCategoryPosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, maxPosition)
}
