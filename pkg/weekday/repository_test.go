package weekday

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

func setupTestRepository(t *testing.T) (context.Context, Repository, []Weekday) {
	ctx := context.Background()
	repo := NewRepo(testDB.Pool(t))
	var days []Weekday
	for _, label := range allLabels {
		d, err := repo.StoreWeekday(ctx, Weekday{Ordinal: IndexFor(label, MondayFirst), Label: label, IsCommonDay: true})
		require.NoError(t, err)
		days = append(days, d)
	}
	return ctx, repo, days
}

func TestRepositoryImpl_StoreAndGetClass(t *testing.T) {
	ctx, repo, days := setupTestRepository(t)
	teacherId := uuid.New()
	otherTeacher := uuid.New()

	stored, err := repo.StoreClass(ctx, Class{
		WeekdayId:         days[0].Id,
		Name:              "Math",
		StartMinute:       480,
		DurationMinutes:   45,
		Description:       "Room 12",
		Details:           map[string]string{"book": "Algebra I"},
		Color:             color.RGB{R: 0x12, G: 0x34, B: 0x56},
		TeacherId:         &teacherId,
		SubjectTeacherIds: []uuid.UUID{teacherId, otherTeacher},
		Tags:              []string{"exam", "core"},
	})
	require.NoError(t, err)

	got, err := repo.GetClass(ctx, stored.Id)
	require.NoError(t, err)
	assert.Equal(t, "Math", got.Name)
	assert.Equal(t, "Algebra I", got.Details["book"])
	assert.Equal(t, color.RGB{R: 0x12, G: 0x34, B: 0x56}, got.Color)
	require.NotNil(t, got.TeacherId)
	assert.Equal(t, teacherId, *got.TeacherId)
	assert.Equal(t, []uuid.UUID{teacherId, otherTeacher}, got.SubjectTeacherIds)
	assert.Equal(t, []string{"core", "exam"}, got.Tags)
}

func TestRepositoryImpl_ListWeekdaysNestsClasses(t *testing.T) {
	ctx, repo, days := setupTestRepository(t)
	second, err := repo.StoreClass(ctx, Class{WeekdayId: days[0].Id, Position: 1, Name: "Art", StartMinute: 530, DurationMinutes: 45, Color: color.Accent})
	require.NoError(t, err)
	first, err := repo.StoreClass(ctx, Class{WeekdayId: days[0].Id, Position: 0, Name: "Math", StartMinute: 480, DurationMinutes: 45, Color: color.Accent})
	require.NoError(t, err)

	listed, err := repo.ListWeekdays(ctx)
	require.NoError(t, err)
	require.Len(t, listed, DaysInWeek)
	assert.Equal(t, time.Monday, listed[0].Label)
	require.Len(t, listed[0].Classes, 2)
	assert.Equal(t, first.Id, listed[0].Classes[0].Id)
	assert.Equal(t, second.Id, listed[0].Classes[1].Id)
	assert.Empty(t, listed[1].Classes)
}

func TestRepositoryImpl_UpdateOrdinalsSwapsInOneStatement(t *testing.T) {
	ctx, repo, days := setupTestRepository(t)
	ordinals := map[uuid.UUID]int{}
	for _, d := range days {
		ordinals[d.Id] = IndexFor(d.Label, SundayFirst)
	}

	err := repo.WithTransaction(ctx, func(txRepo Repository) error {
		return txRepo.UpdateOrdinals(ctx, ordinals)
	})
	require.NoError(t, err)

	sunday, err := repo.GetWeekday(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, sunday.Label)
}

func TestRepositoryImpl_DeleteClassesOfWeekday(t *testing.T) {
	ctx, repo, days := setupTestRepository(t)
	_, err := repo.StoreClass(ctx, Class{WeekdayId: days[2].Id, Name: "Math", DurationMinutes: 45, Color: color.Accent, Tags: []string{"x"}})
	require.NoError(t, err)
	_, err = repo.StoreClass(ctx, Class{WeekdayId: days[2].Id, Position: 1, Name: "Art", DurationMinutes: 45, Color: color.Accent})
	require.NoError(t, err)

	deleted, err := repo.DeleteClassesOfWeekday(ctx, days[2].Id)
	require.NoError(t, err)

	assert.Equal(t, 2, deleted)
	wednesday, err := repo.GetWeekday(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, wednesday.Classes)
}

func TestRepositoryImpl_RemoveTeacher(t *testing.T) {
	ctx, repo, days := setupTestRepository(t)
	smith, jones := uuid.New(), uuid.New()
	class, err := repo.StoreClass(ctx, Class{
		WeekdayId:         days[0].Id,
		Name:              "Math",
		DurationMinutes:   45,
		Color:             color.Accent,
		TeacherId:         &smith,
		SubjectTeacherIds: []uuid.UUID{smith, jones},
	})
	require.NoError(t, err)

	changed, err := repo.RemoveTeacher(ctx, smith)
	require.NoError(t, err)

	assert.Equal(t, 1, changed)
	got, err := repo.GetClass(ctx, class.Id)
	require.NoError(t, err)
	assert.Nil(t, got.TeacherId)
	assert.Equal(t, []uuid.UUID{jones}, got.SubjectTeacherIds)
}

func TestRepositoryImpl_GetClassMissing(t *testing.T) {
	ctx, repo, _ := setupTestRepository(t)

	_, err := repo.GetClass(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrClassNotFound)
}
