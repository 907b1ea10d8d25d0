package timetable

import (
	"context"
	"os"
	"testing"

	"github.com/classon/classon/internal/test_utils"
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

func TestRepositoryImpl_StoreAndList(t *testing.T) {
	ctx, repo := setupTestRepository(t)

	second, err := repo.Store(ctx, Period{Index: 1, StartMinute: 535, DurationMinutes: 45})
	require.NoError(t, err)
	first, err := repo.Store(ctx, Period{Index: 0, StartMinute: 480, DurationMinutes: 45})
	require.NoError(t, err)

	periods, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, first.Id, periods[0].Id)
	assert.Equal(t, second.Id, periods[1].Id)
}

func TestRepositoryImpl_GetMissing(t *testing.T) {
	ctx, repo := setupTestRepository(t)

	_, err := repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrPeriodNotFound)
}

func TestRepositoryImpl_UpdateAndDelete(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	p, err := repo.Store(ctx, Period{Index: 0, StartMinute: 480, DurationMinutes: 45})
	require.NoError(t, err)

	p.StartMinute = 500
	require.NoError(t, repo.Update(ctx, p))
	got, err := repo.Get(ctx, p.Id)
	require.NoError(t, err)
	assert.Equal(t, 500, got.StartMinute)

	require.NoError(t, repo.Delete(ctx, p.Id))
	assert.ErrorIs(t, repo.Delete(ctx, p.Id), ErrPeriodNotFound)
}

func TestRepositoryImpl_WithTransaction(t *testing.T) {
	t.Run("should roll back on error", func(t *testing.T) {
		ctx, repo := setupTestRepository(t)

		err := repo.WithTransaction(ctx, func(txRepo Repository) error {
			if _, err := txRepo.Store(ctx, Period{Index: 0, StartMinute: 480, DurationMinutes: 45}); err != nil {
				return err
			}
			return assert.AnError
		})

		assert.ErrorIs(t, err, assert.AnError)
		periods, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, periods)
	})

	t.Run("should reject an invalid period without partial writes", func(t *testing.T) {
		ctx, repo := setupTestRepository(t)

		err := repo.WithTransaction(ctx, func(txRepo Repository) error {
			if _, err := txRepo.Store(ctx, Period{Index: 0, StartMinute: 480, DurationMinutes: 45}); err != nil {
				return err
			}
			_, err := txRepo.Store(ctx, Period{Index: 1, StartMinute: 2000, DurationMinutes: 45})
			return err
		})

		assert.Error(t, err)
		periods, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, periods)
	})
}
