package subject

import (
	"context"
	"os"
	"testing"

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

func TestRepositoryImpl_StoreAndGet(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	smith, err := repo.StoreTeacher(ctx, Teacher{Name: "Smith"})
	require.NoError(t, err)
	jones, err := repo.StoreTeacher(ctx, Teacher{Name: "Jones"})
	require.NoError(t, err)

	stored, err := repo.Store(ctx, Subject{Name: "Math", Position: 0, Color: color.Accent, Teachers: []Teacher{smith, jones}})
	require.NoError(t, err)

	got, err := repo.Get(ctx, stored.Id)
	require.NoError(t, err)
	assert.Equal(t, "Math", got.Name)
	assert.Equal(t, color.Accent, got.Color)
	assert.Equal(t, []Teacher{smith, jones}, got.Teachers)
}

func TestRepositoryImpl_ListOrdersByPosition(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	second, err := repo.Store(ctx, Subject{Name: "Art", Position: 1, Color: color.Accent})
	require.NoError(t, err)
	first, err := repo.Store(ctx, Subject{Name: "Math", Position: 0, Color: color.Accent})
	require.NoError(t, err)

	subjects, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, first.Id, subjects[0].Id)
	assert.Equal(t, second.Id, subjects[1].Id)
	assert.Empty(t, subjects[0].Teachers)

	maxPosition, err := repo.MaxPosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, maxPosition)
}

func TestRepositoryImpl_TeacherNamesAreUnique(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	_, err := repo.StoreTeacher(ctx, Teacher{Name: "Smith"})
	require.NoError(t, err)

	_, err = repo.StoreTeacher(ctx, Teacher{Name: "SMITH"})
	assert.ErrorIs(t, err, ErrTeacherExists)

	found, err := repo.FindTeacherByName(ctx, "smith")
	require.NoError(t, err)
	assert.Equal(t, "Smith", found.Name)
}

func TestRepositoryImpl_DeleteTeacherUnlinksSubjects(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	smith, err := repo.StoreTeacher(ctx, Teacher{Name: "Smith"})
	require.NoError(t, err)
	subject, err := repo.Store(ctx, Subject{Name: "Math", Color: color.Accent, Teachers: []Teacher{smith}})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteTeacher(ctx, smith.Id))

	got, err := repo.Get(ctx, subject.Id)
	require.NoError(t, err)
	assert.Empty(t, got.Teachers)
	assert.ErrorIs(t, repo.DeleteTeacher(ctx, smith.Id), ErrTeacherNotFound)
}

func TestRepositoryImpl_GetMissing(t *testing.T) {
	ctx, repo := setupTestRepository(t)

	_, err := repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}
