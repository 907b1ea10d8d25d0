package subject

import (
	"context"
	"testing"

	"github.com/classon/classon/internal/event_bus"
	"github.com/classon/classon/internal/validation"
	"github.com/classon/classon/pkg/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServiceTest(t *testing.T) (*ServiceImpl, *event_bus.EventBus, context.Context) {
	bus := event_bus.NewEventBus()
	return NewService(NewMemoryRepository(), bus), bus, context.Background()
}

func TestService_Add(t *testing.T) {
	s, _, ctx := setupServiceTest(t)

	math, err := s.Add(ctx, SubjectDraft{Name: " Math ", Color: "#FF0000", Teachers: []string{"Smith", "smith", " Jones "}})
	require.NoError(t, err)
	art, err := s.Add(ctx, SubjectDraft{Name: "Art"})
	require.NoError(t, err)

	assert.Equal(t, "Math", math.Name)
	assert.Equal(t, color.RGB{R: 0xFF}, math.Color)
	require.Len(t, math.Teachers, 2)
	assert.Equal(t, "Smith", math.Teachers[0].Name)
	assert.Equal(t, "Jones", math.Teachers[1].Name)
	assert.Equal(t, 0, math.Position)
	assert.Equal(t, 1, art.Position)
	assert.Equal(t, color.Accent, art.Color)
}

func TestService_AddRejectsEmptyName(t *testing.T) {
	s, _, ctx := setupServiceTest(t)

	_, err := s.Add(ctx, SubjectDraft{Name: "   "})

	var validationErr *validation.Error
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Name", validationErr.Fields[0].Field)
}

func TestService_AddRejectsInvalidColor(t *testing.T) {
	s, _, ctx := setupServiceTest(t)

	_, err := s.Add(ctx, SubjectDraft{Name: "Math", Color: "red"})

	var validationErr *validation.Error
	assert.ErrorAs(t, err, &validationErr)
}

func TestService_TeachersAreSharedBetweenSubjects(t *testing.T) {
	s, _, ctx := setupServiceTest(t)

	math, err := s.Add(ctx, SubjectDraft{Name: "Math", Teachers: []string{"Smith"}})
	require.NoError(t, err)
	physics, err := s.Add(ctx, SubjectDraft{Name: "Physics", Teachers: []string{"SMITH"}})
	require.NoError(t, err)

	assert.Equal(t, math.Teachers[0].Id, physics.Teachers[0].Id)
	teachers, err := s.ListTeachers(ctx)
	require.NoError(t, err)
	assert.Len(t, teachers, 1)
}

func TestService_Update(t *testing.T) {
	s, _, ctx := setupServiceTest(t)
	math, err := s.Add(ctx, SubjectDraft{Name: "Math", Teachers: []string{"Smith"}})
	require.NoError(t, err)

	updated, err := s.Update(ctx, math.Id, SubjectDraft{Name: "Algebra", Teachers: []string{"Jones"}})
	require.NoError(t, err)

	assert.Equal(t, "Algebra", updated.Name)
	require.Len(t, updated.Teachers, 1)
	assert.Equal(t, "Jones", updated.Teachers[0].Name)
	stored, err := s.Get(ctx, math.Id)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestService_UpdateFailureKeepsStoredSubject(t *testing.T) {
	s, _, ctx := setupServiceTest(t)
	math, err := s.Add(ctx, SubjectDraft{Name: "Math"})
	require.NoError(t, err)

	_, err = s.Update(ctx, math.Id, SubjectDraft{Name: ""})
	require.Error(t, err)

	stored, err := s.Get(ctx, math.Id)
	require.NoError(t, err)
	assert.Equal(t, "Math", stored.Name)
}

func TestService_DeleteKeepsTeachersAndCompactsPositions(t *testing.T) {
	s, _, ctx := setupServiceTest(t)
	math, _ := s.Add(ctx, SubjectDraft{Name: "Math", Teachers: []string{"Smith"}})
	_, _ = s.Add(ctx, SubjectDraft{Name: "Art"})

	require.NoError(t, s.Delete(ctx, math.Id))

	subjects, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, 0, subjects[0].Position)
	teachers, _ := s.ListTeachers(ctx)
	assert.Len(t, teachers, 1)
	assert.ErrorIs(t, s.Delete(ctx, math.Id), ErrSubjectNotFound)
}

func TestService_Move(t *testing.T) {
	s, _, ctx := setupServiceTest(t)
	a, _ := s.Add(ctx, SubjectDraft{Name: "A"})
	b, _ := s.Add(ctx, SubjectDraft{Name: "B"})
	c, _ := s.Add(ctx, SubjectDraft{Name: "C"})

	subjects, err := s.Move(ctx, a.Id, 2)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{b.Id, c.Id, a.Id}, idsOf(subjects))
	for i, subject := range subjects {
		assert.Equal(t, i, subject.Position)
	}
}

func TestService_DeleteTeacherPublishesEvent(t *testing.T) {
	s, bus, ctx := setupServiceTest(t)
	math, _ := s.Add(ctx, SubjectDraft{Name: "Math", Teachers: []string{"Smith", "Jones"}})
	smith := math.Teachers[0]
	var received []event_bus.TeacherDeleted
	event_bus.SubscribeTyped(bus, event_bus.TeacherDeletedType, func(e event_bus.EventT[event_bus.TeacherDeleted]) error {
		received = append(received, e.Data)
		return nil
	})

	require.NoError(t, s.DeleteTeacher(ctx, smith.Id))

	require.Len(t, received, 1)
	assert.Equal(t, smith.Id, received[0].Id)
	stored, _ := s.Get(ctx, math.Id)
	require.Len(t, stored.Teachers, 1)
	assert.Equal(t, "Jones", stored.Teachers[0].Name)
}

func TestService_DeleteMissingTeacher(t *testing.T) {
	s, _, ctx := setupServiceTest(t)

	assert.ErrorIs(t, s.DeleteTeacher(ctx, uuid.New()), ErrTeacherNotFound)
}

func TestService_ImportDoesNotDuplicateTeachers(t *testing.T) {
	s, _, ctx := setupServiceTest(t)
	_, err := s.Add(ctx, SubjectDraft{Name: "Math", Teachers: []string{"Smith"}})
	require.NoError(t, err)

	imported, err := s.Import(ctx, []SubjectDraft{
		{Name: "Math", Teachers: []string{"Smith"}},
		{Name: "History", Teachers: []string{"smith", "Brown"}},
	})
	require.NoError(t, err)

	require.Len(t, imported, 2)
	assert.Equal(t, 1, imported[0].Position)
	assert.Equal(t, 2, imported[1].Position)
	teachers, _ := s.ListTeachers(ctx)
	assert.Len(t, teachers, 2)
	subjects, _ := s.List(ctx)
	assert.Len(t, subjects, 3)
}

func TestService_ImportIsAllOrNothing(t *testing.T) {
	s, _, ctx := setupServiceTest(t)

	_, err := s.Import(ctx, []SubjectDraft{{Name: "Math"}, {Name: ""}})
	require.Error(t, err)

	subjects, _ := s.List(ctx)
	assert.Empty(t, subjects)
}
