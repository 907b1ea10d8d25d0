package subject

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu       *sync.Mutex
	subjects map[uuid.UUID]Subject
	teachers map[uuid.UUID]Teacher
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		mu:       &sync.Mutex{},
		subjects: make(map[uuid.UUID]Subject),
		teachers: make(map[uuid.UUID]Teacher),
	}
}

func (r *memoryRepository) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txRepo := &memoryRepository{
		mu:       &sync.Mutex{},
		subjects: maps.Clone(r.subjects),
		teachers: maps.Clone(r.teachers),
	}
	if err := fn(txRepo); err != nil {
		return err
	}
	r.subjects = txRepo.subjects
	r.teachers = txRepo.teachers
	return nil
}

// resolved replaces the stored teacher names, which may have been renamed or deleted.
func (r *memoryRepository) resolved(s Subject) Subject {
	teachers := make([]Teacher, 0, len(s.Teachers))
	for _, t := range s.Teachers {
		if stored, ok := r.teachers[t.Id]; ok {
			teachers = append(teachers, stored)
		}
	}
	s.Teachers = teachers
	return s
}

func (r *memoryRepository) List(ctx context.Context) ([]Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subjects := make([]Subject, 0, len(r.subjects))
	for _, s := range r.subjects {
		subjects = append(subjects, r.resolved(s))
	}
	slices.SortFunc(subjects, func(a, b Subject) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), strings.Compare(a.Id.String(), b.Id.String()))
	})
	return subjects, nil
}

func (r *memoryRepository) Get(ctx context.Context, id uuid.UUID) (Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.subjects[id]
	if !ok {
		return Subject{}, ErrSubjectNotFound
	}
	return r.resolved(s), nil
}

func (r *memoryRepository) Store(ctx context.Context, subject Subject) (Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range subject.Teachers {
		if _, ok := r.teachers[t.Id]; !ok {
			return Subject{}, ErrTeacherNotFound
		}
	}
	subject.Id = uuid.New()
	subject.Teachers = slices.Clone(subject.Teachers)
	r.subjects[subject.Id] = subject
	return subject, nil
}

func (r *memoryRepository) Update(ctx context.Context, subject Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.subjects[subject.Id]
	if !ok {
		return ErrSubjectNotFound
	}
	for _, t := range subject.Teachers {
		if _, ok := r.teachers[t.Id]; !ok {
			return ErrTeacherNotFound
		}
	}
	existing.Name = subject.Name
	existing.Color = subject.Color
	existing.Teachers = slices.Clone(subject.Teachers)
	r.subjects[subject.Id] = existing
	return nil
}

func (r *memoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subjects[id]; !ok {
		return ErrSubjectNotFound
	}
	delete(r.subjects, id)
	return nil
}

func (r *memoryRepository) UpdatePositions(ctx context.Context, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for position, id := range ids {
		s, ok := r.subjects[id]
		if !ok {
			return ErrSubjectNotFound
		}
		s.Position = position
		r.subjects[id] = s
	}
	return nil
}

func (r *memoryRepository) MaxPosition(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	maxPosition := -1
	for _, s := range r.subjects {
		maxPosition = max(maxPosition, s.Position)
	}
	return maxPosition, nil
}

func (r *memoryRepository) ListTeachers(ctx context.Context) ([]Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	teachers := slices.Collect(maps.Values(r.teachers))
	slices.SortFunc(teachers, func(a, b Teacher) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	if teachers == nil {
		teachers = []Teacher{}
	}
	return teachers, nil
}

func (r *memoryRepository) GetTeacher(ctx context.Context, id uuid.UUID) (Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.teachers[id]
	if !ok {
		return Teacher{}, ErrTeacherNotFound
	}
	return t, nil
}

func (r *memoryRepository) FindTeacherByName(ctx context.Context, name string) (Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.teachers {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return Teacher{}, ErrTeacherNotFound
}

func (r *memoryRepository) StoreTeacher(ctx context.Context, teacher Teacher) (Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.teachers {
		if strings.EqualFold(t.Name, teacher.Name) {
			return Teacher{}, ErrTeacherExists
		}
	}
	teacher.Id = uuid.New()
	r.teachers[teacher.Id] = teacher
	return teacher, nil
}

func (r *memoryRepository) DeleteTeacher(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.teachers[id]; !ok {
		return ErrTeacherNotFound
	}
	delete(r.teachers, id)
	for subjectId, s := range r.subjects {
		s.Teachers = slices.DeleteFunc(slices.Clone(s.Teachers), func(t Teacher) bool { return t.Id == id })
		r.subjects[subjectId] = s
	}
	return nil
}
