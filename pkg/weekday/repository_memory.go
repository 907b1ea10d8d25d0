package weekday

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu       *sync.Mutex
	weekdays map[uuid.UUID]Weekday
	classes  map[uuid.UUID]Class
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		mu:       &sync.Mutex{},
		weekdays: make(map[uuid.UUID]Weekday),
		classes:  make(map[uuid.UUID]Class),
	}
}

func (r *memoryRepository) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txRepo := &memoryRepository{
		mu:       &sync.Mutex{},
		weekdays: maps.Clone(r.weekdays),
		classes:  maps.Clone(r.classes),
	}
	if err := fn(txRepo); err != nil {
		return err
	}
	r.weekdays = txRepo.weekdays
	r.classes = txRepo.classes
	return nil
}

func cloneClass(c Class) Class {
	c.Details = maps.Clone(c.Details)
	if c.Details == nil {
		c.Details = map[string]string{}
	}
	c.SubjectTeacherIds = slices.Clone(c.SubjectTeacherIds)
	if c.SubjectTeacherIds == nil {
		c.SubjectTeacherIds = []uuid.UUID{}
	}
	c.Tags = slices.Clone(c.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.TeacherId != nil {
		id := *c.TeacherId
		c.TeacherId = &id
	}
	return c
}

func (r *memoryRepository) classesOf(weekdayId uuid.UUID) []Class {
	classes := make([]Class, 0)
	for _, c := range r.classes {
		if c.WeekdayId == weekdayId {
			classes = append(classes, cloneClass(c))
		}
	}
	slices.SortFunc(classes, func(a, b Class) int { return cmp.Compare(a.Position, b.Position) })
	return classes
}

func (r *memoryRepository) ListWeekdays(ctx context.Context) ([]Weekday, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	days := make([]Weekday, 0, len(r.weekdays))
	for _, d := range r.weekdays {
		d.Classes = r.classesOf(d.Id)
		days = append(days, d)
	}
	slices.SortFunc(days, func(a, b Weekday) int { return cmp.Compare(a.Ordinal, b.Ordinal) })
	return days, nil
}

func (r *memoryRepository) GetWeekday(ctx context.Context, ordinal int) (Weekday, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.weekdays {
		if d.Ordinal == ordinal {
			d.Classes = r.classesOf(d.Id)
			return d, nil
		}
	}
	return Weekday{}, ErrWeekdayNotFound
}

func (r *memoryRepository) StoreWeekday(ctx context.Context, weekday Weekday) (Weekday, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	weekday.Id = uuid.New()
	weekday.Classes = nil
	r.weekdays[weekday.Id] = weekday
	weekday.Classes = []Class{}
	return weekday, nil
}

func (r *memoryRepository) SetCommonDay(ctx context.Context, id uuid.UUID, isCommonDay bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.weekdays[id]
	if !ok {
		return ErrWeekdayNotFound
	}
	d.IsCommonDay = isCommonDay
	r.weekdays[id] = d
	return nil
}

func (r *memoryRepository) UpdateOrdinals(ctx context.Context, ordinals map[uuid.UUID]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id := range ordinals {
		if _, ok := r.weekdays[id]; !ok {
			return ErrWeekdayNotFound
		}
	}
	for id, ordinal := range ordinals {
		d := r.weekdays[id]
		d.Ordinal = ordinal
		r.weekdays[id] = d
	}
	return nil
}

func (r *memoryRepository) GetClass(ctx context.Context, id uuid.UUID) (Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.classes[id]
	if !ok {
		return Class{}, ErrClassNotFound
	}
	return cloneClass(c), nil
}

func (r *memoryRepository) StoreClass(ctx context.Context, class Class) (Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.weekdays[class.WeekdayId]; !ok {
		return Class{}, ErrWeekdayNotFound
	}
	class.Id = uuid.New()
	class = cloneClass(class)
	r.classes[class.Id] = class
	return cloneClass(class), nil
}

func (r *memoryRepository) UpdateClass(ctx context.Context, class Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.classes[class.Id]
	if !ok {
		return ErrClassNotFound
	}
	class.WeekdayId = existing.WeekdayId
	class.Position = existing.Position
	r.classes[class.Id] = cloneClass(class)
	return nil
}

func (r *memoryRepository) DeleteClass(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.classes[id]; !ok {
		return ErrClassNotFound
	}
	delete(r.classes, id)
	return nil
}

func (r *memoryRepository) DeleteClassesOfWeekday(ctx context.Context, weekdayId uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, c := range r.classes {
		if c.WeekdayId == weekdayId {
			delete(r.classes, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memoryRepository) UpdateClassPositions(ctx context.Context, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for position, id := range ids {
		c, ok := r.classes[id]
		if !ok {
			return ErrClassNotFound
		}
		c.Position = position
		r.classes[id] = c
	}
	return nil
}

func (r *memoryRepository) RemoveTeacher(ctx context.Context, teacherId uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for id, c := range r.classes {
		hadTeacher := c.TeacherId != nil && *c.TeacherId == teacherId
		remaining := slices.DeleteFunc(slices.Clone(c.SubjectTeacherIds), func(t uuid.UUID) bool { return t == teacherId })
		if !hadTeacher && len(remaining) == len(c.SubjectTeacherIds) {
			continue
		}
		if hadTeacher {
			c.TeacherId = nil
		}
		c.SubjectTeacherIds = remaining
		r.classes[id] = c
		changed++
	}
	return changed, nil
}
