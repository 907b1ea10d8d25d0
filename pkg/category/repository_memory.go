package category

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu         *sync.Mutex
	categories map[uuid.UUID]Category
	events     map[uuid.UUID]Event
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		mu:         &sync.Mutex{},
		categories: make(map[uuid.UUID]Category),
		events:     make(map[uuid.UUID]Event),
	}
}

func (r *memoryRepository) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txRepo := &memoryRepository{
		mu:         &sync.Mutex{},
		categories: maps.Clone(r.categories),
		events:     maps.Clone(r.events),
	}
	if err := fn(txRepo); err != nil {
		return err
	}
	r.categories = txRepo.categories
	r.events = txRepo.events
	return nil
}

func cloneEvent(e Event) Event {
	e.Tags = slices.Clone(e.Tags)
	if e.Tags == nil {
		e.Tags = []string{}
	}
	e.Alarms = slices.Clone(e.Alarms)
	if e.Alarms == nil {
		e.Alarms = []Alarm{}
	}
	return e
}

func (r *memoryRepository) eventsOf(categoryId uuid.UUID) []Event {
	events := make([]Event, 0)
	for _, e := range r.events {
		if e.CategoryId == categoryId {
			events = append(events, cloneEvent(e))
		}
	}
	slices.SortFunc(events, func(a, b Event) int { return cmp.Compare(a.Position, b.Position) })
	return events
}

func (r *memoryRepository) ListCategories(ctx context.Context) ([]Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	categories := make([]Category, 0, len(r.categories))
	for _, c := range r.categories {
		c.Events = r.eventsOf(c.Id)
		categories = append(categories, c)
	}
	slices.SortFunc(categories, func(a, b Category) int { return cmp.Compare(a.Position, b.Position) })
	return categories, nil
}

func (r *memoryRepository) GetCategory(ctx context.Context, id uuid.UUID) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.categories[id]
	if !ok {
		return Category{}, ErrCategoryNotFound
	}
	c.Events = r.eventsOf(id)
	return c, nil
}

func (r *memoryRepository) StoreCategory(ctx context.Context, category Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	category.Id = uuid.New()
	category.Events = nil
	r.categories[category.Id] = category
	category.Events = []Event{}
	return category, nil
}

func (r *memoryRepository) UpdateCategory(ctx context.Context, category Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.categories[category.Id]
	if !ok {
		return ErrCategoryNotFound
	}
	existing.Name = category.Name
	existing.Color = category.Color
	existing.Description = category.Description
	r.categories[category.Id] = existing
	return nil
}

func (r *memoryRepository) DeleteCategory(ctx context.Context, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return 0, ErrCategoryNotFound
	}
	deleted := 0
	for eventId, e := range r.events {
		if e.CategoryId == id {
			delete(r.events, eventId)
			deleted++
		}
	}
	delete(r.categories, id)
	return deleted, nil
}

func (r *memoryRepository) UpdateCategoryPositions(ctx context.Context, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for position, id := range ids {
		c, ok := r.categories[id]
		if !ok {
			return ErrCategoryNotFound
		}
		c.Position = position
		r.categories[id] = c
	}
	return nil
}

func (r *memoryRepository) MaxCategoryPosition(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	maxPosition := -1
	for _, c := range r.categories {
		maxPosition = max(maxPosition, c.Position)
	}
	return maxPosition, nil
}

func (r *memoryRepository) ListEvents(ctx context.Context) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]Event, 0, len(r.events))
	for _, e := range r.events {
		events = append(events, cloneEvent(e))
	}
	slices.SortFunc(events, func(a, b Event) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})
	return events, nil
}

func (r *memoryRepository) GetEvent(ctx context.Context, id uuid.UUID) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[id]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	return cloneEvent(e), nil
}

func (r *memoryRepository) withAlarmIds(event Event) Event {
	alarms := make([]Alarm, 0, len(event.Alarms))
	for _, a := range event.Alarms {
		a.Id = uuid.New()
		a.EventId = event.Id
		alarms = append(alarms, a)
	}
	slices.SortStableFunc(alarms, func(a, b Alarm) int { return a.TriggerAt.Compare(b.TriggerAt) })
	event.Alarms = alarms
	return cloneEvent(event)
}

func (r *memoryRepository) StoreEvent(ctx context.Context, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[event.CategoryId]; !ok {
		return Event{}, ErrCategoryNotFound
	}
	event.Id = uuid.New()
	event = r.withAlarmIds(event)
	r.events[event.Id] = event
	return cloneEvent(event), nil
}

func (r *memoryRepository) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.events[event.Id]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	event.CategoryId = existing.CategoryId
	event.Position = existing.Position
	event = r.withAlarmIds(event)
	r.events[event.Id] = event
	return cloneEvent(event), nil
}

func (r *memoryRepository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *memoryRepository) UpdateEventPositions(ctx context.Context, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for position, id := range ids {
		e, ok := r.events[id]
		if !ok {
			return ErrEventNotFound
		}
		e.Position = position
		r.events[id] = e
	}
	return nil
}

func (r *memoryRepository) DueAlarms(ctx context.Context, from, to time.Time) ([]DueAlarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	due := make([]DueAlarm, 0)
	for _, e := range r.events {
		for _, a := range e.Alarms {
			if !a.Fired && a.TriggerAt.After(from) && !a.TriggerAt.After(to) {
				due = append(due, DueAlarm{Alarm: a, EventName: e.Name})
			}
		}
	}
	slices.SortFunc(due, func(a, b DueAlarm) int { return a.TriggerAt.Compare(b.TriggerAt) })
	return due, nil
}

func (r *memoryRepository) MarkAlarmFired(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for eventId, e := range r.events {
		for i, a := range e.Alarms {
			if a.Id == id {
				e.Alarms = slices.Clone(e.Alarms)
				e.Alarms[i].Fired = true
				r.events[eventId] = e
				return nil
			}
		}
	}
	return ErrAlarmNotFound
}
