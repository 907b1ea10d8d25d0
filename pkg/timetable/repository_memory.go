package timetable

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// memoryRepository keeps periods in process memory. It backs the service when no database is
// reachable and in service tests.
type memoryRepository struct {
	mu      *sync.Mutex
	periods map[uuid.UUID]Period
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		mu:      &sync.Mutex{},
		periods: make(map[uuid.UUID]Period),
	}
}

// WithTransaction runs fn against a copy of the state and publishes the copy only on success. Other
// callers wait until the transaction finishes.
func (r *memoryRepository) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txRepo := &memoryRepository{mu: &sync.Mutex{}, periods: maps.Clone(r.periods)}
	if err := fn(txRepo); err != nil {
		return err
	}
	r.periods = txRepo.periods
	return nil
}

func (r *memoryRepository) List(ctx context.Context) ([]Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	periods := slices.Collect(maps.Values(r.periods))
	slices.SortFunc(periods, func(a, b Period) int {
		if a.Index != b.Index {
			return a.Index - b.Index
		}
		return a.StartMinute - b.StartMinute
	})
	if periods == nil {
		periods = []Period{}
	}
	return periods, nil
}

func (r *memoryRepository) Get(ctx context.Context, id uuid.UUID) (Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.periods[id]
	if !ok {
		return Period{}, ErrPeriodNotFound
	}
	return p, nil
}

func (r *memoryRepository) Store(ctx context.Context, period Period) (Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	period.Id = uuid.New()
	r.periods[period.Id] = period
	return period, nil
}

func (r *memoryRepository) Update(ctx context.Context, period Period) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.periods[period.Id]
	if !ok {
		return ErrPeriodNotFound
	}
	existing.StartMinute = period.StartMinute
	existing.DurationMinutes = period.DurationMinutes
	r.periods[period.Id] = existing
	return nil
}

func (r *memoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.periods[id]; !ok {
		return ErrPeriodNotFound
	}
	delete(r.periods, id)
	return nil
}

func (r *memoryRepository) DeleteAll(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := len(r.periods)
	r.periods = make(map[uuid.UUID]Period)
	return count, nil
}

func (r *memoryRepository) UpdatePositions(ctx context.Context, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for position, id := range ids {
		p, ok := r.periods[id]
		if !ok {
			return ErrPeriodNotFound
		}
		p.Index = position
		r.periods[id] = p
	}
	return nil
}
