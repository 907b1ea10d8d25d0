package settings

import (
	"context"
	"maps"
	"sync"
)

type memoryRepository struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryRepository() Repository {
	return &memoryRepository{values: make(map[string]string)}
}

func (r *memoryRepository) Load(ctx context.Context) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.values), nil
}

func (r *memoryRepository) Save(ctx context.Context, values map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	maps.Copy(r.values, values)
	return nil
}
