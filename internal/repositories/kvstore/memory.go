package kvstore

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
)

type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string]string
}

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Updater    = (*MemoryRepository)(nil)
)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string]string)}
}

func (r *MemoryRepository) Get(ctx context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[key]
	if !ok {
		return "", common.ErrorNotFound
	}
	return v, nil
}

func (r *MemoryRepository) Set(ctx context.Context, key string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = value
	return nil
}

func (r *MemoryRepository) Remove(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, key string, fn UpdateFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[key]
	next, err := fn(cur, ok)
	if err != nil {
		return err
	}
	r.data[key] = next
	return nil
}

func (r *MemoryRepository) Close() error { return nil }
