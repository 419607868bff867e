package store

import (
	"context"
	"sync"
)

type InMemoryStore struct {
	mu sync.RWMutex
	Db map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		Db: make(map[string][]byte),
	}
}

func (i *InMemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	v, ok := i.Db[key]
	if !ok {
		return nil, ErrNotFound
	}

	return append([]byte(nil), v...), nil
}

func (i *InMemoryStore) Set(_ context.Context, key string, value []byte) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.Db[key] = append([]byte(nil), value...)
	return nil
}

func (i *InMemoryStore) Close() error {
	return nil
}
