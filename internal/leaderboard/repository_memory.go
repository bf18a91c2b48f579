package leaderboard

import (
	"context"
	"sync"

	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*UserAggregate
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*UserAggregate)}
}

func (m *MemoryStore) Get(ctx context.Context, userID string) (*UserAggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	agg, ok := m.users[userID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return agg.Clone(), nil
}

func (m *MemoryStore) Update(ctx context.Context, userID string, fn UpdateFunc) (*UserAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	agg := NewAggregate()
	if cur, ok := m.users[userID]; ok {
		agg = cur.Clone()
	}

	if err := fn(agg); err != nil {
		return nil, err
	}

	m.users[userID] = agg
	return agg.Clone(), nil
}

func (m *MemoryStore) All(ctx context.Context) (map[string]*UserAggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]*UserAggregate, len(m.users))
	for id, agg := range m.users {
		out[id] = agg.Clone()
	}
	return out, nil
}

func (m *MemoryStore) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return core.ErrNotFound
	}
	delete(m.users, userID)
	return nil
}
