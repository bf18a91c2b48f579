package session

import (
	"sync"
	"time"

	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

type InMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		sessions: make(map[string]*Session),
	}
}

func (r *InMemoryRepository) Save(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.UserID] = s
	return nil
}

func (r *InMemoryRepository) Get(userID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[userID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return s, nil
}

func (r *InMemoryRepository) Delete(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, userID)
	return nil
}

func (r *InMemoryRepository) Expire(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, s := range r.sessions {
		s.mu.Lock()
		stale := s.touched.Before(cutoff)
		s.mu.Unlock()

		if stale {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}
