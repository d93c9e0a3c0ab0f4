package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/quill/pkg/domain"
)

type entry struct {
	value   string
	expires time.Time
}

// Store implements ports.KeyValueStore in memory.
// Safe for concurrent use. Expired keys are removed lazily on read.
type Store struct {
	data map[string]entry
	mu   sync.RWMutex
	now  func() time.Time
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

// Set stores value under key. A zero ttl keeps the key until it is deleted.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = e
	return nil
}

// Get retrieves the value of key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return "", domain.ErrKeyNotFound
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		s.mu.Lock()
		if cur, ok := s.data[key]; ok && cur == e {
			delete(s.data, key)
		}
		s.mu.Unlock()
		return "", domain.ErrKeyNotFound
	}
	return e.value, nil
}

// Delete removes the key.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
