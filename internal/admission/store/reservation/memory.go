package reservation

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory reservation store for tests. TTL expiry is not
// modelled; reservations persist until released.
type MemoryStore struct {
	mu       sync.Mutex
	reserved map[string]bool
}

// NewMemory constructs an empty in-memory reservation store.
func NewMemory() *MemoryStore {
	return &MemoryStore{reserved: make(map[string]bool)}
}

func (s *MemoryStore) Reserve(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reserved[email] {
		return false, nil
	}
	s.reserved[email] = true
	return true, nil
}

func (s *MemoryStore) Release(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reserved, email)
	return nil
}
