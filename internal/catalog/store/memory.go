package store

import (
	"context"
	"sync"

	"registrar/internal/catalog"
	"registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// MemoryStore is an in-memory catalog for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	programs map[domain.ProgramID]catalog.Program
}

// NewMemory constructs an empty in-memory catalog store.
func NewMemory() *MemoryStore {
	return &MemoryStore{programs: make(map[domain.ProgramID]catalog.Program)}
}

// Seed adds or replaces a program.
func (s *MemoryStore) Seed(program catalog.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programs[program.ID] = program
}

func (s *MemoryStore) FindProgram(_ context.Context, id domain.ProgramID) (*catalog.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	program, ok := s.programs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &program, nil
}
