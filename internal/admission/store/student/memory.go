package student

import (
	"context"
	"sync"

	"registrar/internal/admission/models"
	"registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// MemoryStore is an in-memory student store mirroring the postgres store's
// contract, including matric uniqueness.
type MemoryStore struct {
	mu       sync.Mutex
	students map[domain.StudentID]*models.StudentRecord
	byMatric map[string]domain.StudentID
}

// NewMemory constructs an empty in-memory student store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		students: make(map[domain.StudentID]*models.StudentRecord),
		byMatric: make(map[string]domain.StudentID),
	}
}

func (s *MemoryStore) Insert(_ context.Context, record *models.StudentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.students[record.ID]; taken {
		return sentinel.ErrConflict
	}
	if _, taken := s.byMatric[record.MatricNo]; taken {
		return sentinel.ErrConflict
	}
	clone := *record
	s.students[record.ID] = &clone
	s.byMatric[record.MatricNo] = record.ID
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id domain.StudentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.students[id]; ok {
		delete(s.byMatric, record.MatricNo)
		delete(s.students, id)
	}
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id domain.StudentID) (*models.StudentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.students[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

// Count reports the number of stored students. Test helper.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.students)
}
