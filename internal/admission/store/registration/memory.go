package registration

import (
	"context"
	"sync"

	"registrar/internal/admission/models"
	"registrar/pkg/domain"
)

type key struct {
	student domain.StudentID
	session domain.SessionID
}

// MemoryStore is an in-memory registration store with upsert semantics on
// (student_id, session_id).
type MemoryStore struct {
	mu      sync.Mutex
	records map[key]*models.RegistrationRecord
}

// NewMemory constructs an empty in-memory registration store.
func NewMemory() *MemoryStore {
	return &MemoryStore{records: make(map[key]*models.RegistrationRecord)}
}

func (s *MemoryStore) Upsert(_ context.Context, record *models.RegistrationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{student: record.StudentID, session: record.SessionID}
	if existing, ok := s.records[k]; ok {
		existing.Level = record.Level
		existing.Status = record.Status
		return nil
	}
	clone := *record
	s.records[k] = &clone
	return nil
}

// Find returns the registration for a student and session. Test helper.
func (s *MemoryStore) Find(student domain.StudentID, session domain.SessionID) (*models.RegistrationRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[key{student: student, session: session}]
	if !ok {
		return nil, false
	}
	clone := *record
	return &clone, true
}

// Count reports the number of stored registrations. Test helper.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
