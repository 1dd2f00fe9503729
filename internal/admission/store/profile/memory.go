package profile

import (
	"context"
	"sync"

	"registrar/internal/admission/models"
	"registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// MemoryStore is an in-memory profile store mirroring the postgres store's
// contract, including the email uniqueness constraint.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[domain.IdentityID]*models.Profile
	byEmail  map[string]domain.IdentityID
}

// NewMemory constructs an empty in-memory profile store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[domain.IdentityID]*models.Profile),
		byEmail:  make(map[string]domain.IdentityID),
	}
}

func (s *MemoryStore) Insert(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[p.Email]; taken {
		return sentinel.ErrConflict
	}
	if _, taken := s.profiles[p.ID]; taken {
		return sentinel.ErrConflict
	}
	clone := *p
	s.profiles[p.ID] = &clone
	s.byEmail[p.Email] = p.ID
	return nil
}

func (s *MemoryStore) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *MemoryStore) Delete(_ context.Context, id domain.IdentityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[id]; ok {
		delete(s.byEmail, p.Email)
		delete(s.profiles, id)
	}
	return nil
}

func (s *MemoryStore) SetOnboardingStatus(_ context.Context, id domain.IdentityID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.OnboardingStatus = status
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id domain.IdentityID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

// Count reports the number of stored profiles. Test helper.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profiles)
}
