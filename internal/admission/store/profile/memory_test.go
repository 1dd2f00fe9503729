package profile

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/admission/models"
	"registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

func newProfile(email string) *models.Profile {
	return &models.Profile{
		ID:               domain.IdentityID(uuid.New()),
		Email:            email,
		FirstName:        "Jane",
		LastName:         "Doe",
		Role:             models.RoleStudent,
		OnboardingStatus: models.OnboardingPending,
	}
}

func TestInsert_DuplicateEmailIsConflict(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Insert(ctx, newProfile("jane@x.com")))

	err := store.Insert(ctx, newProfile("jane@x.com"))
	assert.ErrorIs(t, err, sentinel.ErrConflict)
	assert.Equal(t, 1, store.Count())
}

func TestDelete_FreesEmail(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	p := newProfile("jane@x.com")
	require.NoError(t, store.Insert(ctx, p))
	require.NoError(t, store.Delete(ctx, p.ID))

	exists, err := store.EmailExists(ctx, "jane@x.com")
	require.NoError(t, err)
	assert.False(t, exists)

	// Re-provisioning the same email after a rollback must work.
	require.NoError(t, store.Insert(ctx, newProfile("jane@x.com")))
}

func TestSetOnboardingStatus(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	p := newProfile("jane@x.com")
	require.NoError(t, store.Insert(ctx, p))
	require.NoError(t, store.SetOnboardingStatus(ctx, p.ID, models.OnboardingActive))

	found, err := store.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingActive, found.OnboardingStatus)

	err = store.SetOnboardingStatus(ctx, domain.IdentityID(uuid.New()), models.OnboardingActive)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
