package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-signing-key")
	identityID := domain.IdentityID(uuid.New())

	token, err := issuer.Issue(identityID, time.Now())
	require.NoError(t, err)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, identityID, got)
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-signing-key")

	token, err := issuer.Issue(domain.IdentityID(uuid.New()), time.Now().Add(-2*activationTokenTTL))
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestVerify_RejectsWrongKey(t *testing.T) {
	token, err := NewTokenIssuer("key-a").Issue(domain.IdentityID(uuid.New()), time.Now())
	require.NoError(t, err)

	_, err = NewTokenIssuer("key-b").Verify(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestVerify_RejectsGarbage(t *testing.T) {
	_, err := NewTokenIssuer("key").Verify("not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
