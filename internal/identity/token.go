package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

// activationTokenTTL bounds how long an invite link stays usable.
const activationTokenTTL = 72 * time.Hour

const purposeActivation = "activation"

// TokenIssuer signs and verifies the activation tokens embedded in invite
// links. Tokens are purpose-bound so a token minted here can never be
// replayed against any other authenticated surface.
type TokenIssuer struct {
	signingKey []byte
	ttl        time.Duration
}

// NewTokenIssuer constructs a TokenIssuer with the shared signing key.
func NewTokenIssuer(signingKey string) *TokenIssuer {
	return &TokenIssuer{signingKey: []byte(signingKey), ttl: activationTokenTTL}
}

type activationClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Issue mints an activation token for the identity account.
func (i *TokenIssuer) Issue(identityID domain.IdentityID, now time.Time) (string, error) {
	claims := activationClaims{
		Purpose: purposeActivation,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign activation token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry, and purpose, returning the identity id
// the token was minted for. All failures carry CodeUnauthorized.
func (i *TokenIssuer) Verify(token string) (domain.IdentityID, error) {
	var claims activationClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return domain.IdentityID{}, dErrors.New(dErrors.CodeUnauthorized, "activation token is invalid or expired")
	}
	if claims.Purpose != purposeActivation {
		return domain.IdentityID{}, dErrors.New(dErrors.CodeUnauthorized, "activation token is invalid or expired")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return domain.IdentityID{}, dErrors.New(dErrors.CodeUnauthorized, "activation token is invalid or expired")
	}
	return domain.IdentityID(id), nil
}
