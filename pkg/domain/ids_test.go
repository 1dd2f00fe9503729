package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "registrar/pkg/domain-errors"
)

// TestParseProgramID_Invariants validates the boundary invariant:
// ids must be canonical, non-empty, non-nil UUIDs. Malformed ids fail
// validation here rather than surfacing as a catalog lookup miss.
func TestParseProgramID_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty string", "", true},
		{"not a uuid", "not-a-uuid", true},
		{"nil uuid", uuid.Nil.String(), true},
		{"too short", "550e8400", true},
		{"oversized", strings.Repeat("a", 100), true},
		{"compact form rejected", "550e8400e29b41d4a716446655440000", true},
		{"valid lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
		{"valid uppercase", "550E8400-E29B-41D4-A716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProgramID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestParseSessionID(t *testing.T) {
	valid := uuid.New()
	id, err := ParseSessionID(valid.String())
	require.NoError(t, err)
	assert.Equal(t, SessionID(valid), id)

	_, err = ParseSessionID("")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

// TestTypeDistinction verifies the compiler enforces id type safety.
func TestTypeDistinction(t *testing.T) {
	programID := ProgramID(uuid.New())
	sessionID := SessionID(uuid.New())

	// These would fail to compile if the types were interchangeable:
	// var _ ProgramID = sessionID   // compile error
	// var _ SessionID = programID   // compile error

	assert.NotEqual(t, uuid.UUID(programID), uuid.UUID(sessionID))
}
