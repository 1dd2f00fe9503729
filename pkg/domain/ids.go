// Package domain holds typed identifiers shared across features.
//
// Each entity gets its own ID type so a ProgramID can never be passed where a
// SessionID is expected. Construct via the Parse functions at trust
// boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "registrar/pkg/domain-errors"
)

// Typed identifiers. IdentityID doubles as the Profile key: a profile row is
// keyed by the identity account it belongs to.
type (
	ProgramID    uuid.UUID
	SessionID    uuid.UUID
	DepartmentID uuid.UUID
	IdentityID   uuid.UUID
	StudentID    uuid.UUID
)

// parseUUID enforces the identifier format invariant: a canonical 36-character
// UUID that is non-empty and non-nil. Malformed ids fail here, at the
// boundary, not in a downstream lookup.
func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeValidation, "%s is required", what)
	}
	if len(s) != 36 {
		return uuid.Nil, dErrors.Newf(dErrors.CodeValidation, "%s is not a valid identifier", what)
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeValidation, "%s is not a valid identifier", what)
	}
	return id, nil
}

// ParseProgramID constructs a ProgramID from external input.
func ParseProgramID(s string) (ProgramID, error) {
	id, err := parseUUID(s, "program_id")
	return ProgramID(id), err
}

// ParseSessionID constructs a SessionID from external input.
func ParseSessionID(s string) (SessionID, error) {
	id, err := parseUUID(s, "session_id")
	return SessionID(id), err
}

func (p ProgramID) String() string    { return uuid.UUID(p).String() }
func (s SessionID) String() string    { return uuid.UUID(s).String() }
func (d DepartmentID) String() string { return uuid.UUID(d).String() }
func (i IdentityID) String() string   { return uuid.UUID(i).String() }
func (s StudentID) String() string    { return uuid.UUID(s).String() }

func (i IdentityID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
