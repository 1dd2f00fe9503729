package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and external-service
// clients return these (optionally wrapped) so services can translate them
// into domain errors with the right code.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in the store or catalog
// - ErrConflict: a uniqueness constraint rejected the write
// - ErrUnavailable: collaborator temporarily unreachable
//
// For caller-input problems use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
