package models

import (
	"time"

	"github.com/google/uuid"

	"registrar/pkg/domain"
)

// AdmissionType distinguishes fresh admissions from direct entry.
type AdmissionType string

const (
	AdmissionFresh       AdmissionType = "fresh"
	AdmissionDirectEntry AdmissionType = "direct_entry"
)

// Onboarding status lifecycle for a profile. A profile is created pending and
// flips to active when the invite's activation link is followed.
const (
	OnboardingPending = "pending"
	OnboardingActive  = "active"
)

// RoleStudent is the only role this workflow provisions.
const RoleStudent = "student"

// StatusActive is the fixed status of a freshly written student record.
const StatusActive = "active"

// StatusRegistered is the fixed status of a registration row.
const StatusRegistered = "registered"

// Profile is the person record, one-to-one with the external identity
// account and keyed by the same id. Email is globally unique; the database
// constraint is the authoritative guard.
type Profile struct {
	ID               domain.IdentityID
	Email            string
	FirstName        string
	LastName         string
	MiddleName       *string
	Phone            *string
	Gender           *string
	DateOfBirth      *string
	StateOfOrigin    *string
	LGAOfOrigin      *string
	NIN              *string
	Religion         *string
	Address          *string
	GuardianName     *string
	GuardianPhone    *string
	GuardianEmail    *string
	GuardianAddress  *string
	GuardianRelation *string
	Role             string
	OnboardingStatus string
	CreatedAt        time.Time
}

// StudentRecord is the academic record, one-to-one with Profile and keyed by
// the profile id.
//
// Invariants:
//   - DepartmentID is always derived from the program catalog, never
//     caller-supplied
//   - MatricNo is immutable once assigned and globally unique
//   - PreviousSchool/PreviousQualification are nil unless the admission type
//     is direct_entry
type StudentRecord struct {
	ID                    domain.StudentID
	MatricNo              string
	ProgramID             domain.ProgramID
	DepartmentID          domain.DepartmentID
	AdmissionType         AdmissionType
	PreviousSchool        *string
	PreviousQualification *string
	Status                string
	CreatedAt             time.Time
}

// RegistrationRecord links a student to an admission session, unique on
// (student_id, session_id). Its lifecycle is decoupled from the other
// entities: a student is still successfully provisioned when registration
// fails.
type RegistrationRecord struct {
	ID        uuid.UUID
	StudentID domain.StudentID
	SessionID domain.SessionID
	Level     *string
	Status    string
	CreatedAt time.Time
}

// ProvisioningResult is the successful outcome of the workflow.
type ProvisioningResult struct {
	StudentID  domain.StudentID
	MatricNo   string
	Email      string
	RedirectTo string
	// Warning is non-empty when registration failed but the student was
	// still provisioned.
	Warning string
}
