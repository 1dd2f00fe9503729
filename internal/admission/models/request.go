package models

import (
	"strings"

	"registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

// ProvisioningRequest is the caller-supplied input to the workflow. It is
// transient: normalized, validated, and discarded. A department_id field is
// deliberately absent; the department is always derived from the program.
type ProvisioningRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MiddleName string `json:"middle_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`

	Gender        string `json:"gender"`
	DateOfBirth   string `json:"date_of_birth"`
	StateOfOrigin string `json:"state_of_origin"`
	LGAOfOrigin   string `json:"lga_of_origin"`
	NIN           string `json:"nin"`
	Religion      string `json:"religion"`
	Address       string `json:"address"`

	ProgramID string `json:"program_id"`
	SessionID string `json:"session_id"`
	Level     string `json:"level"`

	AdmissionType         AdmissionType `json:"admission_type"`
	PreviousSchool        string        `json:"previous_school"`
	PreviousQualification string        `json:"previous_qualification"`

	GuardianName     string `json:"guardian_name"`
	GuardianPhone    string `json:"guardian_phone"`
	GuardianEmail    string `json:"guardian_email"`
	GuardianAddress  string `json:"guardian_address"`
	GuardianRelation string `json:"guardian_relationship"`
}

// Normalize trims every field, lowercases the email, and defaults the
// admission type to fresh. Must run before Validate.
func (r *ProvisioningRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.MiddleName = strings.TrimSpace(r.MiddleName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Gender = strings.TrimSpace(r.Gender)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.StateOfOrigin = strings.TrimSpace(r.StateOfOrigin)
	r.LGAOfOrigin = strings.TrimSpace(r.LGAOfOrigin)
	r.NIN = strings.TrimSpace(r.NIN)
	r.Religion = strings.TrimSpace(r.Religion)
	r.Address = strings.TrimSpace(r.Address)
	r.ProgramID = strings.TrimSpace(r.ProgramID)
	r.SessionID = strings.TrimSpace(r.SessionID)
	r.Level = strings.TrimSpace(r.Level)
	r.PreviousSchool = strings.TrimSpace(r.PreviousSchool)
	r.PreviousQualification = strings.TrimSpace(r.PreviousQualification)
	r.GuardianName = strings.TrimSpace(r.GuardianName)
	r.GuardianPhone = strings.TrimSpace(r.GuardianPhone)
	r.GuardianEmail = strings.TrimSpace(r.GuardianEmail)
	r.GuardianAddress = strings.TrimSpace(r.GuardianAddress)
	r.GuardianRelation = strings.TrimSpace(r.GuardianRelation)

	r.AdmissionType = AdmissionType(strings.TrimSpace(string(r.AdmissionType)))
	if r.AdmissionType == "" {
		r.AdmissionType = AdmissionFresh
	}
}

// Validate enforces every input invariant before any side effect is
// attempted. All failures carry CodeValidation.
func (r *ProvisioningRequest) Validate() error {
	if r.FirstName == "" || r.LastName == "" || r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "first_name, last_name, email are required")
	}

	at := strings.IndexByte(r.Email, '@')
	if at <= 0 || !strings.Contains(r.Email[at+1:], ".") {
		return dErrors.New(dErrors.CodeValidation, "email is not a valid address")
	}

	if _, err := domain.ParseProgramID(r.ProgramID); err != nil {
		return err
	}
	if _, err := domain.ParseSessionID(r.SessionID); err != nil {
		return err
	}

	switch r.AdmissionType {
	case AdmissionFresh:
	case AdmissionDirectEntry:
		if r.PreviousSchool == "" || r.PreviousQualification == "" {
			return dErrors.New(dErrors.CodeValidation,
				"previous_school and previous_qualification are required for direct entry")
		}
	default:
		return dErrors.New(dErrors.CodeValidation, "admission_type must be fresh or direct_entry")
	}

	return nil
}

// optional maps an empty string to absent so optional fields are never
// stored as empty strings.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Profile builds the person record for this request, keyed by the identity
// account id and created pending activation.
func (r *ProvisioningRequest) Profile(identityID domain.IdentityID) *Profile {
	return &Profile{
		ID:               identityID,
		Email:            r.Email,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		MiddleName:       optional(r.MiddleName),
		Phone:            optional(r.Phone),
		Gender:           optional(r.Gender),
		DateOfBirth:      optional(r.DateOfBirth),
		StateOfOrigin:    optional(r.StateOfOrigin),
		LGAOfOrigin:      optional(r.LGAOfOrigin),
		NIN:              optional(r.NIN),
		Religion:         optional(r.Religion),
		Address:          optional(r.Address),
		GuardianName:     optional(r.GuardianName),
		GuardianPhone:    optional(r.GuardianPhone),
		GuardianEmail:    optional(r.GuardianEmail),
		GuardianAddress:  optional(r.GuardianAddress),
		GuardianRelation: optional(r.GuardianRelation),
		Role:             RoleStudent,
		OnboardingStatus: OnboardingPending,
	}
}

// Student builds the academic record. The department id comes from the
// catalog and the matric number from the allocator; neither is caller input.
// Previous-school fields are carried only for direct entry.
func (r *ProvisioningRequest) Student(
	id domain.StudentID,
	programID domain.ProgramID,
	departmentID domain.DepartmentID,
	matricNo string,
) *StudentRecord {
	student := &StudentRecord{
		ID:            id,
		MatricNo:      matricNo,
		ProgramID:     programID,
		DepartmentID:  departmentID,
		AdmissionType: r.AdmissionType,
		Status:        StatusActive,
	}
	if r.AdmissionType == AdmissionDirectEntry {
		student.PreviousSchool = optional(r.PreviousSchool)
		student.PreviousQualification = optional(r.PreviousQualification)
	}
	return student
}
