package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

func validRequest() ProvisioningRequest {
	return ProvisioningRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "JANE@X.COM",
		ProgramID: uuid.NewString(),
		SessionID: uuid.NewString(),
	}
}

func TestNormalize(t *testing.T) {
	req := ProvisioningRequest{
		FirstName:  "  Jane ",
		LastName:   " Doe",
		Email:      " JANE@X.COM ",
		MiddleName: "   ",
	}
	req.Normalize()

	assert.Equal(t, "Jane", req.FirstName)
	assert.Equal(t, "Doe", req.LastName)
	assert.Equal(t, "jane@x.com", req.Email)
	assert.Equal(t, "", req.MiddleName)
	assert.Equal(t, AdmissionFresh, req.AdmissionType, "admission type defaults to fresh")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *ProvisioningRequest)
		wantErr string
	}{
		{"valid", func(r *ProvisioningRequest) {}, ""},
		{"missing email", func(r *ProvisioningRequest) { r.Email = "" },
			"first_name, last_name, email are required"},
		{"missing first name", func(r *ProvisioningRequest) { r.FirstName = "" },
			"first_name, last_name, email are required"},
		{"whitespace last name", func(r *ProvisioningRequest) { r.LastName = "   " },
			"first_name, last_name, email are required"},
		{"email without at", func(r *ProvisioningRequest) { r.Email = "jane.x.com" },
			"email is not a valid address"},
		{"email without domain separator", func(r *ProvisioningRequest) { r.Email = "jane@xcom" },
			"email is not a valid address"},
		{"malformed program id", func(r *ProvisioningRequest) { r.ProgramID = "cs-101" },
			"program_id is not a valid identifier"},
		{"missing session id", func(r *ProvisioningRequest) { r.SessionID = "" },
			"session_id is required"},
		{"unknown admission type", func(r *ProvisioningRequest) { r.AdmissionType = "transfer" },
			"admission_type must be fresh or direct_entry"},
		{
			"direct entry missing previous qualification",
			func(r *ProvisioningRequest) {
				r.AdmissionType = AdmissionDirectEntry
				r.PreviousSchool = "Federal Poly"
			},
			"previous_school and previous_qualification are required for direct entry",
		},
		{
			"direct entry complete",
			func(r *ProvisioningRequest) {
				r.AdmissionType = AdmissionDirectEntry
				r.PreviousSchool = "Federal Poly"
				r.PreviousQualification = "ND"
			},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			req.Normalize()
			err := req.Validate()

			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tt.wantErr, dErrors.MessageOf(err))
		})
	}
}

func TestProfile_OptionalFieldsAbsentNotEmpty(t *testing.T) {
	req := validRequest()
	req.Phone = "0803 000 0000"
	req.Normalize()

	profile := req.Profile(domain.IdentityID(uuid.New()))

	assert.Nil(t, profile.MiddleName, "empty optional must be absent, not empty string")
	require.NotNil(t, profile.Phone)
	assert.Equal(t, "0803 000 0000", *profile.Phone)
	assert.Equal(t, RoleStudent, profile.Role)
	assert.Equal(t, OnboardingPending, profile.OnboardingStatus)
	assert.Equal(t, "jane@x.com", profile.Email)
}

func TestStudent_PreviousFieldsNulledForFreshAdmission(t *testing.T) {
	req := validRequest()
	// A fresh admission may still arrive with stray previous-school input;
	// it must not be persisted.
	req.PreviousSchool = "Old School"
	req.PreviousQualification = "WAEC"
	req.Normalize()
	require.NoError(t, req.Validate())

	student := req.Student(
		domain.StudentID(uuid.New()),
		domain.ProgramID(uuid.New()),
		domain.DepartmentID(uuid.New()),
		"CS/2025/0001",
	)

	assert.Nil(t, student.PreviousSchool)
	assert.Nil(t, student.PreviousQualification)
	assert.Equal(t, StatusActive, student.Status)
	assert.Equal(t, "CS/2025/0001", student.MatricNo)
}

func TestStudent_DirectEntryKeepsPreviousFields(t *testing.T) {
	req := validRequest()
	req.AdmissionType = AdmissionDirectEntry
	req.PreviousSchool = "Federal Poly"
	req.PreviousQualification = "ND"
	req.Normalize()
	require.NoError(t, req.Validate())

	student := req.Student(
		domain.StudentID(uuid.New()),
		domain.ProgramID(uuid.New()),
		domain.DepartmentID(uuid.New()),
		"CS/2025/0002",
	)

	require.NotNil(t, student.PreviousSchool)
	assert.Equal(t, "Federal Poly", *student.PreviousSchool)
	require.NotNil(t, student.PreviousQualification)
	assert.Equal(t, "ND", *student.PreviousQualification)
}
