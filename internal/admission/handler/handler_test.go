package handler

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/admission/models"
	"registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/testutil"
)

const testAdminToken = "test-admin-token"

type stubService struct {
	result      *models.ProvisioningResult
	err         error
	profile     *models.Profile
	activateErr error

	gotRequest *models.ProvisioningRequest
	gotToken   string
}

func (s *stubService) ProvisionStudent(_ context.Context, req *models.ProvisioningRequest) (*models.ProvisioningResult, error) {
	s.gotRequest = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubService) Activate(_ context.Context, token string) (*models.Profile, error) {
	s.gotToken = token
	if s.activateErr != nil {
		return nil, s.activateErr
	}
	return s.profile, nil
}

func newRouter(service *stubService) chi.Router {
	r := chi.NewRouter()
	New(service, testAdminToken, slog.New(slog.DiscardHandler)).Register(r)
	return r
}

func validBody() map[string]any {
	return map[string]any{
		"first_name": "Jane",
		"last_name":  "Doe",
		"email":      "jane.doe@example.edu",
		"program_id": uuid.NewString(),
		"session_id": uuid.NewString(),
	}
}

func provisionRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/admissions/students", body)
	req.Header.Set("X-Admin-Token", testAdminToken)
	return req
}

func TestProvisionStudentSuccess(t *testing.T) {
	studentID := domain.StudentID(uuid.New())
	service := &stubService{
		result: &models.ProvisioningResult{
			StudentID:  studentID,
			MatricNo:   "CSC/2026/0421",
			Email:      "jane.doe@example.edu",
			RedirectTo: "http://localhost:3000/onboarding?token=abc",
		},
	}

	rec := testutil.DoRequest(newRouter(service), provisionRequest(t, validBody()))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	body := testutil.UnmarshalResponse[map[string]any](t, rec)
	assert.Equal(t, true, (*body)["success"])
	assert.Equal(t, studentID.String(), (*body)["studentId"])
	assert.Equal(t, "CSC/2026/0421", (*body)["matricNo"])
	assert.Equal(t, "jane.doe@example.edu", (*body)["studentEmail"])
	assert.Equal(t, true, (*body)["inviteQueued"])
	assert.Equal(t, "http://localhost:3000/onboarding?token=abc", (*body)["redirectTo"])
	_, hasWarning := (*body)["warning"]
	assert.False(t, hasWarning)
}

func TestProvisionStudentSuccessWithWarning(t *testing.T) {
	service := &stubService{
		result: &models.ProvisioningResult{
			StudentID: domain.StudentID(uuid.New()),
			MatricNo:  "CSC/2026/0422",
			Email:     "jane.doe@example.edu",
			Warning:   "student was provisioned but session registration failed and will need a retry",
		},
	}

	rec := testutil.DoRequest(newRouter(service), provisionRequest(t, validBody()))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	body := testutil.UnmarshalResponse[map[string]any](t, rec)
	assert.Equal(t, true, (*body)["success"])
	assert.Contains(t, (*body)["warning"], "registration failed")
}

func TestProvisionStudentValidationError(t *testing.T) {
	service := &stubService{
		err: dErrors.New(dErrors.CodeValidation, "first_name, last_name, email are required"),
	}

	rec := testutil.DoRequest(newRouter(service), provisionRequest(t, map[string]any{"first_name": "Jane"}))

	testutil.AssertStatus(t, rec, http.StatusBadRequest)
	testutil.AssertErrorMessage(t, rec, "first_name, last_name, email are required")
}

func TestProvisionStudentConflict(t *testing.T) {
	service := &stubService{
		err: dErrors.New(dErrors.CodeConflict, "A user with this email already exists."),
	}

	rec := testutil.DoRequest(newRouter(service), provisionRequest(t, validBody()))

	testutil.AssertStatus(t, rec, http.StatusConflict)
	testutil.AssertErrorMessage(t, rec, "A user with this email already exists.")
}

func TestProvisionStudentConfigurationError(t *testing.T) {
	service := &stubService{
		err: dErrors.New(dErrors.CodeConfiguration, "the selected program has no linked department"),
	}

	rec := testutil.DoRequest(newRouter(service), provisionRequest(t, validBody()))

	testutil.AssertStatus(t, rec, http.StatusBadRequest)
	testutil.AssertErrorMessage(t, rec, "the selected program has no linked department")
}

func TestProvisionStudentUpstreamErrorHidesDetails(t *testing.T) {
	service := &stubService{
		err: dErrors.New(dErrors.CodeUpstream, "identity service returned 503 from 10.0.4.2"),
	}

	rec := testutil.DoRequest(newRouter(service), provisionRequest(t, validBody()))

	testutil.AssertStatus(t, rec, http.StatusInternalServerError)
	assert.NotContains(t, rec.Body.String(), "10.0.4.2")
}

func TestProvisionStudentMalformedBody(t *testing.T) {
	req := testutil.NewRequestWithBody(t, http.MethodPost, "/admissions/students", `{not json`)
	req.Header.Set("X-Admin-Token", testAdminToken)

	rec := testutil.DoRequest(newRouter(&stubService{}), req)

	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}

func TestProvisionStudentRequiresAdminToken(t *testing.T) {
	req := testutil.NewJSONRequest(t, http.MethodPost, "/admissions/students", validBody())

	rec := testutil.DoRequest(newRouter(&stubService{}), req)

	testutil.AssertStatus(t, rec, http.StatusUnauthorized)
}

func TestProvisionStudentDecodesWireFields(t *testing.T) {
	service := &stubService{
		result: &models.ProvisioningResult{StudentID: domain.StudentID(uuid.New())},
	}

	body := validBody()
	body["admission_type"] = "direct_entry"
	body["previous_school"] = "Federal Polytechnic Nekede"
	body["previous_qualification"] = "ND Computer Science"
	body["guardian_name"] = "John Doe"

	rec := testutil.DoRequest(newRouter(service), provisionRequest(t, body))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	require.NotNil(t, service.gotRequest)
	assert.Equal(t, models.AdmissionDirectEntry, service.gotRequest.AdmissionType)
	assert.Equal(t, "Federal Polytechnic Nekede", service.gotRequest.PreviousSchool)
	assert.Equal(t, "John Doe", service.gotRequest.GuardianName)
}

func TestActivateSuccess(t *testing.T) {
	service := &stubService{
		profile: &models.Profile{
			Email:            "jane.doe@example.edu",
			OnboardingStatus: models.OnboardingActive,
		},
	}

	req := testutil.NewJSONRequest(t, http.MethodPost, "/onboarding/activate",
		map[string]string{"token": "signed-token"})
	rec := testutil.DoRequest(newRouter(service), req)

	testutil.AssertStatus(t, rec, http.StatusOK)
	assert.Equal(t, "signed-token", service.gotToken)

	body := testutil.UnmarshalResponse[map[string]any](t, rec)
	assert.Equal(t, true, (*body)["success"])
	assert.Equal(t, models.OnboardingActive, (*body)["onboardingStatus"])
}

func TestActivateMissingToken(t *testing.T) {
	req := testutil.NewJSONRequest(t, http.MethodPost, "/onboarding/activate", map[string]string{})
	rec := testutil.DoRequest(newRouter(&stubService{}), req)

	testutil.AssertStatus(t, rec, http.StatusBadRequest)
	testutil.AssertErrorMessage(t, rec, "token is required")
}

func TestActivateInvalidToken(t *testing.T) {
	service := &stubService{
		activateErr: dErrors.New(dErrors.CodeUnauthorized, "activation token is invalid or expired"),
	}

	req := testutil.NewJSONRequest(t, http.MethodPost, "/onboarding/activate",
		map[string]string{"token": "bad"})
	rec := testutil.DoRequest(newRouter(service), req)

	testutil.AssertStatus(t, rec, http.StatusUnauthorized)
}
