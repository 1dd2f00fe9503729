// Package handler exposes the admissions HTTP surface.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"registrar/internal/admission/models"
	"registrar/internal/platform/middleware"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/httputil"
	"registrar/pkg/requestcontext"
)

// Service is the provisioning surface the handler needs.
type Service interface {
	ProvisionStudent(ctx context.Context, req *models.ProvisioningRequest) (*models.ProvisioningResult, error)
	Activate(ctx context.Context, token string) (*models.Profile, error)
}

// Handler handles admissions endpoints.
type Handler struct {
	service    Service
	logger     *slog.Logger
	adminToken string
}

// New creates an admissions Handler. adminToken guards the provisioning
// route.
func New(service Service, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger, adminToken: adminToken}
}

// Register mounts the admissions routes.
func (h *Handler) Register(r chi.Router) {
	admissions := chi.NewRouter()
	admissions.Use(middleware.Timeout(60 * time.Second))
	admissions.Use(middleware.ContentTypeJSON)
	admissions.Use(middleware.RequireAdmin(h.adminToken, h.logger))
	admissions.Post("/students", h.handleProvisionStudent)
	r.Mount("/admissions", admissions)

	onboarding := chi.NewRouter()
	onboarding.Use(middleware.Timeout(30 * time.Second))
	onboarding.Use(middleware.ContentTypeJSON)
	onboarding.Post("/activate", h.handleActivate)
	r.Mount("/onboarding", onboarding)
}

// provisionResponse is the success body for student provisioning.
type provisionResponse struct {
	Success      bool   `json:"success"`
	StudentID    string `json:"studentId"`
	MatricNo     string `json:"matricNo"`
	StudentEmail string `json:"studentEmail"`
	InviteQueued bool   `json:"inviteQueued"`
	RedirectTo   string `json:"redirectTo"`
	Warning      string `json:"warning,omitempty"`
}

func (h *Handler) handleProvisionStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.ProvisioningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "request body is not valid JSON"))
		return
	}

	result, err := h.service.ProvisionStudent(ctx, &req)
	if err != nil {
		h.logger.ErrorContext(ctx, "student provisioning failed",
			"request_id", requestcontext.RequestID(ctx),
			"email", req.Email,
			"code", string(dErrors.CodeOf(err)),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "student provisioned",
		"request_id", requestcontext.RequestID(ctx),
		"student_id", result.StudentID.String(),
		"matric_no", result.MatricNo,
		"deferred_registration", result.Warning != "",
	)

	httputil.WriteJSON(w, http.StatusCreated, provisionResponse{
		Success:      true,
		StudentID:    result.StudentID.String(),
		MatricNo:     result.MatricNo,
		StudentEmail: result.Email,
		InviteQueued: true,
		RedirectTo:   result.RedirectTo,
		Warning:      result.Warning,
	})
}

type activateRequest struct {
	Token string `json:"token"`
}

type activateResponse struct {
	Success          bool   `json:"success"`
	Email            string `json:"email"`
	OnboardingStatus string `json:"onboardingStatus"`
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "token is required"))
		return
	}

	profile, err := h.service.Activate(ctx, req.Token)
	if err != nil {
		h.logger.WarnContext(ctx, "activation failed",
			"request_id", requestcontext.RequestID(ctx),
			"code", string(dErrors.CodeOf(err)),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, activateResponse{
		Success:          true,
		Email:            profile.Email,
		OnboardingStatus: profile.OnboardingStatus,
	})
}
