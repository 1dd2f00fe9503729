// Package service orchestrates student provisioning: validation, duplicate
// guarding, department resolution, matric allocation, and the compensated
// write sequence across the identity service and the relational store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"registrar/internal/admission/models"
	"registrar/internal/audit"
	"registrar/internal/catalog"
	"registrar/internal/identity"
	"registrar/internal/platform/metrics"
	"registrar/internal/saga"
	"registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// duplicateEmailMessage is the caller-facing text for every duplicate-email
// path: pre-check, upstream identity conflict, and write-time constraint.
const duplicateEmailMessage = "A user with this email already exists."

// Saga step names. They appear in logs, spans, metrics labels, and
// reconciliation events, so they are fixed identifiers rather than prose.
const (
	stepProvisionIdentity  = "provision_identity"
	stepWriteProfile       = "write_profile"
	stepWriteStudent       = "write_student"
	stepUpsertRegistration = "upsert_registration"
)

type ProfileStore interface {
	Insert(ctx context.Context, profile *models.Profile) error
	EmailExists(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, id domain.IdentityID) error
	SetOnboardingStatus(ctx context.Context, id domain.IdentityID, status string) error
	FindByID(ctx context.Context, id domain.IdentityID) (*models.Profile, error)
}

type StudentStore interface {
	Insert(ctx context.Context, record *models.StudentRecord) error
	Delete(ctx context.Context, id domain.StudentID) error
}

type RegistrationStore interface {
	Upsert(ctx context.Context, record *models.RegistrationRecord) error
}

type ProgramCatalog interface {
	FindProgram(ctx context.Context, id domain.ProgramID) (*catalog.Program, error)
}

type IdentityProvisioner interface {
	Invite(ctx context.Context, req identity.InviteRequest) (domain.IdentityID, error)
	Delete(ctx context.Context, id domain.IdentityID) error
	Activate(ctx context.Context, id domain.IdentityID) error
}

type MatricAllocator interface {
	Allocate(ctx context.Context, prefix string) (string, error)
}

// ReservationStore is the advisory short-lived email reservation. It narrows
// the duplicate race window across instances; the database constraint stays
// authoritative.
type ReservationStore interface {
	Reserve(ctx context.Context, email string) (bool, error)
	Release(ctx context.Context, email string) error
}

// ActivationTokens signs and verifies the tokens carried by activation links.
type ActivationTokens interface {
	Issue(identityID domain.IdentityID, now time.Time) (string, error)
	Verify(token string) (domain.IdentityID, error)
}

// Service runs the provisioning workflow.
type Service struct {
	profiles      ProfileStore
	students      StudentStore
	registrations RegistrationStore
	catalog       ProgramCatalog
	identities    IdentityProvisioner
	matric        MatricAllocator
	tokens        ActivationTokens
	redirectURL   string

	reservations ReservationStore
	auditor      *audit.Publisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
	saga         *saga.Coordinator
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithReservations enables the advisory email reservation.
func WithReservations(store ReservationStore) Option {
	return func(s *Service) {
		s.reservations = store
	}
}

func WithAuditPublisher(publisher *audit.Publisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. redirectURL is the activation page the invite
// email points students at.
func New(
	profiles ProfileStore,
	students StudentStore,
	registrations RegistrationStore,
	programs ProgramCatalog,
	identities IdentityProvisioner,
	matric MatricAllocator,
	tokens ActivationTokens,
	redirectURL string,
	opts ...Option,
) *Service {
	s := &Service{
		profiles:      profiles,
		students:      students,
		registrations: registrations,
		catalog:       programs,
		identities:    identities,
		matric:        matric,
		tokens:        tokens,
		redirectURL:   redirectURL,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.auditor == nil {
		s.auditor = audit.NewPublisher(nil, s.logger)
	}
	s.saga = saga.New(
		saga.WithLogger(s.logger),
		saga.WithCompensationFailureHandler(s.reportCompensationFailure),
	)
	return s
}

// ProvisionStudent runs the full workflow for one admission.
//
// Failures before identity creation propagate with nothing to undo. Failures
// from identity creation through the student write roll back everything
// created so far, in reverse order, then propagate. A registration failure
// alone still returns success, with Warning set.
func (s *Service) ProvisionStudent(ctx context.Context, req *models.ProvisioningRequest) (*models.ProvisioningResult, error) {
	start := time.Now()
	result, err := s.provision(ctx, req)
	s.observeDuration(time.Since(start))

	if err != nil {
		s.countFailure(dErrors.CodeOf(err))
		s.auditor.Emit(ctx, audit.Event{
			Action:    audit.ActionProvisioningFailed,
			Email:     req.Email,
			ErrorCode: string(dErrors.CodeOf(err)),
			Reason:    dErrors.MessageOf(err),
		})
		return nil, err
	}

	s.countProvisioned()
	s.auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionStudentProvisioned,
		Email:     result.Email,
		StudentID: result.StudentID.String(),
		MatricNo:  result.MatricNo,
	})
	if result.Warning != "" {
		s.countRegistrationWarning()
		s.auditor.Emit(ctx, audit.Event{
			Action:    audit.ActionRegistrationDeferred,
			Email:     result.Email,
			StudentID: result.StudentID.String(),
			MatricNo:  result.MatricNo,
			Reason:    result.Warning,
		})
	}
	return result, nil
}

func (s *Service) provision(ctx context.Context, req *models.ProvisioningRequest) (*models.ProvisioningResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Validate has already proven these parse.
	programID, _ := domain.ParseProgramID(req.ProgramID)
	sessionID, _ := domain.ParseSessionID(req.SessionID)

	reserved, release := s.reserveEmail(ctx, req.Email)
	if !reserved {
		return nil, dErrors.New(dErrors.CodeConflict, duplicateEmailMessage)
	}

	result, err := s.provisionReserved(ctx, req, programID, sessionID)
	if err != nil {
		// Free the email for an immediate retry; on success the reservation
		// simply ages out while the profile row takes over as the guard.
		release()
		return nil, err
	}
	return result, nil
}

// reserveEmail takes the advisory reservation. A reservation store error
// degrades to proceeding without one rather than failing the request, since
// the reservation only narrows the race the database constraint closes.
func (s *Service) reserveEmail(ctx context.Context, email string) (ok bool, release func()) {
	if s.reservations == nil {
		return true, func() {}
	}
	acquired, err := s.reservations.Reserve(ctx, email)
	if err != nil {
		s.logger.WarnContext(ctx, "email reservation unavailable, proceeding without it",
			"email", email,
			"error", err.Error(),
		)
		return true, func() {}
	}
	if !acquired {
		return false, nil
	}
	return true, func() {
		if err := s.reservations.Release(context.WithoutCancel(ctx), email); err != nil {
			s.logger.WarnContext(ctx, "failed to release email reservation",
				"email", email,
				"error", err.Error(),
			)
		}
	}
}

func (s *Service) provisionReserved(
	ctx context.Context,
	req *models.ProvisioningRequest,
	programID domain.ProgramID,
	sessionID domain.SessionID,
) (*models.ProvisioningResult, error) {
	exists, err := s.profiles.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to check for an existing profile")
	}
	if exists {
		return nil, dErrors.New(dErrors.CodeConflict, duplicateEmailMessage)
	}

	program, err := s.catalog.FindProgram(ctx, programID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeConfiguration, "the selected program does not exist in the catalog")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to look up the program")
	}
	if program.DepartmentID == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "the selected program has no linked department")
	}

	matricNo, err := s.matric.Allocate(ctx, program.Code)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to allocate a matric number")
	}

	var identityID domain.IdentityID
	steps := []saga.Step{
		{
			Name: stepProvisionIdentity,
			Run: func(ctx context.Context) error {
				id, err := s.identities.Invite(ctx, identity.InviteRequest{
					Email:      req.Email,
					RedirectTo: s.redirectURL,
					Metadata: map[string]any{
						"role":              models.RoleStudent,
						"onboarding_status": models.OnboardingPending,
						"first_name":        req.FirstName,
						"last_name":         req.LastName,
					},
				})
				if err != nil {
					if errors.Is(err, sentinel.ErrConflict) {
						return dErrors.Wrap(err, dErrors.CodeConflict, duplicateEmailMessage)
					}
					return dErrors.Wrap(err, dErrors.CodeUpstream, "failed to create the identity account")
				}
				identityID = id
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.identities.Delete(ctx, identityID)
			},
		},
		{
			Name: stepWriteProfile,
			Run: func(ctx context.Context) error {
				if err := s.profiles.Insert(ctx, req.Profile(identityID)); err != nil {
					if errors.Is(err, sentinel.ErrConflict) {
						return dErrors.Wrap(err, dErrors.CodeConflict, duplicateEmailMessage)
					}
					return dErrors.Wrap(err, dErrors.CodeUpstream, "failed to save the student profile")
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.profiles.Delete(ctx, identityID)
			},
		},
		{
			// Once the student record exists the triple is the unit of work;
			// it is never rolled back for a registration failure, so no
			// Compensate.
			Name: stepWriteStudent,
			Run: func(ctx context.Context) error {
				student := req.Student(domain.StudentID(identityID), programID, *program.DepartmentID, matricNo)
				if err := s.students.Insert(ctx, student); err != nil {
					if errors.Is(err, sentinel.ErrConflict) {
						return dErrors.Wrap(err, dErrors.CodeConflict, "a student with this matric number already exists")
					}
					return dErrors.Wrap(err, dErrors.CodeUpstream, "failed to save the student record")
				}
				return nil
			},
		},
		{
			Name:       stepUpsertRegistration,
			BestEffort: true,
			Run: func(ctx context.Context) error {
				return s.registrations.Upsert(ctx, &models.RegistrationRecord{
					ID:        uuid.New(),
					StudentID: domain.StudentID(identityID),
					SessionID: sessionID,
					Level:     optionalLevel(req.Level),
					Status:    models.StatusRegistered,
				})
			},
		},
	}

	sagaResult, err := s.saga.Run(ctx, "provision_student", steps)
	if err != nil {
		s.countCompensations(sagaResult.Completed)
		return nil, err
	}

	result := &models.ProvisioningResult{
		StudentID:  domain.StudentID(identityID),
		MatricNo:   matricNo,
		Email:      req.Email,
		RedirectTo: s.activationURL(ctx, identityID),
	}
	for _, warning := range sagaResult.Warnings {
		if warning.Step == stepUpsertRegistration {
			result.Warning = fmt.Sprintf(
				"student was provisioned but session registration failed and will need a retry: %v",
				warning.Err,
			)
		}
	}
	return result, nil
}

// Activate completes onboarding from the invite link: verifies the token,
// activates the upstream identity, and flips the profile's onboarding
// status.
func (s *Service) Activate(ctx context.Context, token string) (*models.Profile, error) {
	identityID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no profile matches this activation link")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to load the profile")
	}

	if err := s.identities.Activate(ctx, identityID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to activate the identity account")
	}

	if err := s.profiles.SetOnboardingStatus(ctx, identityID, models.OnboardingActive); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to update the onboarding status")
	}
	profile.OnboardingStatus = models.OnboardingActive

	s.auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionStudentActivated,
		Email:     profile.Email,
		StudentID: identityID.String(),
	})
	return profile, nil
}

// activationURL appends a signed activation token to the configured redirect
// page. If signing fails the bare page still works via upstream's own flow,
// so this degrades instead of failing the request.
func (s *Service) activationURL(ctx context.Context, identityID domain.IdentityID) string {
	token, err := s.tokens.Issue(identityID, requestcontext.Now(ctx))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to issue activation token",
			"identity_id", identityID.String(),
			"error", err.Error(),
		)
		return s.redirectURL
	}
	parsed, err := url.Parse(s.redirectURL)
	if err != nil {
		return s.redirectURL
	}
	query := parsed.Query()
	query.Set("token", token)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// reportCompensationFailure routes a failed undo to the reconciliation topic
// so the orphaned resource can be cleaned up by hand.
func (s *Service) reportCompensationFailure(ctx context.Context, failure saga.CompensationFailure) {
	s.auditor.EmitReconciliation(ctx, audit.Event{
		Action:      audit.ActionCompensationFailed,
		FailedStep:  failure.Step,
		TriggeredBy: failure.TriggeredBy,
		Reason:      failure.Err.Error(),
	})
}

func optionalLevel(level string) *string {
	if level == "" {
		return nil
	}
	return &level
}

func (s *Service) countProvisioned() {
	if s.metrics != nil {
		s.metrics.StudentsProvisioned.Inc()
	}
}

func (s *Service) countFailure(code dErrors.Code) {
	if s.metrics != nil {
		s.metrics.ProvisioningFailures.WithLabelValues(string(code)).Inc()
	}
}

func (s *Service) countRegistrationWarning() {
	if s.metrics != nil {
		s.metrics.RegistrationWarnings.Inc()
	}
}

// countCompensations records one compensation per completed compensable step
// after an unwind.
func (s *Service) countCompensations(completed []string) {
	if s.metrics == nil {
		return
	}
	for _, step := range completed {
		if step == stepProvisionIdentity || step == stepWriteProfile {
			s.metrics.Compensations.WithLabelValues(step).Inc()
		}
	}
}

func (s *Service) observeDuration(d time.Duration) {
	if s.metrics != nil {
		s.metrics.ProvisioningDuration.Observe(d.Seconds())
	}
}
