package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"registrar/internal/admission/models"
	"registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// pgUniqueViolation is the PostgreSQL error code for a unique constraint
// violation. The email pre-check is advisory; this constraint is the
// authoritative duplicate guard, so violations must surface as conflicts and
// not as generic store failures.
const pgUniqueViolation = "23505"

// PostgresStore persists profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, p *models.Profile) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (
			id, email, first_name, last_name, middle_name, phone,
			gender, date_of_birth, state_of_origin, lga_of_origin, nin, religion, address,
			guardian_name, guardian_phone, guardian_email, guardian_address, guardian_relationship,
			role, onboarding_status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		uuid.UUID(p.ID), p.Email, p.FirstName, p.LastName, p.MiddleName, p.Phone,
		p.Gender, p.DateOfBirth, p.StateOfOrigin, p.LGAOfOrigin, p.NIN, p.Religion, p.Address,
		p.GuardianName, p.GuardianPhone, p.GuardianEmail, p.GuardianAddress, p.GuardianRelation,
		p.Role, p.OnboardingStatus, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check profile email: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.IdentityID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetOnboardingStatus(ctx context.Context, id domain.IdentityID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET onboarding_status = $2 WHERE id = $1`,
		uuid.UUID(id), status,
	)
	if err != nil {
		return fmt.Errorf("update onboarding status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update onboarding status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.IdentityID) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, middle_name, phone,
			gender, date_of_birth, state_of_origin, lga_of_origin, nin, religion, address,
			guardian_name, guardian_phone, guardian_email, guardian_address, guardian_relationship,
			role, onboarding_status, created_at
		FROM profiles
		WHERE id = $1`,
		uuid.UUID(id),
	)

	var p models.Profile
	var profileID uuid.UUID
	err := row.Scan(
		&profileID, &p.Email, &p.FirstName, &p.LastName, &p.MiddleName, &p.Phone,
		&p.Gender, &p.DateOfBirth, &p.StateOfOrigin, &p.LGAOfOrigin, &p.NIN, &p.Religion, &p.Address,
		&p.GuardianName, &p.GuardianPhone, &p.GuardianEmail, &p.GuardianAddress, &p.GuardianRelation,
		&p.Role, &p.OnboardingStatus, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	p.ID = domain.IdentityID(profileID)
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}
