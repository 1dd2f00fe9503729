package registration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"registrar/internal/admission/models"
)

// PostgresStore persists session registrations in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registration store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Upsert writes the registration, updating level and status when a row for
// (student_id, session_id) already exists. Registration is retryable
// out-of-band, so the upsert keeps retries idempotent.
func (s *PostgresStore) Upsert(ctx context.Context, record *models.RegistrationRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registrations (id, student_id, session_id, level, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (student_id, session_id)
		DO UPDATE SET level = EXCLUDED.level, status = EXCLUDED.status`,
		record.ID, uuid.UUID(record.StudentID), uuid.UUID(record.SessionID),
		record.Level, record.Status, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert registration: %w", err)
	}
	return nil
}
