package student

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

const pgUniqueViolation = "23505"

// PostgresStore persists student records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed student store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, record *models.StudentRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO students (
			id, matric_no, program_id, department_id, admission_type,
			previous_school, previous_qualification, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		uuid.UUID(record.ID), record.MatricNo, uuid.UUID(record.ProgramID),
		uuid.UUID(record.DepartmentID), string(record.AdmissionType),
		record.PreviousSchool, record.PreviousQualification, record.Status, record.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			// Duplicate matric number or duplicate profile link.
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.StudentID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.StudentID) (*models.StudentRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, matric_no, program_id, department_id, admission_type,
			previous_school, previous_qualification, status, created_at
		FROM students
		WHERE id = $1`,
		uuid.UUID(id),
	)

	var record models.StudentRecord
	var studentID, programID, departmentID uuid.UUID
	var admissionType string
	err := row.Scan(
		&studentID, &record.MatricNo, &programID, &departmentID, &admissionType,
		&record.PreviousSchool, &record.PreviousQualification, &record.Status, &record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	record.ID = domain.StudentID(studentID)
	record.ProgramID = domain.ProgramID(programID)
	record.DepartmentID = domain.DepartmentID(departmentID)
	record.AdmissionType = models.AdmissionType(admissionType)
	return &record, nil
}
