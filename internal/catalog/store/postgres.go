package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"registrar/internal/catalog"
	"registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// PostgresStore reads the program catalog from PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed catalog store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindProgram(ctx context.Context, id domain.ProgramID) (*catalog.Program, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, department_id
		FROM programs
		WHERE id = $1`,
		uuid.UUID(id),
	)

	var program catalog.Program
	var programID uuid.UUID
	var departmentID uuid.NullUUID
	err := row.Scan(&programID, &program.Code, &program.Name, &departmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find program: %w", err)
	}

	program.ID = domain.ProgramID(programID)
	if departmentID.Valid {
		dept := domain.DepartmentID(departmentID.UUID)
		program.DepartmentID = &dept
	}
	return &program, nil
}
