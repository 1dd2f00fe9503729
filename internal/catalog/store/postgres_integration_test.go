//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"registrar/internal/catalog/store"
	"registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(),
		"registrations", "students", "profiles", "programs", "departments")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestFindProgramWithDepartment() {
	ctx := context.Background()
	departmentID := uuid.New()
	programID := uuid.New()

	_, err := s.postgres.DB.ExecContext(ctx,
		`INSERT INTO departments (id, name) VALUES ($1, 'Computer Science')`, departmentID)
	s.Require().NoError(err)
	_, err = s.postgres.DB.ExecContext(ctx,
		`INSERT INTO programs (id, code, name, department_id) VALUES ($1, 'CSC', 'Computer Science', $2)`,
		programID, departmentID)
	s.Require().NoError(err)

	program, err := s.store.FindProgram(ctx, domain.ProgramID(programID))
	s.Require().NoError(err)
	s.Equal("CSC", program.Code)
	s.Require().NotNil(program.DepartmentID)
	s.Equal(domain.DepartmentID(departmentID), *program.DepartmentID)
}

func (s *PostgresStoreSuite) TestFindProgramWithoutDepartment() {
	ctx := context.Background()
	programID := uuid.New()

	_, err := s.postgres.DB.ExecContext(ctx,
		`INSERT INTO programs (id, code, name) VALUES ($1, 'ORF', 'Orphaned Program')`, programID)
	s.Require().NoError(err)

	program, err := s.store.FindProgram(ctx, domain.ProgramID(programID))
	s.Require().NoError(err)
	s.Nil(program.DepartmentID, "a program without a department link must surface as such")
}

func (s *PostgresStoreSuite) TestFindProgramNotFound() {
	_, err := s.store.FindProgram(context.Background(), domain.ProgramID(uuid.New()))
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
