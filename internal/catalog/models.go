// Package catalog exposes the academic program/department catalog consumed
// by the provisioning workflow.
package catalog

import "registrar/pkg/domain"

// Program is a catalog entry. DepartmentID is nil when the catalog row was
// set up without a department link; the workflow reports that as a
// configuration error, not caller input.
type Program struct {
	ID           domain.ProgramID
	Code         string
	Name         string
	DepartmentID *domain.DepartmentID
}
