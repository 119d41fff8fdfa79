// Package controller implements the core business logic (service layer)
// for managing Department and Employee entities: status lifecycle,
// search filtering and the referential rules between the two.
package controller

import (
	"context"

	"github.com/gartstein/staffing/internal/staffing/models"
	"github.com/google/uuid"
)

// Repository defines the storage interface for departments and employees.
// Update methods only apply when the stored status equals expected and
// report ErrNotFound otherwise.
type Repository interface {
	CreateDepartment(ctx context.Context, department *models.Department) error
	GetDepartment(ctx context.Context, id uuid.UUID) (*models.Department, error)
	ListDepartmentsByStatus(ctx context.Context, status models.Status) ([]models.Department, error)
	UpdateDepartment(ctx context.Context, department *models.Department, expected models.Status) error
	CountEmployees(ctx context.Context, departmentID uuid.UUID, status models.Status) (int64, error)

	CreateEmployee(ctx context.Context, employee *models.Employee) error
	GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	ListEmployeesByStatus(ctx context.Context, status models.Status) ([]models.Employee, error)
	ListEmployeesByDepartmentAndStatus(ctx context.Context, departmentID uuid.UUID, status models.Status) ([]models.Employee, error)
	UpdateEmployee(ctx context.Context, employee *models.Employee, expected models.Status) error

	Close() error
}
