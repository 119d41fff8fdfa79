package controller

import (
	"context"
	"errors"
	"fmt"

	e "github.com/gartstein/staffing/internal/staffing/errors"
	"github.com/gartstein/staffing/internal/staffing/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EmployeeService manages employees and their department membership.
type EmployeeService struct {
	repo   Repository
	logger *zap.Logger
	// strictDepartmentChecks makes update and activate require an active
	// target department, the same rule create always applies.
	strictDepartmentChecks bool
}

// EmployeeOption customizes an EmployeeService.
type EmployeeOption func(*EmployeeService)

// WithStrictDepartmentChecks enables the active-department check on update and activate.
func WithStrictDepartmentChecks(strict bool) EmployeeOption {
	return func(s *EmployeeService) {
		s.strictDepartmentChecks = strict
	}
}

// NewEmployeeService constructs an EmployeeService with a repository and a logger.
func NewEmployeeService(repo Repository, logger *zap.Logger, opts ...EmployeeOption) *EmployeeService {
	s := &EmployeeService{
		repo:   repo,
		logger: logger.Named("employee_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListActive returns active employees whose name or document contains filter.
func (s *EmployeeService) ListActive(ctx context.Context, filter string) ([]models.Employee, error) {
	all, err := s.repo.ListEmployeesByStatus(ctx, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return filterEmployees(all, filter), nil
}

// ListInactive returns inactive employees whose name or document contains filter.
func (s *EmployeeService) ListInactive(ctx context.Context, filter string) ([]models.Employee, error) {
	all, err := s.repo.ListEmployeesByStatus(ctx, models.StatusInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return filterEmployees(all, filter), nil
}

// ListActiveByDepartment returns the active employees of an active department.
// A missing or inactive department is ErrNotFound.
func (s *EmployeeService) ListActiveByDepartment(ctx context.Context, departmentID uuid.UUID, filter string) ([]models.Employee, error) {
	if err := s.requireActiveDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	all, err := s.repo.ListEmployeesByDepartmentAndStatus(ctx, departmentID, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list department employees: %w", err)
	}
	return filterEmployees(all, filter), nil
}

// GetEmployee fetches an employee regardless of status.
func (s *EmployeeService) GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	employee, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return employee, nil
}

// CreateEmployee stores a new active employee in an active department.
func (s *EmployeeService) CreateEmployee(ctx context.Context, departmentID uuid.UUID, name, document string) (*models.Employee, error) {
	employee, err := models.NewEmployee(departmentID, name, document)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	if err := s.repo.CreateEmployee(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	s.logger.Info("Employee created",
		zap.String("employee_id", employee.ID.String()),
		zap.String("department_id", departmentID.String()),
	)
	return employee, nil
}

// UpdateEmployee changes name, document and department of an active employee.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, id uuid.UUID, name, document string, departmentID uuid.UUID) error {
	employee, err := s.findWithStatus(ctx, id, models.StatusActive)
	if err != nil {
		return err
	}
	if err := employee.Update(name, document, departmentID); err != nil {
		return err
	}
	if s.strictDepartmentChecks {
		if err := s.requireActiveDepartment(ctx, departmentID); err != nil {
			return err
		}
	}
	return s.save(ctx, employee, models.StatusActive)
}

// DeactivateEmployee moves an active employee to Inactive.
func (s *EmployeeService) DeactivateEmployee(ctx context.Context, id uuid.UUID) error {
	employee, err := s.findWithStatus(ctx, id, models.StatusActive)
	if err != nil {
		return err
	}
	if err := employee.Deactivate(); err != nil {
		return err
	}
	if err := s.save(ctx, employee, models.StatusActive); err != nil {
		return err
	}
	s.logger.Info("Employee deactivated", zap.String("employee_id", id.String()))
	return nil
}

// ActivateEmployee assigns an inactive employee to departmentID and marks it Active.
func (s *EmployeeService) ActivateEmployee(ctx context.Context, id, departmentID uuid.UUID) error {
	employee, err := s.findWithStatus(ctx, id, models.StatusInactive)
	if err != nil {
		return err
	}
	if err := employee.Activate(departmentID); err != nil {
		return err
	}
	if s.strictDepartmentChecks {
		if err := s.requireActiveDepartment(ctx, departmentID); err != nil {
			return err
		}
	}
	if err := s.save(ctx, employee, models.StatusInactive); err != nil {
		return err
	}
	s.logger.Info("Employee activated",
		zap.String("employee_id", id.String()),
		zap.String("department_id", departmentID.String()),
	)
	return nil
}

func (s *EmployeeService) requireActiveDepartment(ctx context.Context, departmentID uuid.UUID) error {
	department, err := s.repo.GetDepartment(ctx, departmentID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return fmt.Errorf("%w: department %s", e.ErrNotFound, departmentID)
		}
		return fmt.Errorf("failed to get department: %w", err)
	}
	if department.Status != models.StatusActive {
		return fmt.Errorf("%w: department %s is not active", e.ErrNotFound, departmentID)
	}
	return nil
}

func (s *EmployeeService) findWithStatus(ctx context.Context, id uuid.UUID, want models.Status) (*models.Employee, error) {
	employee, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	if employee.Status != want {
		return nil, fmt.Errorf("%w: employee %s is not %s", e.ErrNotFound, id, want)
	}
	return employee, nil
}

func (s *EmployeeService) save(ctx context.Context, employee *models.Employee, expected models.Status) error {
	if err := s.repo.UpdateEmployee(ctx, employee, expected); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}
	return nil
}

func filterEmployees(all []models.Employee, filter string) []models.Employee {
	matched := make([]models.Employee, 0, len(all))
	for i := range all {
		if all[i].MatchesSearch(filter) {
			matched = append(matched, all[i])
		}
	}
	return matched
}
