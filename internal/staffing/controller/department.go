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

// DepartmentService manages departments and guards their deactivation
// against active employees.
type DepartmentService struct {
	repo   Repository
	logger *zap.Logger
}

// NewDepartmentService constructs a DepartmentService with a repository and a logger.
func NewDepartmentService(repo Repository, logger *zap.Logger) *DepartmentService {
	return &DepartmentService{
		repo:   repo,
		logger: logger.Named("department_service"),
	}
}

// ListActive returns active departments whose name or acronym contains filter.
// No match yields an empty slice, not an error.
func (s *DepartmentService) ListActive(ctx context.Context, filter string) ([]models.Department, error) {
	return s.list(ctx, models.StatusActive, filter)
}

// ListInactive is ListActive for inactive departments.
func (s *DepartmentService) ListInactive(ctx context.Context, filter string) ([]models.Department, error) {
	return s.list(ctx, models.StatusInactive, filter)
}

func (s *DepartmentService) list(ctx context.Context, status models.Status, filter string) ([]models.Department, error) {
	all, err := s.repo.ListDepartmentsByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	matched := make([]models.Department, 0, len(all))
	for i := range all {
		if all[i].MatchesSearch(filter) {
			matched = append(matched, all[i])
		}
	}
	return matched, nil
}

// GetDepartment fetches a department regardless of status, together with its
// active employees.
func (s *DepartmentService) GetDepartment(ctx context.Context, id uuid.UUID) (*models.Department, error) {
	department, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get department: %w", err)
	}

	employees, err := s.repo.ListEmployeesByDepartmentAndStatus(ctx, id, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list department employees: %w", err)
	}
	department.Employees = employees
	return department, nil
}

// CreateDepartment validates input and stores a new active department.
func (s *DepartmentService) CreateDepartment(ctx context.Context, name, acronym string) (*models.Department, error) {
	department, err := models.NewDepartment(name, acronym)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateDepartment(ctx, department); err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}
	s.logger.Info("Department created",
		zap.String("department_id", department.ID.String()),
		zap.String("acronym", department.Acronym),
	)
	return department, nil
}

// UpdateDepartment changes name and acronym of an active department.
func (s *DepartmentService) UpdateDepartment(ctx context.Context, id uuid.UUID, name, acronym string) error {
	department, err := s.findWithStatus(ctx, id, models.StatusActive)
	if err != nil {
		return err
	}
	if err := department.Update(name, acronym); err != nil {
		return err
	}
	return s.save(ctx, department, models.StatusActive)
}

// ActivateDepartment moves an inactive department back to Active.
func (s *DepartmentService) ActivateDepartment(ctx context.Context, id uuid.UUID) error {
	department, err := s.findWithStatus(ctx, id, models.StatusInactive)
	if err != nil {
		return err
	}
	if err := department.Activate(); err != nil {
		return err
	}
	if err := s.save(ctx, department, models.StatusInactive); err != nil {
		return err
	}
	s.logger.Info("Department activated", zap.String("department_id", id.String()))
	return nil
}

// DeactivateDepartment moves an active department to Inactive. It fails with
// ErrDepartmentHasActiveEmployees while any active employee is assigned to it.
// The write is guarded on the department still being Active, but the employee
// count is a separate read: an employee created or activated between the count
// and the write ends up in a department that is now inactive.
func (s *DepartmentService) DeactivateDepartment(ctx context.Context, id uuid.UUID) error {
	department, err := s.findWithStatus(ctx, id, models.StatusActive)
	if err != nil {
		return err
	}

	active, err := s.repo.CountEmployees(ctx, id, models.StatusActive)
	if err != nil {
		return fmt.Errorf("failed to count active employees: %w", err)
	}
	if err := department.Deactivate(active); err != nil {
		if errors.Is(err, e.ErrConflict) {
			s.logger.Info("Department deactivation blocked",
				zap.String("department_id", id.String()),
				zap.Int64("active_employees", active),
			)
		}
		return err
	}

	if err := s.save(ctx, department, models.StatusActive); err != nil {
		return err
	}
	s.logger.Info("Department deactivated", zap.String("department_id", id.String()))
	return nil
}

// findWithStatus loads a department and treats a status other than want as not found.
func (s *DepartmentService) findWithStatus(ctx context.Context, id uuid.UUID, want models.Status) (*models.Department, error) {
	department, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	if department.Status != want {
		return nil, fmt.Errorf("%w: department %s is not %s", e.ErrNotFound, id, want)
	}
	return department, nil
}

func (s *DepartmentService) save(ctx context.Context, department *models.Department, expected models.Status) error {
	if err := s.repo.UpdateDepartment(ctx, department, expected); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update department: %w", err)
	}
	return nil
}
