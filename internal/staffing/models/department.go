package models

import (
	"fmt"
	"strings"
	"time"

	e "github.com/gartstein/staffing/internal/staffing/errors"
	"github.com/google/uuid"
)

// Department is an organizational unit that employees belong to.
type Department struct {
	// ID is generated at creation and never changes.
	ID uuid.UUID
	// Name is the department's display name.
	Name string
	// Acronym is the short code of the department, e.g. "FIN".
	Acronym string
	// Status is Active on creation and flipped only by Activate/Deactivate.
	Status Status
	// Employees is derived, not stored. It is populated only when a single
	// department is fetched and then holds its active employees.
	Employees []Employee
	// CreatedAt records when the department was created.
	CreatedAt time.Time
	// UpdatedAt records the last time the department was written.
	UpdatedAt time.Time
}

// NewDepartment builds an active department with a fresh ID.
func NewDepartment(name, acronym string) (*Department, error) {
	name, acronym, err := validateDepartment(name, acronym)
	if err != nil {
		return nil, err
	}
	return &Department{
		ID:      uuid.New(),
		Name:    name,
		Acronym: acronym,
		Status:  StatusActive,
	}, nil
}

// Update replaces name and acronym. Status is left untouched.
func (d *Department) Update(name, acronym string) error {
	name, acronym, err := validateDepartment(name, acronym)
	if err != nil {
		return err
	}
	d.Name = name
	d.Acronym = acronym
	return nil
}

// Activate moves an inactive department back to Active.
func (d *Department) Activate() error {
	if d.Status != StatusInactive {
		return fmt.Errorf("%w: department %s is not inactive", e.ErrNotFound, d.ID)
	}
	d.Status = StatusActive
	return nil
}

// Deactivate moves an active department to Inactive. activeEmployees is the
// number of active employees still assigned to it and must be zero.
func (d *Department) Deactivate(activeEmployees int64) error {
	if d.Status != StatusActive {
		return fmt.Errorf("%w: department %s is not active", e.ErrNotFound, d.ID)
	}
	if activeEmployees > 0 {
		return e.ErrDepartmentHasActiveEmployees
	}
	d.Status = StatusInactive
	return nil
}

// MatchesSearch reports whether the department's name or acronym contains filter.
func (d *Department) MatchesSearch(filter string) bool {
	return Matches(filter, d.Name, d.Acronym)
}

func validateDepartment(name, acronym string) (string, string, error) {
	name = strings.TrimSpace(name)
	acronym = strings.TrimSpace(acronym)
	if name == "" {
		return "", "", fmt.Errorf("%w: name is required", e.ErrInvalidInput)
	}
	if acronym == "" {
		return "", "", fmt.Errorf("%w: acronym is required", e.ErrInvalidInput)
	}
	return name, acronym, nil
}
