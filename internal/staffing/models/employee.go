package models

import (
	"fmt"
	"strings"
	"time"

	e "github.com/gartstein/staffing/internal/staffing/errors"
	"github.com/google/uuid"
)

// Employee is a person assigned to exactly one department at a time.
type Employee struct {
	ID           uuid.UUID
	Name         string
	Document     string // business identifier such as a tax id, not unique
	DepartmentID uuid.UUID
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewEmployee builds an active employee assigned to departmentID.
func NewEmployee(departmentID uuid.UUID, name, document string) (*Employee, error) {
	name, document, err := validateEmployee(departmentID, name, document)
	if err != nil {
		return nil, err
	}
	return &Employee{
		ID:           uuid.New(),
		Name:         name,
		Document:     document,
		DepartmentID: departmentID,
		Status:       StatusActive,
	}, nil
}

// Update replaces name, document and department. Status is left untouched.
func (em *Employee) Update(name, document string, departmentID uuid.UUID) error {
	name, document, err := validateEmployee(departmentID, name, document)
	if err != nil {
		return err
	}
	em.Name = name
	em.Document = document
	em.DepartmentID = departmentID
	return nil
}

// Activate reassigns an inactive employee to departmentID and marks it Active.
func (em *Employee) Activate(departmentID uuid.UUID) error {
	if em.Status != StatusInactive {
		return fmt.Errorf("%w: employee %s is not inactive", e.ErrNotFound, em.ID)
	}
	if departmentID == uuid.Nil {
		return fmt.Errorf("%w: department id is required", e.ErrInvalidInput)
	}
	em.DepartmentID = departmentID
	em.Status = StatusActive
	return nil
}

// Deactivate marks an active employee Inactive.
func (em *Employee) Deactivate() error {
	if em.Status != StatusActive {
		return fmt.Errorf("%w: employee %s is not active", e.ErrNotFound, em.ID)
	}
	em.Status = StatusInactive
	return nil
}

// MatchesSearch reports whether the employee's name or document contains filter.
func (em *Employee) MatchesSearch(filter string) bool {
	return Matches(filter, em.Name, em.Document)
}

func validateEmployee(departmentID uuid.UUID, name, document string) (string, string, error) {
	name = strings.TrimSpace(name)
	document = strings.TrimSpace(document)
	if name == "" {
		return "", "", fmt.Errorf("%w: name is required", e.ErrInvalidInput)
	}
	if document == "" {
		return "", "", fmt.Errorf("%w: document is required", e.ErrInvalidInput)
	}
	if departmentID == uuid.Nil {
		return "", "", fmt.Errorf("%w: department id is required", e.ErrInvalidInput)
	}
	return name, document, nil
}
