// Package models defines the core domain models for departments and employees:
// the Department and Employee entities, their two-state Status lifecycle and
// the search helper used to filter listings.
package models

import (
	"fmt"

	e "github.com/gartstein/staffing/internal/staffing/errors"
)

// Status is the lifecycle state shared by departments and employees.
// Inactive is a soft-delete marker; rows are never physically removed.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Valid reports whether s is one of the two known variants.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive:
		return true
	default:
		return false
	}
}

// Validate is Valid as an error wrapping ErrInvalidInput.
func (s Status) Validate() error {
	if !s.Valid() {
		return fmt.Errorf("%w: unknown status %q", e.ErrInvalidInput, string(s))
	}
	return nil
}
