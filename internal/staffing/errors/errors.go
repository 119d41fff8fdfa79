package errors

import (
	"fmt"
)

var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrConflict     = fmt.Errorf("conflict")

	// ErrDepartmentHasActiveEmployees blocks deactivation of a department that still
	// has active employees. It matches ErrConflict under errors.Is.
	ErrDepartmentHasActiveEmployees = fmt.Errorf("%w: cannot deactivate department with active employees", ErrConflict)
)
