package db

import (
	rows "github.com/gartstein/staffing/internal/staffing/db/models"
	"github.com/gartstein/staffing/internal/staffing/models"
)

func departmentToRow(d *models.Department) *rows.Department {
	return &rows.Department{
		ID:        d.ID,
		Name:      d.Name,
		Acronym:   d.Acronym,
		Status:    string(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func departmentFromRow(r *rows.Department) *models.Department {
	return &models.Department{
		ID:        r.ID,
		Name:      r.Name,
		Acronym:   r.Acronym,
		Status:    models.Status(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func employeeToRow(em *models.Employee) *rows.Employee {
	return &rows.Employee{
		ID:           em.ID,
		Name:         em.Name,
		Document:     em.Document,
		Status:       string(em.Status),
		DepartmentID: em.DepartmentID,
		CreatedAt:    em.CreatedAt,
		UpdatedAt:    em.UpdatedAt,
	}
}

func employeeFromRow(r *rows.Employee) *models.Employee {
	return &models.Employee{
		ID:           r.ID,
		Name:         r.Name,
		Document:     r.Document,
		DepartmentID: r.DepartmentID,
		Status:       models.Status(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func employeesFromRows(rs []rows.Employee) []models.Employee {
	out := make([]models.Employee, 0, len(rs))
	for i := range rs {
		out = append(out, *employeeFromRow(&rs[i]))
	}
	return out
}

func departmentsFromRows(rs []rows.Department) []models.Department {
	out := make([]models.Department, 0, len(rs))
	for i := range rs {
		out = append(out, *departmentFromRow(&rs[i]))
	}
	return out
}
