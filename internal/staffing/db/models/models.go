// Package models contains the persisted rows for departments and employees,
// configured to work using GORM as the ORM.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Department is the departments table. Employees is only declared so GORM
// creates the foreign key from employees.department_id with ON DELETE CASCADE.
type Department struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name      string     `gorm:"size:255;not null"`
	Acronym   string     `gorm:"size:255;not null"`
	Status    string     `gorm:"size:100;not null;index"`
	Employees []Employee `gorm:"foreignKey:DepartmentID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Employee is the employees table.
type Employee struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"size:255;not null"`
	Document     string    `gorm:"size:255;not null"`
	Status       string    `gorm:"size:100;not null;index"`
	DepartmentID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// All lists the rows in migration order.
func All() []interface{} {
	return []interface{}{&Department{}, &Employee{}}
}
