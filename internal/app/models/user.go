package models

import (
	"strings"
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID             int64     `json:"id" db:"id" example:"1"`
	Email          string    `json:"email" db:"email" example:"user@school.edu"`
	Password       string    `json:"-" db:"password"`
	FirstName      string    `json:"firstName" db:"first_name" example:"John"`
	LastName       string    `json:"lastName" db:"last_name" example:"Doe"`
	RoleType       RoleType  `json:"roleType" db:"role_type" example:"STUDENT"`
	IsActive       bool      `json:"isActive" db:"is_active" example:"true"`
	StudentNumber  *string   `json:"studentNumber,omitempty" db:"student_number"`
	EmployeeNumber *string   `json:"employeeNumber,omitempty" db:"employee_number"`
	ProgramID      *int64    `json:"programId,omitempty" db:"program_id"`
	DepartmentID   *int64    `json:"departmentId,omitempty" db:"department_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
