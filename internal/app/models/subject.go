package models

// Subject is a catalog entry offered by a department.
type Subject struct {
	ID           int64  `json:"id" db:"id"`
	Code         string `json:"code" db:"code"`
	Name         string `json:"name" db:"name"`
	Units        int    `json:"units" db:"units"`
	DepartmentID *int64 `json:"departmentId,omitempty" db:"department_id"`
}
