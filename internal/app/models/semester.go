package models

import "time"

// Semester is an academic term. At most one semester is active at a time.
type Semester struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name" example:"First Semester"`
	AcademicYear string    `json:"academicYear" db:"academic_year" example:"2025-2026"`
	Level        int       `json:"level" db:"level" example:"1"` // ordinal term within the year
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
