package dto

// CreateSemesterRequest creates an inactive semester
type CreateSemesterRequest struct {
	Name         string `json:"name" binding:"required,max=100" example:"First Semester"`
	AcademicYear string `json:"academicYear" binding:"required,academicyear" example:"2025-2026"`
	Level        int    `json:"level" binding:"required,min=1,max=4" example:"1"`
}
