package dto

import "github.com/yigit/campus/internal/app/models"

// EnrollRequest enrolls one student in an offering through a section
type EnrollRequest struct {
	StudentID  int64 `json:"studentId" binding:"required,min=1" example:"21"`
	OfferingID int64 `json:"offeringId" binding:"required,min=1" example:"3"`
	SectionID  int64 `json:"sectionId" binding:"required,min=1" example:"5"`
}

// BatchEnrollRequest enrolls as many of the listed students as fit
type BatchEnrollRequest struct {
	OfferingID int64   `json:"offeringId" binding:"required,min=1" example:"3"`
	SectionID  int64   `json:"sectionId" binding:"required,min=1" example:"5"`
	StudentIDs []int64 `json:"studentIds" binding:"required,min=1,dive,min=1"`
}

// UpdateEnrollmentStatusRequest moves an enrollment along its status graph
type UpdateEnrollmentStatusRequest struct {
	Status models.EnrollmentStatus `json:"status" binding:"required,enrollmentstatus" example:"completed"`
	// Override is the staff path that may leave the status graph.
	Override bool   `json:"override,omitempty"`
	Reason   string `json:"reason,omitempty" binding:"required_if=Override true,max=255"`
}

// SkippedStudent names a student left out of a batch enrollment and why
type SkippedStudent struct {
	StudentID int64  `json:"studentId" example:"22"`
	Reason    string `json:"reason" example:"SCH_010"`
	Message   string `json:"message" example:"section 5 is full (capacity 40)"`
}

// BatchEnrollResult reports exactly how many students were enrolled
type BatchEnrollResult struct {
	Requested   int                  `json:"requested" example:"3"`
	Enrolled    int                  `json:"enrolled" example:"2"`
	Enrollments []*models.Enrollment `json:"enrollments"`
	Skipped     []SkippedStudent     `json:"skipped"`
}

// SeatUpdate is published on the seat feed after every seat change of a section
type SeatUpdate struct {
	SectionID int64 `json:"sectionId" example:"5"`
	Enrolled  int   `json:"enrolled" example:"39"`
	Capacity  int   `json:"capacity" example:"40"`
	Available int   `json:"available" example:"1"`
}
