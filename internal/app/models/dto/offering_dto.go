package dto

import "github.com/yigit/campus/internal/app/models"

// CreateOfferingRequest schedules a subject in a semester
type CreateOfferingRequest struct {
	SubjectID  int64 `json:"subjectId" binding:"required,min=1" example:"1"`
	SemesterID int64 `json:"semesterId" binding:"required,min=1" example:"1"`
}

// UpdateOfferingStatusRequest moves an offering to another status
type UpdateOfferingStatusRequest struct {
	Status models.OfferingStatus `json:"status" binding:"required,oneof=open closed cancelled" example:"closed"`
}

// OfferingResponse is an offering with its subject and semester labels and the
// offering-wide instructor, if any
type OfferingResponse struct {
	*models.OfferingDetails
	Instructor *models.InstructorRef `json:"instructor,omitempty"`
}
