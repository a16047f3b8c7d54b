package dto

// AssignInstructorRequest assigns an instructor to an offering, optionally within one section
type AssignInstructorRequest struct {
	OfferingID   int64  `json:"offeringId" binding:"required,min=1" example:"3"`
	InstructorID int64  `json:"instructorId" binding:"required,min=1" example:"12"`
	SectionID    *int64 `json:"sectionId,omitempty" binding:"omitempty,min=1" example:"5"`
}
