package dto

import "github.com/yigit/campus/internal/app/models"

// CreateSectionRequest creates a section, optionally bound to its first offering
type CreateSectionRequest struct {
	Name        string `json:"name" binding:"required,max=100" example:"BSCS 1-A"`
	MaxCapacity int    `json:"maxCapacity" binding:"required,min=1,max=1000" example:"40"`
	OfferingID  *int64 `json:"offeringId,omitempty" binding:"omitempty,min=1" example:"3"`
	Schedule    string `json:"schedule,omitempty" binding:"max=100" example:"MWF 8-9"`
	Room        string `json:"room,omitempty" binding:"max=50" example:"R-201"`
}

// UpdateSectionRequest changes any subset of name, capacity and status
type UpdateSectionRequest struct {
	Name        *string               `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	MaxCapacity *int                  `json:"maxCapacity,omitempty" binding:"omitempty,min=1,max=1000"`
	Status      *models.SectionStatus `json:"status,omitempty" binding:"omitempty,sectionstatus"`
}

// AttachSubjectRequest binds an offering to a section
type AttachSubjectRequest struct {
	OfferingID int64  `json:"offeringId" binding:"required,min=1" example:"3"`
	Schedule   string `json:"schedule" binding:"max=100" example:"MWF 8-9"`
	Room       string `json:"room" binding:"max=50" example:"R-201"`
}

// SectionListResponse is a page of denormalized sections
type SectionListResponse struct {
	Sections   []*models.SectionDetails `json:"sections"`
	Pagination PaginationInfo           `json:"pagination"`
}
