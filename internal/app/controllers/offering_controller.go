package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/app/services"
	"github.com/yigit/campus/internal/middleware"
)

// OfferingController handles the offering catalog
type OfferingController struct {
	offeringService   services.OfferingService
	assignmentService services.AssignmentService
}

// NewOfferingController creates a new offering controller
func NewOfferingController(offeringService services.OfferingService, assignmentService services.AssignmentService) *OfferingController {
	return &OfferingController{
		offeringService:   offeringService,
		assignmentService: assignmentService,
	}
}

// CreateOffering schedules a subject in a semester
// @Summary Create offering
// @Tags offerings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateOfferingRequest true "Offering"
// @Success 201 {object} dto.StructuredResponse{data=models.OfferingDetails}
// @Failure 404 {object} dto.StructuredResponse "Subject or semester not found"
// @Failure 409 {object} dto.StructuredResponse "Offering already exists (SCH_002)"
// @Router /offerings [post]
func (c *OfferingController) CreateOffering(ctx *gin.Context) {
	var req dto.CreateOfferingRequest
	if !bind(ctx, &req) {
		return
	}
	offering, err := c.offeringService.CreateOffering(ctx.Request.Context(), req.SubjectID, req.SemesterID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, offering, "Offering created successfully")
}

// ListOfferings lists offerings
// @Summary List offerings
// @Tags offerings
// @Produce json
// @Security BearerAuth
// @Param semesterId query int false "Semester ID"
// @Param subjectId query int false "Subject ID"
// @Param status query string false "open, closed or cancelled"
// @Success 200 {object} dto.StructuredResponse{data=[]models.OfferingDetails}
// @Router /offerings [get]
func (c *OfferingController) ListOfferings(ctx *gin.Context) {
	var filter repositories.OfferingFilter
	var ok bool
	if filter.SemesterID, ok = optionalIDQuery(ctx, "semesterId"); !ok {
		return
	}
	if filter.SubjectID, ok = optionalIDQuery(ctx, "subjectId"); !ok {
		return
	}
	if status := ctx.Query("status"); status != "" {
		s := models.OfferingStatus(status)
		filter.Status = &s
	}

	offerings, err := c.offeringService.ListOfferings(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, offerings, "Offerings retrieved successfully")
}

// GetOffering returns an offering with its offering-wide instructor
// @Summary Get offering
// @Tags offerings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offering ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.OfferingResponse}
// @Failure 404 {object} dto.StructuredResponse "Offering not found"
// @Router /offerings/{id} [get]
func (c *OfferingController) GetOffering(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	offering, err := c.offeringService.GetOffering(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, offering, "Offering retrieved successfully")
}

// UpdateOfferingStatus opens, closes or cancels an offering
// @Summary Change offering status
// @Description Cancelling fails with SCH_003 while active sections teach the offering
// @Tags offerings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offering ID"
// @Param request body dto.UpdateOfferingStatusRequest true "New status"
// @Success 200 {object} dto.StructuredResponse{data=models.Offering}
// @Failure 400 {object} dto.StructuredResponse "Invalid transition (SCH_011)"
// @Failure 409 {object} dto.StructuredResponse "Active sections remain (SCH_003)"
// @Router /offerings/{id}/status [patch]
func (c *OfferingController) UpdateOfferingStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateOfferingStatusRequest
	if !bind(ctx, &req) {
		return
	}
	offering, err := c.offeringService.SetStatus(ctx.Request.Context(), id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, offering, "Offering status updated successfully")
}

// ListAssignments lists the faculty assignments of an offering
// @Summary List offering assignments
// @Tags offerings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offering ID"
// @Success 200 {object} dto.StructuredResponse{data=[]models.AssignmentDetails}
// @Router /offerings/{id}/assignments [get]
func (c *OfferingController) ListAssignments(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	assignments, err := c.assignmentService.ListByOffering(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, assignments, "Assignments retrieved successfully")
}
