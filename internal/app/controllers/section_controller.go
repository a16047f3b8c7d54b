package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/app/services"
	"github.com/yigit/campus/internal/middleware"
	"github.com/yigit/campus/internal/pkg/helpers"
	"github.com/yigit/campus/internal/pkg/logger"
)

// SeatFeed upgrades a request into a live seat subscription for one section.
type SeatFeed interface {
	Serve(w http.ResponseWriter, r *http.Request, sectionID, userID int64, initial any) error
}

// SectionController handles sections and the offerings attached to them
type SectionController struct {
	sectionService services.SectionService
	seatFeed       SeatFeed
}

// NewSectionController creates a new section controller
func NewSectionController(sectionService services.SectionService, seatFeed SeatFeed) *SectionController {
	return &SectionController{
		sectionService: sectionService,
		seatFeed:       seatFeed,
	}
}

// CreateSection creates a section with a fresh enrollment code
// @Summary Create section
// @Description Optionally attaches a first offering in the same transaction
// @Tags sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSectionRequest true "Section"
// @Success 201 {object} dto.StructuredResponse{data=models.SectionDetails}
// @Failure 409 {object} dto.StructuredResponse "Offering not open (SCH_004)"
// @Failure 503 {object} dto.StructuredResponse "No enrollment code available (SCH_001)"
// @Router /sections [post]
func (c *SectionController) CreateSection(ctx *gin.Context) {
	var req dto.CreateSectionRequest
	if !bind(ctx, &req) {
		return
	}
	section, err := c.sectionService.CreateSection(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, section, "Section created successfully")
}

// ListSections lists sections with subjects, instructors and seat counts
// @Summary List sections
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param semesterId query int false "Semester ID"
// @Param status query string false "active or inactive"
// @Param search query string false "Name or enrollment code"
// @Param page query int false "Page" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.StructuredResponse{data=dto.SectionListResponse}
// @Router /sections [get]
func (c *SectionController) ListSections(ctx *gin.Context) {
	semesterID, ok := optionalIDQuery(ctx, "semesterId")
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)
	filter := repositories.SectionFilter{
		SemesterID: semesterID,
		Search:     ctx.Query("search"),
		Page:       page,
		Size:       size,
	}
	if status := ctx.Query("status"); status != "" {
		s := models.SectionStatus(status)
		filter.Status = &s
	}

	sections, total, err := c.sectionService.ListSections(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.SectionListResponse{
		Sections:   sections,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, "Sections retrieved successfully")
}

// GetSection returns one section
// @Summary Get section
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Success 200 {object} dto.StructuredResponse{data=models.SectionDetails}
// @Failure 404 {object} dto.StructuredResponse "Section not found"
// @Router /sections/{id} [get]
func (c *SectionController) GetSection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	section, err := c.sectionService.GetSection(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, section, "Section retrieved successfully")
}

// GetSectionByCode looks a section up by its enrollment code
// @Summary Get section by enrollment code
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param code path string true "Enrollment code" example(ABC-1234)
// @Success 200 {object} dto.StructuredResponse{data=models.SectionDetails}
// @Failure 400 {object} dto.StructuredResponse "Malformed code"
// @Failure 404 {object} dto.StructuredResponse "Section not found"
// @Router /sections/code/{code} [get]
func (c *SectionController) GetSectionByCode(ctx *gin.Context) {
	section, err := c.sectionService.GetSectionByCode(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, section, "Section retrieved successfully")
}

// UpdateSection changes name, capacity or status
// @Summary Update section
// @Tags sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Param request body dto.UpdateSectionRequest true "Changes"
// @Success 200 {object} dto.StructuredResponse{data=models.SectionDetails}
// @Failure 409 {object} dto.StructuredResponse "Capacity below enrolled count (SCH_013)"
// @Router /sections/{id} [patch]
func (c *SectionController) UpdateSection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateSectionRequest
	if !bind(ctx, &req) {
		return
	}
	section, err := c.sectionService.UpdateSection(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, section, "Section updated successfully")
}

// DeleteSection deactivates a section without enrolled students
// @Summary Delete section
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Success 200 {object} dto.StructuredResponse
// @Failure 409 {object} dto.StructuredResponse "Students enrolled (SCH_007)"
// @Router /sections/{id} [delete]
func (c *SectionController) DeleteSection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.sectionService.DeleteSection(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Section deleted successfully")
}

// AttachSubject binds an open offering to the section
// @Summary Attach offering
// @Tags sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Param request body dto.AttachSubjectRequest true "Offering"
// @Success 201 {object} dto.StructuredResponse{data=models.SectionSubject}
// @Failure 409 {object} dto.StructuredResponse "Already attached (SCH_005) or offering not open (SCH_004)"
// @Router /sections/{id}/subjects [post]
func (c *SectionController) AttachSubject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.AttachSubjectRequest
	if !bind(ctx, &req) {
		return
	}
	ss, err := c.sectionService.AttachSubject(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, ss, "Offering attached successfully")
}

// DetachSubject removes an offering from a section
// @Summary Detach offering
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section subject ID"
// @Success 200 {object} dto.StructuredResponse
// @Failure 409 {object} dto.StructuredResponse "Students enrolled through it (SCH_006)"
// @Router /section-subjects/{id} [delete]
func (c *SectionController) DetachSubject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.sectionService.DetachSubject(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Offering detached successfully")
}

// ListAvailableOfferings lists the open offerings a section could still take
// @Summary Offerings available to a section
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Param semesterId query int true "Semester ID"
// @Success 200 {object} dto.StructuredResponse{data=[]models.OfferingDetails}
// @Router /sections/{id}/available-offerings [get]
func (c *SectionController) ListAvailableOfferings(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	semesterID, ok := optionalIDQuery(ctx, "semesterId")
	if !ok {
		return
	}
	if semesterID == nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "semesterId is required").WithField("semesterId")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}
	offerings, err := c.sectionService.ListAvailableOfferings(ctx.Request.Context(), id, *semesterID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, offerings, "Available offerings retrieved successfully")
}

// ListEnrollments returns the roster of a section
// @Summary Section roster
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Success 200 {object} dto.StructuredResponse{data=[]models.EnrollmentDetails}
// @Router /sections/{id}/enrollments [get]
func (c *SectionController) ListEnrollments(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	roster, err := c.sectionService.ListEnrollments(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, roster, "Enrollments retrieved successfully")
}

// SeatFeed streams seat updates of a section over a websocket
// @Summary Live seat feed
// @Description Sends the current seat state, then one dto.SeatUpdate per change
// @Tags sections
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Param token query string false "Access token for clients that cannot set headers"
// @Success 101 {object} dto.SeatUpdate
// @Router /sections/{id}/seats/ws [get]
func (c *SectionController) SeatFeed(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	snapshot, err := c.sectionService.SeatSnapshot(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	userID, _ := middleware.UserID(ctx)
	if err := c.seatFeed.Serve(ctx.Writer, ctx.Request, id, userID, snapshot); err != nil {
		// The upgrader has already answered the client.
		logger.Ctx(ctx.Request.Context()).Warn().Err(err).Int64("sectionID", id).Msg("Seat feed upgrade failed")
	}
}
