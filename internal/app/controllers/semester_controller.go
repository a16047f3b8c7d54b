package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/services"
	"github.com/yigit/campus/internal/middleware"
)

// SemesterController handles semester operations
type SemesterController struct {
	semesterService services.SemesterService
}

// NewSemesterController creates a new semester controller
func NewSemesterController(semesterService services.SemesterService) *SemesterController {
	return &SemesterController{semesterService: semesterService}
}

// CreateSemester creates an inactive semester
// @Summary Create semester
// @Tags semesters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSemesterRequest true "Semester"
// @Success 201 {object} dto.StructuredResponse{data=models.Semester}
// @Failure 400 {object} dto.StructuredResponse "Validation failed"
// @Failure 403 {object} dto.StructuredResponse "Staff only"
// @Router /semesters [post]
func (c *SemesterController) CreateSemester(ctx *gin.Context) {
	var req dto.CreateSemesterRequest
	if !bind(ctx, &req) {
		return
	}
	semester, err := c.semesterService.CreateSemester(ctx.Request.Context(), req.Name, req.AcademicYear, req.Level)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, semester, "Semester created successfully")
}

// ListSemesters lists all semesters
// @Summary List semesters
// @Tags semesters
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=[]models.Semester}
// @Router /semesters [get]
func (c *SemesterController) ListSemesters(ctx *gin.Context) {
	semesters, err := c.semesterService.ListSemesters(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, semesters, "Semesters retrieved successfully")
}

// GetActiveSemester returns the active semester
// @Summary Get active semester
// @Tags semesters
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=models.Semester}
// @Failure 404 {object} dto.StructuredResponse "No active semester"
// @Router /semesters/active [get]
func (c *SemesterController) GetActiveSemester(ctx *gin.Context) {
	semester, err := c.semesterService.GetActiveSemester(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, semester, "Active semester retrieved successfully")
}

// GetSemester returns one semester
// @Summary Get semester
// @Tags semesters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Semester ID"
// @Success 200 {object} dto.StructuredResponse{data=models.Semester}
// @Failure 404 {object} dto.StructuredResponse "Semester not found"
// @Router /semesters/{id} [get]
func (c *SemesterController) GetSemester(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	semester, err := c.semesterService.GetSemester(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, semester, "Semester retrieved successfully")
}

// ActivateSemester makes the semester the active one
// @Summary Activate semester
// @Description Fails with SCH_012 while another semester is active
// @Tags semesters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Semester ID"
// @Success 200 {object} dto.StructuredResponse{data=models.Semester}
// @Failure 409 {object} dto.StructuredResponse "Another semester is active"
// @Router /semesters/{id}/activate [post]
func (c *SemesterController) ActivateSemester(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	semester, err := c.semesterService.ActivateSemester(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, semester, "Semester activated successfully")
}

// DeactivateSemester clears the active flag
// @Summary Deactivate semester
// @Tags semesters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Semester ID"
// @Success 200 {object} dto.StructuredResponse{data=models.Semester}
// @Router /semesters/{id}/deactivate [post]
func (c *SemesterController) DeactivateSemester(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	semester, err := c.semesterService.DeactivateSemester(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, semester, "Semester deactivated successfully")
}
