package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/services"
	"github.com/yigit/campus/internal/middleware"
)

// EnrollmentController handles student enrollment
type EnrollmentController struct {
	enrollmentService services.EnrollmentService
}

// NewEnrollmentController creates a new enrollment controller
func NewEnrollmentController(enrollmentService services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{enrollmentService: enrollmentService}
}

// Enroll enrolls one student
// @Summary Enroll student
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EnrollRequest true "Enrollment"
// @Success 201 {object} dto.StructuredResponse{data=models.Enrollment}
// @Failure 409 {object} dto.StructuredResponse "Offering closed (SCH_008), already enrolled (SCH_009) or section full (SCH_010)"
// @Router /enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	var req dto.EnrollRequest
	if !bind(ctx, &req) {
		return
	}
	enrollment, err := c.enrollmentService.Enroll(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, enrollment, "Student enrolled successfully")
}

// BatchEnroll enrolls as many students as fit
// @Summary Batch enroll
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BatchEnrollRequest true "Students"
// @Success 200 {object} dto.StructuredResponse{data=dto.BatchEnrollResult}
// @Router /enrollments/batch [post]
func (c *EnrollmentController) BatchEnroll(ctx *gin.Context) {
	var req dto.BatchEnrollRequest
	if !bind(ctx, &req) {
		return
	}
	result, err := c.enrollmentService.BatchEnroll(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, result, "Batch enrollment finished")
}

// GetEnrollment returns one enrollment
// @Summary Get enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.StructuredResponse{data=models.Enrollment}
// @Router /enrollments/{id} [get]
func (c *EnrollmentController) GetEnrollment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	enrollment, err := c.enrollmentService.GetEnrollment(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, enrollment, "Enrollment retrieved successfully")
}

// UpdateEnrollmentStatus drops or completes an enrollment
// @Summary Change enrollment status
// @Description With override, staff may set any status; a reason is then required
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param request body dto.UpdateEnrollmentStatusRequest true "New status"
// @Success 200 {object} dto.StructuredResponse{data=models.Enrollment}
// @Failure 400 {object} dto.StructuredResponse "Invalid transition (SCH_011)"
// @Router /enrollments/{id}/status [patch]
func (c *EnrollmentController) UpdateEnrollmentStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateEnrollmentStatusRequest
	if !bind(ctx, &req) {
		return
	}

	var (
		enrollment *models.Enrollment
		err        error
	)
	if req.Override {
		actorID, _ := middleware.UserID(ctx)
		enrollment, err = c.enrollmentService.OverrideStatus(ctx.Request.Context(), actorID, id, req.Status, req.Reason)
	} else {
		enrollment, err = c.enrollmentService.SetStatus(ctx.Request.Context(), id, req.Status)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, enrollment, "Enrollment status updated successfully")
}

// Unenroll removes an enrollment record
// @Summary Unenroll
// @Description Deletes the record; use the status endpoint with dropped to keep history
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.StructuredResponse
// @Router /enrollments/{id} [delete]
func (c *EnrollmentController) Unenroll(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.enrollmentService.Unenroll(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Enrollment removed successfully")
}
