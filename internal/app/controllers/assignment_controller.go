package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/services"
	"github.com/yigit/campus/internal/middleware"
)

// AssignmentController handles faculty assignments
type AssignmentController struct {
	assignmentService services.AssignmentService
}

// NewAssignmentController creates a new assignment controller
func NewAssignmentController(assignmentService services.AssignmentService) *AssignmentController {
	return &AssignmentController{assignmentService: assignmentService}
}

// AssignInstructor assigns or reassigns the instructor of an offering
// @Summary Assign instructor
// @Description Without sectionId the assignment covers every section of the offering
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AssignInstructorRequest true "Assignment"
// @Success 200 {object} dto.StructuredResponse{data=models.FacultyAssignment}
// @Failure 400 {object} dto.StructuredResponse "Not an instructor (SCH_016) or not attached (SCH_015)"
// @Router /assignments [post]
func (c *AssignmentController) AssignInstructor(ctx *gin.Context) {
	var req dto.AssignInstructorRequest
	if !bind(ctx, &req) {
		return
	}
	assignment, err := c.assignmentService.AssignInstructor(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, assignment, "Instructor assigned successfully")
}

// UnassignInstructor deactivates an assignment
// @Summary Unassign instructor
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.StructuredResponse{data=models.FacultyAssignment}
// @Failure 404 {object} dto.StructuredResponse "Assignment not found"
// @Router /assignments/{id} [delete]
func (c *AssignmentController) UnassignInstructor(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	assignment, err := c.assignmentService.UnassignInstructor(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, assignment, "Instructor unassigned successfully")
}
