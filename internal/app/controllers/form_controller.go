package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/services"
	"github.com/yigit/campus/internal/middleware"
)

// FormController serves form layouts
type FormController struct {
	formService services.FormService
}

// NewFormController creates a new form controller
func NewFormController(formService services.FormService) *FormController {
	return &FormController{formService: formService}
}

// GetUserForm lists the user form fields shown for a role
// @Summary User form fields
// @Tags forms
// @Produce json
// @Param role query string true "STUDENT, INSTRUCTOR or STAFF"
// @Success 200 {object} dto.StructuredResponse{data=dto.UserFormResponse}
// @Failure 400 {object} dto.StructuredResponse "Unknown role"
// @Router /forms/user [get]
func (c *FormController) GetUserForm(ctx *gin.Context) {
	form, err := c.formService.UserForm(ctx.Request.Context(), models.RoleType(ctx.Query("role")))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, form, "Form retrieved successfully")
}
