package dto

import "github.com/yigit/campus/internal/app/models"

// UserFormResponse lists the fields the user form shows for a role
type UserFormResponse struct {
	Role   models.RoleType    `json:"role" example:"STUDENT"`
	Fields []models.FormField `json:"fields"`
}
