package services

import (
	"context"
	"fmt"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/pkg/apperrors"
)

// FormService describes the role dependent user form
type FormService interface {
	UserForm(ctx context.Context, role models.RoleType) (*dto.UserFormResponse, error)
}

type formServiceImpl struct{}

// NewFormService creates a new form service instance
func NewFormService() FormService {
	return formServiceImpl{}
}

func (formServiceImpl) UserForm(_ context.Context, role models.RoleType) (*dto.UserFormResponse, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidationFailed, role)
	}
	return &dto.UserFormResponse{Role: role, Fields: models.UserFormFields(role)}, nil
}
