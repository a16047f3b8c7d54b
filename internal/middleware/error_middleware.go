package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/logger"
	"github.com/yigit/campus/internal/pkg/validation"
)

// HandleAPIError renders err as the error envelope. Domain errors keep their
// own code and message; blocking errors expose the number of dependents.
func HandleAPIError(c *gin.Context, err error) {
	status, code, message := classify(err)

	var coded apperrors.Coded
	if errors.As(err, &coded) && coded.ErrorCode() != "" {
		code = dto.ErrorCode(coded.ErrorCode())
	}
	detail := dto.NewErrorDetail(code, message)

	var blocking apperrors.Blocking
	if errors.As(err, &blocking) {
		detail = detail.WithDetails(gin.H{"blockingCount": blocking.BlockingCount()})
	}

	log := logger.Ctx(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	} else {
		log.Debug().Err(err).Str("code", string(detail.Code)).Msg("Request rejected")
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func classify(err error) (int, dto.ErrorCode, string) {
	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, err.Error()
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorCodeConflict, err.Error()
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed, err.Error()
	case errors.Is(err, apperrors.ErrExhausted):
		return http.StatusServiceUnavailable, dto.ErrorCodeUnavailable, err.Error()
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.ErrorCodeForbidden, err.Error()
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password"
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled"
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token has expired"
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"
	}
	return http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"
}

// HandleBindError renders a request that failed binding or its rules.
func HandleBindError(c *gin.Context, err error) {
	fields := validation.FieldErrors(err)
	detail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid request").WithDetails(fields)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		detail = dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").
			WithField(fields[0].Field).
			WithDetails(fields)
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}
