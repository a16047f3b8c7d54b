package dto

import "time"

// ErrorCode is the stable code rendered to clients
type ErrorCode string

const (
	ErrorCodeInvalidCredentials ErrorCode = "AUTH_001"
	ErrorCodeAccountDisabled    ErrorCode = "AUTH_004"
	ErrorCodeInvalidToken       ErrorCode = "AUTH_005"
	ErrorCodeExpiredToken       ErrorCode = "AUTH_006"
	ErrorCodeUnauthorized       ErrorCode = "AUTH_008"
	ErrorCodeResourceNotFound   ErrorCode = "RES_001"
	ErrorCodeConflict           ErrorCode = "RES_004"
	ErrorCodeValidationFailed   ErrorCode = "VAL_001"
	ErrorCodeInternalServer     ErrorCode = "SRV_001"
	ErrorCodeUnavailable        ErrorCode = "SRV_004"
	ErrorCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrorCodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
)

// ErrorDetail carries the specific reason of a failed call
type ErrorDetail struct {
	Code    ErrorCode   `json:"code" example:"SCH_010"`
	Message string      `json:"message" example:"section 3 is full (capacity 30)"`
	Field   string      `json:"field,omitempty" example:"maxCapacity"`
	Details interface{} `json:"details,omitempty"`
}

// NewErrorDetail creates an error detail
func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{Code: code, Message: message}
}

// WithField names the offending request field
func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

// WithDetails attaches structured details
func (e *ErrorDetail) WithDetails(details interface{}) *ErrorDetail {
	e.Details = details
	return e
}

// NewErrorResponse wraps an error detail in the response envelope
func NewErrorResponse(detail *ErrorDetail) StructuredResponse {
	return StructuredResponse{
		Success:   false,
		Message:   detail.Message,
		Error:     detail,
		Timestamp: time.Now().UTC(),
	}
}

// FieldError is one failed binding rule
type FieldError struct {
	Field   string `json:"field" example:"maxCapacity"`
	Message string `json:"message" example:"must be at least 1"`
}
