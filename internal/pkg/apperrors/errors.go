package apperrors

import "errors"

// Error kinds. Every domain error wraps exactly one of these so callers can
// pick a response without knowing the concrete type.
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrValidationFailed = errors.New("validation failed")
	ErrExhausted        = errors.New("resource exhausted")
	ErrPermissionDenied = errors.New("permission denied")
)

// Authentication errors
var (
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// Not-found errors
var (
	ErrSemesterNotFound       = NewResourceNotFoundError("semester not found")
	ErrSubjectNotFound        = NewResourceNotFoundError("subject not found")
	ErrOfferingNotFound       = NewResourceNotFoundError("offering not found")
	ErrSectionNotFound        = NewResourceNotFoundError("section not found")
	ErrSectionSubjectNotFound = NewResourceNotFoundError("section subject not found")
	ErrAssignmentNotFound     = NewResourceNotFoundError("faculty assignment not found")
	ErrEnrollmentNotFound     = NewResourceNotFoundError("enrollment not found")
	ErrUserNotFound           = NewResourceNotFoundError("user not found")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
		Code:    CodeNotFound,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
		Code:    CodeConflict,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
		Code:    CodeForbidden,
	}
}

// NewValidationError creates a validation error with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Code:    CodeValidation,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// ErrorCode implements Coded.
func (e *CustomError) ErrorCode() string {
	return e.Code
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
