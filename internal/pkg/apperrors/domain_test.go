package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		code string
	}{
		{"exhausted", &CodeExhaustedError{Attempts: 10}, ErrExhausted, CodeCodeExhausted},
		{"duplicate offering", &DuplicateOfferingError{SubjectID: 1, SemesterID: 2}, ErrConflict, CodeDuplicateOffering},
		{"section full", &SectionFullError{SectionID: 1, Capacity: 2}, ErrConflict, CodeSectionFull},
		{"transition", &InvalidTransitionError{Entity: "enrollment", From: "completed", To: "enrolled"}, ErrValidationFailed, CodeInvalidTransition},
		{"not found", ErrSectionNotFound, ErrResourceNotFound, CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("service: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.kind))

			var coded Coded
			if assert.True(t, errors.As(wrapped, &coded)) {
				assert.Equal(t, tt.code, coded.ErrorCode())
			}
		})
	}
}

func TestBlockingCount(t *testing.T) {
	err := fmt.Errorf("delete: %w", &HasEnrolledStudentsError{SectionID: 3, Count: 7})

	var blocking Blocking
	if assert.True(t, errors.As(err, &blocking)) {
		assert.Equal(t, 7, blocking.BlockingCount())
	}
	assert.Contains(t, err.Error(), "7 student(s) enrolled")
}
