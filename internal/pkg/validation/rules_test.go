package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campus/internal/app/models/dto"
)

type sample struct {
	Code   string `validate:"enrollcode"`
	Year   string `validate:"academicyear"`
	Status string `validate:"sectionstatus"`
}

func newValidator(t *testing.T) *validator.Validate {
	v := validator.New()
	require.NoError(t, Register(v))
	return v
}

func TestRules(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name  string
		in    sample
		field string
	}{
		{"valid", sample{"KMR-0427", "2025-2026", "active"}, ""},
		{"ambiguous letter", sample{"KLR-0427", "2025-2026", "active"}, "Code"},
		{"year gap", sample{"KMR-0427", "2025-2027", "active"}, "Year"},
		{"unknown status", sample{"KMR-0427", "2025-2026", "archived"}, "Status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			fields := FieldErrors(err)
			require.Len(t, fields, 1)
			assert.Equal(t, tt.field, fields[0].Field)
		})
	}
}

func TestRequestBindingTags(t *testing.T) {
	v := newValidator(t)
	v.SetTagName("binding")

	err := v.Struct(dto.UpdateEnrollmentStatusRequest{Status: "completed", Override: true})
	fields := FieldErrors(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "reason", fields[0].Field)
	assert.Equal(t, "reason is required when Override true", fields[0].Message)

	assert.NoError(t, v.Struct(dto.UpdateEnrollmentStatusRequest{Status: "completed"}))
	assert.Error(t, v.Struct(dto.BatchEnrollRequest{OfferingID: 1, SectionID: 1}))
}

func TestFieldErrorsUseJSONNames(t *testing.T) {
	v := newValidator(t)
	v.SetTagName("binding")

	fields := FieldErrors(v.Struct(dto.CreateSectionRequest{Name: "A"}))
	require.Len(t, fields, 1)
	assert.Equal(t, "maxCapacity", fields[0].Field)
	assert.Equal(t, "maxCapacity is required", fields[0].Message)

	type query struct {
		Page int `form:"page" binding:"min=1"`
		Raw  int `json:"-" binding:"min=1"`
	}
	fields = FieldErrors(v.Struct(query{}))
	require.Len(t, fields, 2)
	assert.Equal(t, "page", fields[0].Field)
	assert.Equal(t, "Raw", fields[1].Field)
}
