// Package validation registers the custom binding rules of the API and
// turns validator errors into client-facing field errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/campus/internal/app/codegen"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
)

// academicYearPattern matches "2025-2026".
var academicYearPattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

// Register adds the custom rules to v and reports fields by their JSON
// names.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)

	rules := map[string]validator.Func{
		"enrollcode":       enrollCode,
		"sectionstatus":    sectionStatus,
		"offeringstatus":   offeringStatus,
		"enrollmentstatus": enrollmentStatus,
		"academicyear":     academicYear,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("registering %s: %w", tag, err)
		}
	}
	return nil
}

// RegisterWithGin adds the custom rules to gin's binding validator.
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator is not go-playground/validator")
	}
	return Register(v)
}

// fieldName returns the json name of a field, then its form name. An empty
// result keeps the Go field name.
func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		}
		return name
	}
	return ""
}

// ValidEnrollCode reports whether code has the enrollment code shape.
func ValidEnrollCode(code string) bool {
	return codegen.Valid(code)
}

func enrollCode(fl validator.FieldLevel) bool {
	return codegen.Valid(fl.Field().String())
}

func sectionStatus(fl validator.FieldLevel) bool {
	return models.SectionStatus(fl.Field().String()).Valid()
}

func offeringStatus(fl validator.FieldLevel) bool {
	return models.OfferingStatus(fl.Field().String()).Valid()
}

func enrollmentStatus(fl validator.FieldLevel) bool {
	return models.EnrollmentStatus(fl.Field().String()).Valid()
}

// academicYear accepts consecutive years only.
func academicYear(fl validator.FieldLevel) bool {
	m := academicYearPattern.FindStringSubmatch(fl.Field().String())
	if m == nil {
		return false
	}
	from, _ := strconv.Atoi(m[1])
	to, _ := strconv.Atoi(m[2])
	return to == from+1
}

// FieldErrors converts a binding error into field errors. Errors that are
// not validator errors (malformed JSON) yield a single entry without field.
func FieldErrors(err error) []dto.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []dto.FieldError{{Message: err.Error()}}
	}
	out := make([]dto.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, dto.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "required_if":
		return e.Field() + " is required when " + e.Param()
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "enrollcode":
		return e.Field() + " must look like ABC-1234"
	case "academicyear":
		return e.Field() + " must be two consecutive years like 2025-2026"
	case "sectionstatus", "offeringstatus", "enrollmentstatus":
		return e.Field() + " is not a known status"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
