package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnrollmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to EnrollmentStatus
		want     bool
	}{
		{EnrollmentEnrolled, EnrollmentDropped, true},
		{EnrollmentEnrolled, EnrollmentCompleted, true},
		{EnrollmentEnrolled, EnrollmentEnrolled, false},
		{EnrollmentCompleted, EnrollmentEnrolled, false},
		{EnrollmentDropped, EnrollmentEnrolled, false},
		{EnrollmentDropped, EnrollmentCompleted, false},
		{EnrollmentCompleted, EnrollmentDropped, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOfferingStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, OfferingOpen.CanTransitionTo(OfferingClosed))
	assert.True(t, OfferingClosed.CanTransitionTo(OfferingOpen))
	assert.True(t, OfferingOpen.CanTransitionTo(OfferingCancelled))
	assert.False(t, OfferingOpen.CanTransitionTo(OfferingOpen))
	assert.False(t, OfferingCancelled.CanTransitionTo(OfferingOpen))
	assert.False(t, OfferingOpen.CanTransitionTo("archived"))
}

func TestResolveInstructor(t *testing.T) {
	sectionA := int64(10)
	sectionB := int64(11)
	now := time.Now()

	offeringWide := &AssignmentDetails{
		FacultyAssignment: FacultyAssignment{ID: 1, OfferingID: 5, InstructorID: 100, Status: AssignmentActive, AssignedAt: now},
		InstructorName:    "Ada Lovelace",
	}
	scopedA := &AssignmentDetails{
		FacultyAssignment: FacultyAssignment{ID: 2, OfferingID: 5, InstructorID: 200, SectionID: &sectionA, Status: AssignmentActive, AssignedAt: now.Add(-time.Hour)},
		InstructorName:    "Alan Turing",
	}
	inactiveB := &AssignmentDetails{
		FacultyAssignment: FacultyAssignment{ID: 3, OfferingID: 5, InstructorID: 300, SectionID: &sectionB, Status: AssignmentInactive, AssignedAt: now},
		InstructorName:    "Grace Hopper",
	}

	t.Run("section scoped wins regardless of order", func(t *testing.T) {
		for _, list := range [][]*AssignmentDetails{
			{offeringWide, scopedA},
			{scopedA, offeringWide},
		} {
			ref := ResolveInstructor(list, 5, sectionA)
			if assert.NotNil(t, ref) {
				assert.Equal(t, int64(200), ref.InstructorID)
				assert.Equal(t, "section", ref.Scope)
			}
		}
	})

	t.Run("falls back to offering wide", func(t *testing.T) {
		ref := ResolveInstructor([]*AssignmentDetails{offeringWide, scopedA, inactiveB}, 5, sectionB)
		if assert.NotNil(t, ref) {
			assert.Equal(t, int64(100), ref.InstructorID)
			assert.Equal(t, "offering", ref.Scope)
		}
	})

	t.Run("other offering ignored", func(t *testing.T) {
		assert.Nil(t, ResolveInstructor([]*AssignmentDetails{offeringWide}, 6, sectionA))
	})
}

func TestUserFormFields(t *testing.T) {
	names := func(fields []FormField) []string {
		out := make([]string, 0, len(fields))
		for _, f := range fields {
			out = append(out, f.Name)
		}
		return out
	}

	student := names(UserFormFields(RoleStudent))
	assert.Contains(t, student, "studentNumber")
	assert.Contains(t, student, "programId")
	assert.NotContains(t, student, "employeeNumber")

	instructor := names(UserFormFields(RoleInstructor))
	assert.Contains(t, instructor, "employeeNumber")
	assert.Contains(t, instructor, "departmentId")
	assert.NotContains(t, instructor, "studentNumber")

	assert.Len(t, UserFormFields("GUEST"), 4)

	missing := MissingUserFields(RoleStudent, map[string]string{
		"email": "s@school.edu", "firstName": "S", "lastName": "T", "roleType": "STUDENT",
	})
	assert.ElementsMatch(t, []string{"studentNumber", "programId"}, missing)
	assert.Empty(t, MissingUserFields(RoleStaff, map[string]string{
		"email": "x@school.edu", "firstName": "X", "lastName": "Y", "roleType": "STAFF", "employeeNumber": "E-1",
	}))
}
