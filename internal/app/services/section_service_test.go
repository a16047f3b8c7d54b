package services

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campus/internal/app/codegen"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/apperrors"
)

func TestCreateSectionAttachesOffering(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")

	section := f.section(t, 40, offering.ID)
	assert.True(t, codegen.Valid(section.EnrollmentCode), section.EnrollmentCode)
	assert.Equal(t, models.SectionActive, section.Status)
	assert.Equal(t, 40, section.Available)
	require.Len(t, section.Subjects, 1)
	assert.Equal(t, offering.ID, section.Subjects[0].OfferingID)
	assert.Equal(t, "CS101", section.Subjects[0].SubjectCode)
	assert.Equal(t, "R-201", section.Subjects[0].Room)

	byCode, err := f.sections.GetSectionByCode(f.ctx, section.EnrollmentCode)
	require.NoError(t, err)
	assert.Equal(t, section.ID, byCode.ID)

	_, err = f.sections.GetSectionByCode(f.ctx, "abc")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateSectionRollsBackOnClosedOffering(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	_, err := f.offerings.SetStatus(f.ctx, offering.ID, models.OfferingClosed)
	require.NoError(t, err)

	_, err = f.sections.CreateSection(f.ctx, dto.CreateSectionRequest{Name: "A", MaxCapacity: 10, OfferingID: &offering.ID})
	var notOpen *apperrors.OfferingNotOpenError
	require.ErrorAs(t, err, &notOpen)

	_, total, err := f.sections.ListSections(f.ctx, repositories.SectionFilter{})
	require.NoError(t, err)
	assert.Zero(t, total, "no section is left behind")
}

func TestCreateSectionCodeExhausted(t *testing.T) {
	f := newFixture(t)
	// Two generators with the same seed draw the same first code.
	first := NewSectionService(f.store, codegen.NewWithSource(1, rand.NewPCG(1, 1)), nil)
	second := NewSectionService(f.store, codegen.NewWithSource(1, rand.NewPCG(1, 1)), nil)

	_, err := first.CreateSection(f.ctx, dto.CreateSectionRequest{Name: "A", MaxCapacity: 10})
	require.NoError(t, err)

	_, err = second.CreateSection(f.ctx, dto.CreateSectionRequest{Name: "B", MaxCapacity: 10})
	var exhausted *apperrors.CodeExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 1, exhausted.Attempts)
	assert.ErrorIs(t, err, apperrors.ErrExhausted)
}

func TestAttachSubject(t *testing.T) {
	f := newFixture(t)
	math := f.offering(t, "MATH1")
	physics := f.offering(t, "PHYS1")
	section := f.section(t, 30, math.ID)

	_, err := f.sections.AttachSubject(f.ctx, section.ID, dto.AttachSubjectRequest{OfferingID: math.ID})
	var attached *apperrors.AlreadyAttachedError
	assert.ErrorAs(t, err, &attached)

	ss, err := f.sections.AttachSubject(f.ctx, section.ID, dto.AttachSubjectRequest{OfferingID: physics.ID, Schedule: "TTh 10-12", Room: "Lab 2"})
	require.NoError(t, err)
	assert.NotZero(t, ss.ID)

	available, err := f.sections.ListAvailableOfferings(f.ctx, section.ID, f.semester.ID)
	require.NoError(t, err)
	assert.Empty(t, available)

	chem := f.offering(t, "CHEM1")
	_, err = f.offerings.SetStatus(f.ctx, chem.ID, models.OfferingClosed)
	require.NoError(t, err)
	_, err = f.sections.AttachSubject(f.ctx, section.ID, dto.AttachSubjectRequest{OfferingID: chem.ID})
	var notOpen *apperrors.OfferingNotOpenError
	assert.ErrorAs(t, err, &notOpen)
}

func TestDetachSubjectGuarded(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	section := f.section(t, 30, offering.ID)
	student := f.students(t, 1)[0]
	enrollment := f.enroll(t, student, offering.ID, section.ID)

	ssID := section.Subjects[0].ID
	err := f.sections.DetachSubject(f.ctx, ssID)
	var blocked *apperrors.HasEnrollmentsError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, 1, blocked.BlockingCount())

	_, err = f.enrollments.SetStatus(f.ctx, enrollment.ID, models.EnrollmentDropped)
	require.NoError(t, err)
	require.NoError(t, f.sections.DetachSubject(f.ctx, ssID))

	got, err := f.sections.GetSection(f.ctx, section.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Subjects)
}

func TestUpdateSectionCapacity(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	section := f.section(t, 5, offering.ID)
	for _, id := range f.students(t, 3) {
		f.enroll(t, id, offering.ID, section.ID)
	}

	tooSmall := 2
	_, err := f.sections.UpdateSection(f.ctx, section.ID, dto.UpdateSectionRequest{MaxCapacity: &tooSmall})
	var below *apperrors.CapacityBelowEnrolledError
	require.ErrorAs(t, err, &below)
	assert.Equal(t, 3, below.Enrolled)

	exact := 3
	updated, err := f.sections.UpdateSection(f.ctx, section.ID, dto.UpdateSectionRequest{MaxCapacity: &exact})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.MaxCapacity)
	assert.Zero(t, updated.Available)
	assert.Equal(t, dto.SeatUpdate{SectionID: section.ID, Enrolled: 3, Capacity: 3, Available: 0}, f.seats.last())
}

func TestDeleteSectionGuarded(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	section := f.section(t, 5, offering.ID)
	enrollment := f.enroll(t, f.students(t, 1)[0], offering.ID, section.ID)

	err := f.sections.DeleteSection(f.ctx, section.ID)
	var blocked *apperrors.HasEnrolledStudentsError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, 1, blocked.BlockingCount())

	inactive := models.SectionInactive
	_, err = f.sections.UpdateSection(f.ctx, section.ID, dto.UpdateSectionRequest{Status: &inactive})
	assert.ErrorAs(t, err, &blocked, "deactivating through update is guarded too")

	require.NoError(t, f.enrollments.Unenroll(f.ctx, enrollment.ID))
	require.NoError(t, f.sections.DeleteSection(f.ctx, section.ID))

	got, err := f.sections.GetSection(f.ctx, section.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SectionInactive, got.Status, "sections are deactivated, not removed")
}

func TestListSectionsDenormalized(t *testing.T) {
	f := newFixture(t)
	cs := f.offering(t, "CS101")
	math := f.offering(t, "MATH1")
	a := f.section(t, 10, cs.ID)
	f.section(t, 10, math.ID)

	instructor := f.user(t, models.RoleInstructor)
	scoped := f.user(t, models.RoleInstructor)
	_, err := f.assignments.AssignInstructor(f.ctx, dto.AssignInstructorRequest{OfferingID: cs.ID, InstructorID: instructor.ID})
	require.NoError(t, err)
	_, err = f.assignments.AssignInstructor(f.ctx, dto.AssignInstructorRequest{OfferingID: cs.ID, InstructorID: scoped.ID, SectionID: &a.ID})
	require.NoError(t, err)

	students := f.students(t, 2)
	f.enroll(t, students[0], cs.ID, a.ID)
	f.enroll(t, students[1], cs.ID, a.ID)

	semesterID := f.semester.ID
	sections, total, err := f.sections.ListSections(f.ctx, repositories.SectionFilter{SemesterID: &semesterID, Page: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, sections, 2)

	for _, s := range sections {
		if s.ID != a.ID {
			assert.Zero(t, s.EnrolledCount)
			assert.Nil(t, s.Subjects[0].Instructor)
			continue
		}
		assert.Equal(t, 2, s.EnrolledCount)
		assert.Equal(t, 8, s.Available)
		require.NotNil(t, s.Subjects[0].Instructor)
		assert.Equal(t, scoped.ID, s.Subjects[0].Instructor.InstructorID)
		assert.Equal(t, "section", s.Subjects[0].Instructor.Scope)
	}

	offering, err := f.offerings.GetOffering(f.ctx, cs.ID)
	require.NoError(t, err)
	require.NotNil(t, offering.Instructor)
	assert.Equal(t, instructor.ID, offering.Instructor.InstructorID)
}
