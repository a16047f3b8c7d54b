package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/pkg/apperrors"
)

func TestEnroll(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	section := f.section(t, 2, offering.ID)
	students := f.students(t, 3)

	e := f.enroll(t, students[0], offering.ID, section.ID)
	assert.Equal(t, models.EnrollmentEnrolled, e.Status)
	assert.Equal(t, dto.SeatUpdate{SectionID: section.ID, Enrolled: 1, Capacity: 2, Available: 1}, f.seats.last())

	_, err := f.enrollments.Enroll(f.ctx, dto.EnrollRequest{StudentID: students[0], OfferingID: offering.ID, SectionID: section.ID})
	var already *apperrors.AlreadyEnrolledError
	assert.ErrorAs(t, err, &already)

	f.enroll(t, students[1], offering.ID, section.ID)
	_, err = f.enrollments.Enroll(f.ctx, dto.EnrollRequest{StudentID: students[2], OfferingID: offering.ID, SectionID: section.ID})
	var full *apperrors.SectionFullError
	require.ErrorAs(t, err, &full)
	assert.Equal(t, 2, full.Capacity)

	roster, err := f.sections.ListEnrollments(f.ctx, section.ID)
	require.NoError(t, err)
	enrolled := 0
	for _, e := range roster {
		if e.Status == models.EnrollmentEnrolled {
			enrolled++
		}
	}
	assert.Equal(t, 2, enrolled)
	assert.Len(t, roster, 2)
}

func TestEnrollRejections(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	other := f.offering(t, "MATH1")
	section := f.section(t, 1, offering.ID)
	student := f.students(t, 1)[0]
	instructor := f.user(t, models.RoleInstructor)

	_, err := f.enrollments.Enroll(f.ctx, dto.EnrollRequest{StudentID: student, OfferingID: other.ID, SectionID: section.ID})
	var notAttached *apperrors.NotAttachedError
	assert.ErrorAs(t, err, &notAttached)

	_, err = f.enrollments.Enroll(f.ctx, dto.EnrollRequest{StudentID: instructor.ID, OfferingID: offering.ID, SectionID: section.ID})
	var role *apperrors.RoleMismatchError
	assert.ErrorAs(t, err, &role)

	_, err = f.enrollments.Enroll(f.ctx, dto.EnrollRequest{StudentID: 999, OfferingID: offering.ID, SectionID: section.ID})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = f.enrollments.Enroll(f.ctx, dto.EnrollRequest{StudentID: student, OfferingID: offering.ID, SectionID: 999})
	assert.ErrorIs(t, err, apperrors.ErrSectionNotFound)
}

func TestEnrollClosedWinsOverFull(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	section := f.section(t, 1, offering.ID)
	students := f.students(t, 2)
	f.enroll(t, students[0], offering.ID, section.ID)

	_, err := f.offerings.SetStatus(f.ctx, offering.ID, models.OfferingClosed)
	require.NoError(t, err)

	_, err = f.enrollments.Enroll(f.ctx, dto.EnrollRequest{StudentID: students[1], OfferingID: offering.ID, SectionID: section.ID})
	var closed *apperrors.OfferingClosedError
	assert.ErrorAs(t, err, &closed)
}

func TestEnrollInactiveSection(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	section := f.section(t, 5, offering.ID)
	require.NoError(t, f.sections.DeleteSection(f.ctx, section.ID))

	_, err := f.enrollments.Enroll(f.ctx, dto.EnrollRequest{StudentID: f.students(t, 1)[0], OfferingID: offering.ID, SectionID: section.ID})
	var inactive *apperrors.SectionInactiveError
	assert.ErrorAs(t, err, &inactive)
}

func TestSecondSubjectTakesSecondSeat(t *testing.T) {
	f := newFixture(t)
	cs := f.offering(t, "CS101")
	math := f.offering(t, "MATH1")
	section := f.section(t, 1, cs.ID)
	_, err := f.sections.AttachSubject(f.ctx, section.ID, dto.AttachSubjectRequest{OfferingID: math.ID})
	require.NoError(t, err)

	student := f.students(t, 1)[0]
	f.enroll(t, student, cs.ID, section.ID)

	_, err = f.enrollments.Enroll(f.ctx, dto.EnrollRequest{StudentID: student, OfferingID: math.ID, SectionID: section.ID})
	var full *apperrors.SectionFullError
	require.ErrorAs(t, err, &full)

	got, err := f.sections.GetSection(f.ctx, section.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.EnrolledCount)
	assert.Equal(t, 0, got.Available)
}

func TestBatchEnrollPartial(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	section := f.section(t, 2, offering.ID)
	students := f.students(t, 3)
	instructor := f.user(t, models.RoleInstructor)

	ids := append([]int64{instructor.ID}, students...)
	ids = append(ids, students[0])
	result, err := f.enrollments.BatchEnroll(f.ctx, dto.BatchEnrollRequest{OfferingID: offering.ID, SectionID: section.ID, StudentIDs: ids})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Requested)
	assert.Equal(t, 2, result.Enrolled)
	require.Len(t, result.Enrollments, 2)
	assert.Equal(t, students[0], result.Enrollments[0].StudentID)
	assert.Equal(t, students[1], result.Enrollments[1].StudentID)

	require.Len(t, result.Skipped, 2)
	assert.Equal(t, dto.SkippedStudent{StudentID: instructor.ID, Reason: apperrors.CodeRoleMismatch, Message: result.Skipped[0].Message}, result.Skipped[0])
	assert.Equal(t, students[2], result.Skipped[1].StudentID)
	assert.Equal(t, apperrors.CodeSectionFull, result.Skipped[1].Reason)

	assert.Equal(t, dto.SeatUpdate{SectionID: section.ID, Enrolled: 2, Capacity: 2, Available: 0}, f.seats.last())
}

func TestBatchEnrollLimits(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	section := f.section(t, 20, offering.ID)

	_, err := f.enrollments.BatchEnroll(f.ctx, dto.BatchEnrollRequest{OfferingID: offering.ID, SectionID: section.ID, StudentIDs: f.students(t, 6)})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.offerings.SetStatus(f.ctx, offering.ID, models.OfferingClosed)
	require.NoError(t, err)
	_, err = f.enrollments.BatchEnroll(f.ctx, dto.BatchEnrollRequest{OfferingID: offering.ID, SectionID: section.ID, StudentIDs: f.students(t, 2)})
	var closed *apperrors.OfferingClosedError
	assert.ErrorAs(t, err, &closed, "a closed slot fails the whole batch")
}

func TestConcurrentEnrollNeverOverfills(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	const capacity = 5
	section := f.section(t, capacity, offering.ID)
	students := f.students(t, 25)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		enrolled int
		full     int
	)
	for _, id := range students {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.enrollments.Enroll(f.ctx, dto.EnrollRequest{StudentID: id, OfferingID: offering.ID, SectionID: section.ID})
			mu.Lock()
			defer mu.Unlock()
			var sectionFull *apperrors.SectionFullError
			switch {
			case err == nil:
				enrolled++
			case errors.As(err, &sectionFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, capacity, enrolled)
	assert.Equal(t, len(students)-capacity, full)

	got, err := f.sections.GetSection(f.ctx, section.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, got.EnrolledCount)
}

func TestEnrollmentStatusGraph(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	section := f.section(t, 1, offering.ID)
	students := f.students(t, 2)
	e := f.enroll(t, students[0], offering.ID, section.ID)

	dropped, err := f.enrollments.SetStatus(f.ctx, e.ID, models.EnrollmentDropped)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentDropped, dropped.Status)
	assert.Equal(t, 1, f.seats.last().Available, "a dropped record frees the seat")

	_, err = f.enrollments.SetStatus(f.ctx, e.ID, models.EnrollmentEnrolled)
	var transition *apperrors.InvalidTransitionError
	assert.ErrorAs(t, err, &transition)

	// The dropped student may enroll again: the old record stays as history.
	again := f.enroll(t, students[0], offering.ID, section.ID)
	assert.NotEqual(t, e.ID, again.ID)

	completed, err := f.enrollments.SetStatus(f.ctx, again.ID, models.EnrollmentCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentCompleted, completed.Status)
	_, err = f.enrollments.SetStatus(f.ctx, again.ID, models.EnrollmentDropped)
	assert.ErrorAs(t, err, &transition)
}

func TestOverrideStatus(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	section := f.section(t, 1, offering.ID)
	students := f.students(t, 2)
	staff := f.user(t, models.RoleStaff)

	first := f.enroll(t, students[0], offering.ID, section.ID)
	_, err := f.enrollments.SetStatus(f.ctx, first.ID, models.EnrollmentDropped)
	require.NoError(t, err)
	second := f.enroll(t, students[0], offering.ID, section.ID)

	_, err = f.enrollments.OverrideStatus(f.ctx, students[1], first.ID, models.EnrollmentEnrolled, "typo")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.enrollments.OverrideStatus(f.ctx, staff.ID, first.ID, models.EnrollmentEnrolled, "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.enrollments.OverrideStatus(f.ctx, staff.ID, first.ID, models.EnrollmentEnrolled, "restore record")
	var already *apperrors.AlreadyEnrolledError
	assert.ErrorAs(t, err, &already, "override keeps one enrolled record per offering")

	reverted, err := f.enrollments.OverrideStatus(f.ctx, staff.ID, second.ID, models.EnrollmentDropped, "entered twice")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentDropped, reverted.Status)

	// Fill the only seat with someone else, then try to bring the record back.
	f.enroll(t, students[1], offering.ID, section.ID)
	_, err = f.enrollments.OverrideStatus(f.ctx, staff.ID, first.ID, models.EnrollmentEnrolled, "restore record")
	var full *apperrors.SectionFullError
	assert.ErrorAs(t, err, &full, "override respects capacity")
}

func TestUnenroll(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	section := f.section(t, 3, offering.ID)
	e := f.enroll(t, f.students(t, 1)[0], offering.ID, section.ID)

	require.NoError(t, f.enrollments.Unenroll(f.ctx, e.ID))
	assert.Equal(t, dto.SeatUpdate{SectionID: section.ID, Enrolled: 0, Capacity: 3, Available: 3}, f.seats.last())

	_, err := f.enrollments.GetEnrollment(f.ctx, e.ID)
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotFound)
	assert.ErrorIs(t, f.enrollments.Unenroll(f.ctx, e.ID), apperrors.ErrResourceNotFound)
}

func TestAssignInstructorOfferingWideReplaces(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	ada := f.user(t, models.RoleInstructor)
	alan := f.user(t, models.RoleInstructor)

	_, err := f.assignments.AssignInstructor(f.ctx, dto.AssignInstructorRequest{OfferingID: offering.ID, InstructorID: ada.ID})
	require.NoError(t, err)
	_, err = f.assignments.AssignInstructor(f.ctx, dto.AssignInstructorRequest{OfferingID: offering.ID, InstructorID: alan.ID})
	require.NoError(t, err)

	list, err := f.assignments.ListByOffering(f.ctx, offering.ID)
	require.NoError(t, err)
	active := 0
	for _, a := range list {
		if a.Status == models.AssignmentActive {
			active++
			assert.Nil(t, a.SectionID)
			assert.Equal(t, alan.ID, a.InstructorID)
		}
	}
	assert.Equal(t, 1, active)
	assert.Len(t, list, 1)

	got, err := f.offerings.GetOffering(f.ctx, offering.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Instructor)
	assert.Equal(t, alan.ID, got.Instructor.InstructorID)
}

func TestAssignInstructorUpsert(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	other := f.offering(t, "MATH1")
	section := f.section(t, 10, offering.ID)
	ada := f.user(t, models.RoleInstructor)
	alan := f.user(t, models.RoleInstructor)
	student := f.user(t, models.RoleStudent)

	first, err := f.assignments.AssignInstructor(f.ctx, dto.AssignInstructorRequest{OfferingID: offering.ID, InstructorID: ada.ID, SectionID: &section.ID})
	require.NoError(t, err)
	second, err := f.assignments.AssignInstructor(f.ctx, dto.AssignInstructorRequest{OfferingID: offering.ID, InstructorID: alan.ID, SectionID: &section.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "the natural key is updated in place")

	list, err := f.assignments.ListByOffering(f.ctx, offering.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, alan.ID, list[0].InstructorID)

	ref, err := f.assignments.ResolveInstructor(f.ctx, offering.ID, section.ID)
	require.NoError(t, err)
	assert.Equal(t, alan.ID, ref.InstructorID)

	removed, err := f.assignments.UnassignInstructor(f.ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentInactive, removed.Status)
	assert.NotNil(t, removed.RemovedAt)
	_, err = f.assignments.ResolveInstructor(f.ctx, offering.ID, section.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	// Reassigning reactivates the same row.
	back, err := f.assignments.AssignInstructor(f.ctx, dto.AssignInstructorRequest{OfferingID: offering.ID, InstructorID: ada.ID, SectionID: &section.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, back.ID)
	assert.Equal(t, models.AssignmentActive, back.Status)

	_, err = f.assignments.AssignInstructor(f.ctx, dto.AssignInstructorRequest{OfferingID: offering.ID, InstructorID: student.ID})
	var role *apperrors.RoleMismatchError
	assert.ErrorAs(t, err, &role)

	_, err = f.assignments.AssignInstructor(f.ctx, dto.AssignInstructorRequest{OfferingID: other.ID, InstructorID: ada.ID, SectionID: &section.ID})
	var notAttached *apperrors.NotAttachedError
	assert.ErrorAs(t, err, &notAttached)
}
