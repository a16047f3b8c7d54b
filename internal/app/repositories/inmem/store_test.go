package inmem

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/repositories"
)

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		sec := &models.Section{Name: "A", EnrollmentCode: "ABC-1234", MaxCapacity: 10, Status: models.SectionActive}
		require.NoError(t, tx.Sections().Create(ctx, sec))

		exists, err := tx.Sections().CodeExists(ctx, "ABC-1234")
		require.NoError(t, err)
		assert.True(t, exists, "writes are visible inside the transaction")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := s.Sections().CodeExists(ctx, "ABC-1234")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSectionCodeUnique(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Sections().Create(ctx, &models.Section{Name: "A", EnrollmentCode: "ABC-1234", MaxCapacity: 1}))
	err := s.Sections().Create(ctx, &models.Section{Name: "B", EnrollmentCode: "ABC-1234", MaxCapacity: 1})
	assert.ErrorIs(t, err, repositories.ErrDuplicateCode)
}

func TestOfferingUniqueIgnoresCancelled(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	first := &models.Offering{SubjectID: 1, SemesterID: 2, Status: models.OfferingOpen}
	require.NoError(t, s.Offerings().Create(ctx, first))
	assert.ErrorIs(t, s.Offerings().Create(ctx, &models.Offering{SubjectID: 1, SemesterID: 2, Status: models.OfferingOpen}),
		repositories.ErrDuplicateOffering)

	require.NoError(t, s.Offerings().UpdateStatus(ctx, first.ID, models.OfferingCancelled))
	assert.NoError(t, s.Offerings().Create(ctx, &models.Offering{SubjectID: 1, SemesterID: 2, Status: models.OfferingOpen}))
}

func TestOfferingGetByIDForUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	o := &models.Offering{SubjectID: 1, SemesterID: 2, Status: models.OfferingOpen}
	require.NoError(t, s.Offerings().Create(ctx, o))

	err := s.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		got, err := tx.Offerings().GetByIDForUpdate(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OfferingOpen, got.Status)

		_, err = tx.Offerings().GetByIDForUpdate(ctx, o.ID+100)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestSingleActiveSemester(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	a := &models.Semester{Name: "First", AcademicYear: "2025-2026", Level: 1}
	b := &models.Semester{Name: "Second", AcademicYear: "2025-2026", Level: 2}
	require.NoError(t, s.Semesters().Create(ctx, a))
	require.NoError(t, s.Semesters().Create(ctx, b))

	require.NoError(t, s.Semesters().SetActive(ctx, a.ID, true))
	assert.ErrorIs(t, s.Semesters().SetActive(ctx, b.ID, true), repositories.ErrActiveSemesterExists)

	active, err := s.Semesters().GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID, active.ID)
}

func TestAssignmentNaturalKey(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	section := int64(7)

	wide := &models.FacultyAssignment{OfferingID: 1, InstructorID: 10}
	require.NoError(t, s.Assignments().Insert(ctx, wide))
	scoped := &models.FacultyAssignment{OfferingID: 1, InstructorID: 11, SectionID: &section}
	require.NoError(t, s.Assignments().Insert(ctx, scoped))

	assert.ErrorIs(t, s.Assignments().Insert(ctx, &models.FacultyAssignment{OfferingID: 1, InstructorID: 12}),
		repositories.ErrDuplicateAssignment)

	again := &models.FacultyAssignment{OfferingID: 1, InstructorID: 12, SectionID: &section}
	found, err := s.Assignments().UpdateByNaturalKey(ctx, again)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, scoped.ID, again.ID)

	list, err := s.Assignments().ListByOffering(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestEnrollmentCounts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	sec := int64(3)

	require.NoError(t, s.Enrollments().Create(ctx, &models.Enrollment{StudentID: 1, OfferingID: 10, SectionID: &sec, Status: models.EnrollmentEnrolled}))
	require.NoError(t, s.Enrollments().Create(ctx, &models.Enrollment{StudentID: 1, OfferingID: 11, SectionID: &sec, Status: models.EnrollmentEnrolled}))
	dropped := &models.Enrollment{StudentID: 2, OfferingID: 10, SectionID: &sec, Status: models.EnrollmentEnrolled}
	require.NoError(t, s.Enrollments().Create(ctx, dropped))
	require.NoError(t, s.Enrollments().UpdateStatus(ctx, dropped.ID, models.EnrollmentDropped))

	assert.ErrorIs(t,
		s.Enrollments().Create(ctx, &models.Enrollment{StudentID: 1, OfferingID: 10, SectionID: &sec, Status: models.EnrollmentEnrolled}),
		repositories.ErrAlreadyEnrolled)

	n, err := s.Enrollments().CountEnrolledStudents(ctx, sec)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := s.Enrollments().CountEnrolled(ctx, sec)
	require.NoError(t, err)
	assert.Equal(t, 2, records, "each enrolled record takes a seat")

	bySection, err := s.Enrollments().CountEnrolledBySections(ctx, []int64{sec, 99})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{sec: 2}, bySection)

	slot, err := s.Enrollments().CountEnrolledInSlot(ctx, sec, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, slot)
}
