package services

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campus/internal/app/codegen"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/apperrors"
)

func TestSemesterActivation(t *testing.T) {
	f := newFixture(t)
	second, err := f.semesters.CreateSemester(f.ctx, "Second Semester", "2025-2026", 2)
	require.NoError(t, err)

	active, err := f.semesters.ActivateSemester(f.ctx, f.semester.ID)
	require.NoError(t, err)
	assert.True(t, active.IsActive)

	_, err = f.semesters.ActivateSemester(f.ctx, f.semester.ID)
	assert.NoError(t, err, "activating the active semester is a no-op")

	_, err = f.semesters.ActivateSemester(f.ctx, second.ID)
	var already *apperrors.SemesterAlreadyActiveError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, f.semester.ID, already.ActiveID)

	_, err = f.semesters.DeactivateSemester(f.ctx, f.semester.ID)
	require.NoError(t, err)
	_, err = f.semesters.ActivateSemester(f.ctx, second.ID)
	require.NoError(t, err)

	current, err := f.semesters.GetActiveSemester(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)
}

func TestSemesterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.semesters.CreateSemester(f.ctx, " ", "2025-2026", 1)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.semesters.ActivateSemester(f.ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestCreateOfferingDuplicate(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	assert.Equal(t, models.OfferingOpen, offering.Status)
	assert.Equal(t, "CS101", offering.SubjectCode)

	_, err := f.offerings.CreateOffering(f.ctx, offering.SubjectID, f.semester.ID)
	var dup *apperrors.DuplicateOfferingError
	require.ErrorAs(t, err, &dup)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.offerings.CreateOffering(f.ctx, 999, f.semester.ID)
	assert.ErrorIs(t, err, apperrors.ErrSubjectNotFound)
}

func TestOfferingCancelIsGuarded(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")
	section := f.section(t, 30, offering.ID)

	_, err := f.offerings.SetStatus(f.ctx, offering.ID, models.OfferingCancelled)
	var blocked *apperrors.HasActiveSectionsError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, 1, blocked.BlockingCount())

	got, err := f.offerings.GetOffering(f.ctx, offering.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferingOpen, got.Status, "a refused cancel leaves the offering untouched")

	require.NoError(t, f.sections.DeleteSection(f.ctx, section.ID))
	cancelled, err := f.offerings.SetStatus(f.ctx, offering.ID, models.OfferingCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OfferingCancelled, cancelled.Status)

	_, err = f.offerings.SetStatus(f.ctx, offering.ID, models.OfferingOpen)
	var transition *apperrors.InvalidTransitionError
	assert.ErrorAs(t, err, &transition)

	// A cancelled offering frees the pair for a new one.
	_, err = f.offerings.CreateOffering(f.ctx, offering.SubjectID, f.semester.ID)
	assert.NoError(t, err)
}

func TestOfferingOpenCloseToggle(t *testing.T) {
	f := newFixture(t)
	offering := f.offering(t, "CS101")

	closed, err := f.offerings.SetStatus(f.ctx, offering.ID, models.OfferingClosed)
	require.NoError(t, err)
	assert.Equal(t, models.OfferingClosed, closed.Status)

	reopened, err := f.offerings.SetStatus(f.ctx, offering.ID, models.OfferingOpen)
	require.NoError(t, err)
	assert.Equal(t, models.OfferingOpen, reopened.Status)

	_, err = f.offerings.SetStatus(f.ctx, offering.ID, "archived")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestUserForm(t *testing.T) {
	svc := NewFormService()

	form, err := svc.UserForm(context.Background(), models.RoleInstructor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleInstructor, form.Role)
	assert.NotEmpty(t, form.Fields)

	_, err = svc.UserForm(context.Background(), "GUEST")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

// lockTracker records which offerings were read with a row lock inside a transaction.
type lockTracker struct {
	repositories.Store
	mu     sync.Mutex
	locked []int64
}

type trackedRepos struct {
	repositories.Repos
	t *lockTracker
}

type trackedOfferings struct {
	repositories.OfferingRepository
	t *lockTracker
}

func (l *lockTracker) WithinTx(ctx context.Context, fn repositories.TxFunc) error {
	return l.Store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		return fn(ctx, trackedRepos{Repos: tx, t: l})
	})
}

func (r trackedRepos) Offerings() repositories.OfferingRepository {
	return trackedOfferings{OfferingRepository: r.Repos.Offerings(), t: r.t}
}

func (o trackedOfferings) GetByIDForUpdate(ctx context.Context, id int64) (*models.Offering, error) {
	o.t.mu.Lock()
	o.t.locked = append(o.t.locked, id)
	o.t.mu.Unlock()
	return o.OfferingRepository.GetByIDForUpdate(ctx, id)
}

func (l *lockTracker) take() []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.locked
	l.locked = nil
	return out
}

func TestOfferingRowLockedOnCancelAndAttach(t *testing.T) {
	f := newFixture(t)
	cs := f.offering(t, "CS101")
	math := f.offering(t, "MATH1")

	tracker := &lockTracker{Store: f.store}
	offerings := NewOfferingService(tracker)
	sections := NewSectionService(tracker, codegen.NewWithSource(codegen.DefaultAttempts, rand.NewPCG(3, 5)), f.seats)

	section, err := sections.CreateSection(f.ctx, dto.CreateSectionRequest{Name: "A", MaxCapacity: 10, OfferingID: &cs.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{cs.ID}, tracker.take(), "create with an offering locks it")

	_, err = sections.AttachSubject(f.ctx, section.ID, dto.AttachSubjectRequest{OfferingID: math.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{math.ID}, tracker.take(), "attach locks the offering")

	_, err = offerings.SetStatus(f.ctx, math.ID, models.OfferingCancelled)
	var blocked *apperrors.HasActiveSectionsError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, []int64{math.ID}, tracker.take(), "cancel locks the offering before counting sections")

	// Detached, the cancel goes through and later attaches are refused.
	details, err := sections.GetSection(f.ctx, section.ID)
	require.NoError(t, err)
	for _, ss := range details.Subjects {
		if ss.OfferingID == math.ID {
			require.NoError(t, sections.DetachSubject(f.ctx, ss.ID))
		}
	}
	_, err = offerings.SetStatus(f.ctx, math.ID, models.OfferingCancelled)
	require.NoError(t, err)

	_, err = sections.AttachSubject(f.ctx, section.ID, dto.AttachSubjectRequest{OfferingID: math.ID})
	var notOpen *apperrors.OfferingNotOpenError
	assert.ErrorAs(t, err, &notOpen)
}
