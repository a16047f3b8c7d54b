package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/logger"
)

// AssignmentService binds instructors to offerings
type AssignmentService interface {
	AssignInstructor(ctx context.Context, req dto.AssignInstructorRequest) (*models.FacultyAssignment, error)
	UnassignInstructor(ctx context.Context, assignmentID int64) (*models.FacultyAssignment, error)
	ListByOffering(ctx context.Context, offeringID int64) ([]*models.AssignmentDetails, error)
	ResolveInstructor(ctx context.Context, offeringID, sectionID int64) (*models.InstructorRef, error)
}

type assignmentServiceImpl struct {
	store repositories.Store
	now   func() time.Time
}

// NewAssignmentService creates a new assignment service instance
func NewAssignmentService(store repositories.Store) AssignmentService {
	return &assignmentServiceImpl{store: store, now: time.Now}
}

// AssignInstructor upserts on (offering, section): an existing row is
// reassigned and reactivated, otherwise a new one is inserted. A concurrent
// insert of the same key is absorbed by retrying the update.
func (s *assignmentServiceImpl) AssignInstructor(ctx context.Context, req dto.AssignInstructorRequest) (*models.FacultyAssignment, error) {
	if req.OfferingID <= 0 || req.InstructorID <= 0 {
		return nil, fmt.Errorf("%w: offering and instructor are required", apperrors.ErrValidationFailed)
	}

	assignment := &models.FacultyAssignment{
		OfferingID:   req.OfferingID,
		InstructorID: req.InstructorID,
		SectionID:    req.SectionID,
		Status:       models.AssignmentActive,
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		offering, err := tx.Offerings().GetByID(ctx, req.OfferingID)
		if err != nil {
			return notFound(err, apperrors.ErrOfferingNotFound)
		}
		if offering.Status == models.OfferingCancelled {
			return &apperrors.OfferingNotOpenError{OfferingID: offering.ID, Status: string(offering.Status)}
		}

		user, err := tx.Users().GetByID(ctx, req.InstructorID)
		if err != nil {
			return notFound(err, apperrors.ErrUserNotFound)
		}
		if user.RoleType != models.RoleInstructor {
			return &apperrors.RoleMismatchError{UserID: user.ID, Want: string(models.RoleInstructor), Got: string(user.RoleType)}
		}

		if req.SectionID != nil {
			if _, err := tx.Sections().GetByID(ctx, *req.SectionID); err != nil {
				return notFound(err, apperrors.ErrSectionNotFound)
			}
			if _, err := tx.SectionSubjects().Find(ctx, *req.SectionID, req.OfferingID); err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return &apperrors.NotAttachedError{SectionID: *req.SectionID, OfferingID: req.OfferingID}
				}
				return err
			}
		}

		return upsertAssignment(ctx, tx, assignment)
	})
	if err != nil {
		return nil, err
	}

	event := logger.Ctx(ctx).Info().
		Int64("assignmentID", assignment.ID).
		Int64("offeringID", assignment.OfferingID).
		Int64("instructorID", assignment.InstructorID)
	if assignment.SectionID != nil {
		event = event.Int64("sectionID", *assignment.SectionID)
	}
	event.Msg("Instructor assigned")
	return assignment, nil
}

func upsertAssignment(ctx context.Context, tx repositories.Repos, a *models.FacultyAssignment) error {
	updated, err := tx.Assignments().UpdateByNaturalKey(ctx, a)
	if err != nil || updated {
		return err
	}

	err = tx.Assignments().Insert(ctx, a)
	if !errors.Is(err, repositories.ErrDuplicateAssignment) {
		return err
	}

	updated, err = tx.Assignments().UpdateByNaturalKey(ctx, a)
	if err != nil {
		return err
	}
	if !updated {
		return apperrors.NewConflictError("faculty assignment changed concurrently, retry")
	}
	return nil
}

// UnassignInstructor deactivates the assignment, keeping the row for history.
func (s *assignmentServiceImpl) UnassignInstructor(ctx context.Context, assignmentID int64) (*models.FacultyAssignment, error) {
	var assignment *models.FacultyAssignment
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		var err error
		assignment, err = tx.Assignments().GetByID(ctx, assignmentID)
		if err != nil {
			return notFound(err, apperrors.ErrAssignmentNotFound)
		}
		if assignment.Status == models.AssignmentInactive {
			return nil
		}

		at := s.now().UTC()
		if err := tx.Assignments().Deactivate(ctx, assignmentID, at); err != nil {
			return notFound(err, apperrors.ErrAssignmentNotFound)
		}
		assignment.Status = models.AssignmentInactive
		assignment.RemovedAt = &at
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().Int64("assignmentID", assignmentID).Msg("Instructor unassigned")
	return assignment, nil
}

func (s *assignmentServiceImpl) ListByOffering(ctx context.Context, offeringID int64) ([]*models.AssignmentDetails, error) {
	if _, err := s.store.Offerings().GetByID(ctx, offeringID); err != nil {
		return nil, notFound(err, apperrors.ErrOfferingNotFound)
	}
	return s.store.Assignments().ListByOffering(ctx, offeringID)
}

// ResolveInstructor returns the instructor teaching the offering in the
// section, or a not-found error when nobody is assigned.
func (s *assignmentServiceImpl) ResolveInstructor(ctx context.Context, offeringID, sectionID int64) (*models.InstructorRef, error) {
	assignments, err := s.store.Assignments().ListActiveByOfferings(ctx, []int64{offeringID})
	if err != nil {
		return nil, err
	}
	ref := models.ResolveInstructor(assignments, offeringID, sectionID)
	if ref == nil {
		return nil, apperrors.NewResourceNotFoundError("no instructor assigned")
	}
	return ref, nil
}
