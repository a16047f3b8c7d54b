package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/logger"
)

// OfferingService is the offering catalog: subjects scheduled within semesters
type OfferingService interface {
	CreateOffering(ctx context.Context, subjectID, semesterID int64) (*models.OfferingDetails, error)
	GetOffering(ctx context.Context, id int64) (*dto.OfferingResponse, error)
	ListOfferings(ctx context.Context, filter repositories.OfferingFilter) ([]*models.OfferingDetails, error)
	SetStatus(ctx context.Context, id int64, status models.OfferingStatus) (*models.Offering, error)
}

type offeringServiceImpl struct {
	store repositories.Store
}

// NewOfferingService creates a new offering service instance
func NewOfferingService(store repositories.Store) OfferingService {
	return &offeringServiceImpl{store: store}
}

// CreateOffering fails with *apperrors.DuplicateOfferingError when a
// non-cancelled offering already exists for the pair.
func (s *offeringServiceImpl) CreateOffering(ctx context.Context, subjectID, semesterID int64) (*models.OfferingDetails, error) {
	if subjectID <= 0 || semesterID <= 0 {
		return nil, fmt.Errorf("%w: subject and semester are required", apperrors.ErrValidationFailed)
	}

	offering := &models.Offering{SubjectID: subjectID, SemesterID: semesterID, Status: models.OfferingOpen}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		if _, err := tx.Subjects().GetByID(ctx, subjectID); err != nil {
			return notFound(err, apperrors.ErrSubjectNotFound)
		}
		if _, err := tx.Semesters().GetByID(ctx, semesterID); err != nil {
			return notFound(err, apperrors.ErrSemesterNotFound)
		}

		if err := tx.Offerings().Create(ctx, offering); err != nil {
			if errors.Is(err, repositories.ErrDuplicateOffering) {
				return &apperrors.DuplicateOfferingError{SubjectID: subjectID, SemesterID: semesterID}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Int64("offeringID", offering.ID).
		Int64("subjectID", subjectID).
		Int64("semesterID", semesterID).
		Msg("Offering created")
	return s.store.Offerings().GetDetails(ctx, offering.ID)
}

// GetOffering returns the offering with its offering-wide instructor
func (s *offeringServiceImpl) GetOffering(ctx context.Context, id int64) (*dto.OfferingResponse, error) {
	details, err := s.store.Offerings().GetDetails(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrOfferingNotFound)
	}
	assignments, err := s.store.Assignments().ListActiveByOfferings(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	// Section IDs are positive, so 0 only matches offering-wide assignments.
	return &dto.OfferingResponse{
		OfferingDetails: details,
		Instructor:      models.ResolveInstructor(assignments, id, 0),
	}, nil
}

func (s *offeringServiceImpl) ListOfferings(ctx context.Context, filter repositories.OfferingFilter) ([]*models.OfferingDetails, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown offering status %q", apperrors.ErrValidationFailed, *filter.Status)
	}
	return s.store.Offerings().List(ctx, filter)
}

// SetStatus toggles open and closed freely. Cancelling is refused with
// *apperrors.HasActiveSectionsError while active sections teach the
// offering, and a cancelled offering stays cancelled.
func (s *offeringServiceImpl) SetStatus(ctx context.Context, id int64, status models.OfferingStatus) (*models.Offering, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown offering status %q", apperrors.ErrValidationFailed, status)
	}

	var offering *models.Offering
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		var err error
		offering, err = tx.Offerings().GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrOfferingNotFound)
		}
		if offering.Status == status {
			return nil
		}
		if !offering.Status.CanTransitionTo(status) {
			return &apperrors.InvalidTransitionError{Entity: "offering", From: string(offering.Status), To: string(status)}
		}

		if status == models.OfferingCancelled {
			decision, err := guard.Offering(ctx, tx, id)
			if err != nil {
				return err
			}
			if err := decision.Err(); err != nil {
				return err
			}
		}

		if err := tx.Offerings().UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		offering.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().Int64("offeringID", id).Str("status", string(status)).Msg("Offering status changed")
	return offering, nil
}
