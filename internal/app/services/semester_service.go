package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/logger"
)

// SemesterService manages semesters and the single active semester
type SemesterService interface {
	CreateSemester(ctx context.Context, name, academicYear string, level int) (*models.Semester, error)
	GetSemester(ctx context.Context, id int64) (*models.Semester, error)
	GetActiveSemester(ctx context.Context) (*models.Semester, error)
	ListSemesters(ctx context.Context) ([]*models.Semester, error)
	ActivateSemester(ctx context.Context, id int64) (*models.Semester, error)
	DeactivateSemester(ctx context.Context, id int64) (*models.Semester, error)
}

type semesterServiceImpl struct {
	store repositories.Store
}

// NewSemesterService creates a new semester service instance
func NewSemesterService(store repositories.Store) SemesterService {
	return &semesterServiceImpl{store: store}
}

func (s *semesterServiceImpl) CreateSemester(ctx context.Context, name, academicYear string, level int) (*models.Semester, error) {
	name, academicYear = strings.TrimSpace(name), strings.TrimSpace(academicYear)
	if name == "" || academicYear == "" {
		return nil, fmt.Errorf("%w: semester name and academic year are required", apperrors.ErrValidationFailed)
	}
	if level < 1 {
		return nil, fmt.Errorf("%w: semester level must be positive", apperrors.ErrValidationFailed)
	}

	semester := &models.Semester{Name: name, AcademicYear: academicYear, Level: level}
	if err := s.store.Semesters().Create(ctx, semester); err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info().Int64("semesterID", semester.ID).Str("academicYear", academicYear).Msg("Semester created")
	return semester, nil
}

func (s *semesterServiceImpl) GetSemester(ctx context.Context, id int64) (*models.Semester, error) {
	semester, err := s.store.Semesters().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrSemesterNotFound)
	}
	return semester, nil
}

func (s *semesterServiceImpl) GetActiveSemester(ctx context.Context) (*models.Semester, error) {
	semester, err := s.store.Semesters().GetActive(ctx)
	if err != nil {
		return nil, notFound(err, apperrors.NewResourceNotFoundError("no active semester"))
	}
	return semester, nil
}

func (s *semesterServiceImpl) ListSemesters(ctx context.Context) ([]*models.Semester, error) {
	return s.store.Semesters().List(ctx)
}

// ActivateSemester rejects activation while another semester is active; the
// current one must be deactivated first. Activating the active semester is a no-op.
func (s *semesterServiceImpl) ActivateSemester(ctx context.Context, id int64) (*models.Semester, error) {
	var semester *models.Semester
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		var err error
		semester, err = tx.Semesters().GetByID(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrSemesterNotFound)
		}
		if semester.IsActive {
			return nil
		}

		active, err := tx.Semesters().GetActive(ctx)
		switch {
		case err == nil:
			return &apperrors.SemesterAlreadyActiveError{ActiveID: active.ID}
		case !errors.Is(err, repositories.ErrNotFound):
			return err
		}

		if err := tx.Semesters().SetActive(ctx, id, true); err != nil {
			if errors.Is(err, repositories.ErrActiveSemesterExists) {
				// Lost a race against another activation.
				return &apperrors.SemesterAlreadyActiveError{}
			}
			return err
		}
		semester.IsActive = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().Int64("semesterID", id).Msg("Semester activated")
	return semester, nil
}

func (s *semesterServiceImpl) DeactivateSemester(ctx context.Context, id int64) (*models.Semester, error) {
	var semester *models.Semester
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		var err error
		semester, err = tx.Semesters().GetByID(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrSemesterNotFound)
		}
		if !semester.IsActive {
			return nil
		}
		if err := tx.Semesters().SetActive(ctx, id, false); err != nil {
			return err
		}
		semester.IsActive = false
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().Int64("semesterID", id).Msg("Semester deactivated")
	return semester, nil
}
