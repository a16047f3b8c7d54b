package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yigit/campus/internal/app/codegen"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/logger"
)

// SectionService manages sections, their enrollment codes and the offerings taught in them
type SectionService interface {
	CreateSection(ctx context.Context, req dto.CreateSectionRequest) (*models.SectionDetails, error)
	GetSection(ctx context.Context, id int64) (*models.SectionDetails, error)
	GetSectionByCode(ctx context.Context, code string) (*models.SectionDetails, error)
	ListSections(ctx context.Context, filter repositories.SectionFilter) ([]*models.SectionDetails, int64, error)
	UpdateSection(ctx context.Context, id int64, req dto.UpdateSectionRequest) (*models.SectionDetails, error)
	DeleteSection(ctx context.Context, id int64) error

	AttachSubject(ctx context.Context, sectionID int64, req dto.AttachSubjectRequest) (*models.SectionSubject, error)
	DetachSubject(ctx context.Context, sectionSubjectID int64) error
	ListAvailableOfferings(ctx context.Context, sectionID, semesterID int64) ([]*models.OfferingDetails, error)

	ListEnrollments(ctx context.Context, sectionID int64) ([]*models.EnrollmentDetails, error)
	SeatSnapshot(ctx context.Context, sectionID int64) (*dto.SeatUpdate, error)
}

type sectionServiceImpl struct {
	store repositories.Store
	codes *codegen.Generator
	seats SeatNotifier
}

// NewSectionService creates a new section service instance
func NewSectionService(store repositories.Store, codes *codegen.Generator, seats SeatNotifier) SectionService {
	return &sectionServiceImpl{
		store: store,
		codes: codes,
		seats: orNoSeats(seats),
	}
}

// CreateSection allocates the enrollment code and, when an offering is
// given, attaches it in the same transaction.
func (s *sectionServiceImpl) CreateSection(ctx context.Context, req dto.CreateSectionRequest) (*models.SectionDetails, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: section name is required", apperrors.ErrValidationFailed)
	}
	if req.MaxCapacity < 1 {
		return nil, fmt.Errorf("%w: max capacity must be at least 1", apperrors.ErrValidationFailed)
	}

	section := &models.Section{Name: name, MaxCapacity: req.MaxCapacity, Status: models.SectionActive}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		if req.OfferingID != nil {
			if _, err := openOffering(ctx, tx, *req.OfferingID); err != nil {
				return err
			}
		}

		_, err := s.codes.Allocate(ctx, tx.Sections(), func(ctx context.Context, code string) error {
			section.EnrollmentCode = code
			return tx.Sections().Create(ctx, section)
		})
		if err != nil {
			return err
		}

		if req.OfferingID == nil {
			return nil
		}
		return tx.SectionSubjects().Create(ctx, &models.SectionSubject{
			SectionID:  section.ID,
			OfferingID: *req.OfferingID,
			Schedule:   req.Schedule,
			Room:       req.Room,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Int64("sectionID", section.ID).
		Str("enrollmentCode", section.EnrollmentCode).
		Int("capacity", section.MaxCapacity).
		Msg("Section created")
	return s.GetSection(ctx, section.ID)
}

func (s *sectionServiceImpl) GetSection(ctx context.Context, id int64) (*models.SectionDetails, error) {
	section, err := s.store.Sections().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrSectionNotFound)
	}
	details, err := loadSectionDetails(ctx, s.store, []*models.Section{section})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (s *sectionServiceImpl) GetSectionByCode(ctx context.Context, code string) (*models.SectionDetails, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !codegen.Valid(code) {
		return nil, fmt.Errorf("%w: %q is not a valid enrollment code", apperrors.ErrValidationFailed, code)
	}
	section, err := s.store.Sections().GetByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, apperrors.ErrSectionNotFound)
	}
	details, err := loadSectionDetails(ctx, s.store, []*models.Section{section})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (s *sectionServiceImpl) ListSections(ctx context.Context, filter repositories.SectionFilter) ([]*models.SectionDetails, int64, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown section status %q", apperrors.ErrValidationFailed, *filter.Status)
	}
	sections, total, err := s.store.Sections().List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	details, err := loadSectionDetails(ctx, s.store, sections)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// UpdateSection locks the section so that a capacity change and concurrent
// enrollments see each other. Capacity may not drop below the enrolled count.
func (s *sectionServiceImpl) UpdateSection(ctx context.Context, id int64, req dto.UpdateSectionRequest) (*models.SectionDetails, error) {
	var (
		section  *models.Section
		enrolled int
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		var err error
		section, err = tx.Sections().GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrSectionNotFound)
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return fmt.Errorf("%w: section name is required", apperrors.ErrValidationFailed)
			}
			section.Name = name
		}
		if req.Status != nil {
			if !req.Status.Valid() {
				return fmt.Errorf("%w: unknown section status %q", apperrors.ErrValidationFailed, *req.Status)
			}
			if *req.Status == models.SectionInactive && section.Status == models.SectionActive {
				if err := checkSection(ctx, tx, id); err != nil {
					return err
				}
			}
			section.Status = *req.Status
		}

		enrolled, err = tx.Enrollments().CountEnrolled(ctx, id)
		if err != nil {
			return err
		}
		if req.MaxCapacity != nil {
			if *req.MaxCapacity < 1 {
				return fmt.Errorf("%w: max capacity must be at least 1", apperrors.ErrValidationFailed)
			}
			if *req.MaxCapacity < enrolled {
				return &apperrors.CapacityBelowEnrolledError{SectionID: id, Requested: *req.MaxCapacity, Enrolled: enrolled}
			}
			section.MaxCapacity = *req.MaxCapacity
		}

		return tx.Sections().Update(ctx, section)
	})
	if err != nil {
		return nil, err
	}

	if req.MaxCapacity != nil {
		s.seats.PublishSeats(seatUpdate(section, enrolled))
	}
	logger.Ctx(ctx).Info().Int64("sectionID", id).Msg("Section updated")
	return s.GetSection(ctx, id)
}

// DeleteSection deactivates the section. Sections with enrolled students are kept.
func (s *sectionServiceImpl) DeleteSection(ctx context.Context, id int64) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		section, err := tx.Sections().GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrSectionNotFound)
		}
		if err := checkSection(ctx, tx, id); err != nil {
			return err
		}
		if section.Status == models.SectionInactive {
			return nil
		}
		section.Status = models.SectionInactive
		return tx.Sections().Update(ctx, section)
	})
	if err != nil {
		return err
	}

	logger.Ctx(ctx).Info().Int64("sectionID", id).Msg("Section deactivated")
	return nil
}

// AttachSubject binds an open offering to an active section.
func (s *sectionServiceImpl) AttachSubject(ctx context.Context, sectionID int64, req dto.AttachSubjectRequest) (*models.SectionSubject, error) {
	ss := &models.SectionSubject{
		SectionID:  sectionID,
		OfferingID: req.OfferingID,
		Schedule:   strings.TrimSpace(req.Schedule),
		Room:       strings.TrimSpace(req.Room),
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		section, err := tx.Sections().GetByIDForUpdate(ctx, sectionID)
		if err != nil {
			return notFound(err, apperrors.ErrSectionNotFound)
		}
		if section.Status != models.SectionActive {
			return &apperrors.SectionInactiveError{SectionID: sectionID}
		}

		switch _, err := tx.SectionSubjects().Find(ctx, sectionID, req.OfferingID); {
		case err == nil:
			return &apperrors.AlreadyAttachedError{SectionID: sectionID, OfferingID: req.OfferingID}
		case !errors.Is(err, repositories.ErrNotFound):
			return err
		}

		if _, err := openOffering(ctx, tx, req.OfferingID); err != nil {
			return err
		}

		if err := tx.SectionSubjects().Create(ctx, ss); err != nil {
			if errors.Is(err, repositories.ErrAlreadyAttached) {
				return &apperrors.AlreadyAttachedError{SectionID: sectionID, OfferingID: req.OfferingID}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Int64("sectionID", sectionID).
		Int64("offeringID", req.OfferingID).
		Msg("Offering attached to section")
	return ss, nil
}

// DetachSubject removes the binding unless students are enrolled through it.
func (s *sectionServiceImpl) DetachSubject(ctx context.Context, sectionSubjectID int64) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		ss, err := tx.SectionSubjects().GetByID(ctx, sectionSubjectID)
		if err != nil {
			return notFound(err, apperrors.ErrSectionSubjectNotFound)
		}
		// Lock the section so no enrollment slips in between count and delete.
		if _, err := tx.Sections().GetByIDForUpdate(ctx, ss.SectionID); err != nil {
			return notFound(err, apperrors.ErrSectionNotFound)
		}

		decision, err := guard.SectionSubject(ctx, tx, ss)
		if err != nil {
			return err
		}
		if err := decision.Err(); err != nil {
			return err
		}
		return notFound(tx.SectionSubjects().Delete(ctx, sectionSubjectID), apperrors.ErrSectionSubjectNotFound)
	})
	if err != nil {
		return err
	}

	logger.Ctx(ctx).Info().Int64("sectionSubjectID", sectionSubjectID).Msg("Offering detached from section")
	return nil
}

// ListAvailableOfferings lists the open offerings of the semester that the
// section does not teach yet.
func (s *sectionServiceImpl) ListAvailableOfferings(ctx context.Context, sectionID, semesterID int64) ([]*models.OfferingDetails, error) {
	if _, err := s.store.Sections().GetByID(ctx, sectionID); err != nil {
		return nil, notFound(err, apperrors.ErrSectionNotFound)
	}
	if _, err := s.store.Semesters().GetByID(ctx, semesterID); err != nil {
		return nil, notFound(err, apperrors.ErrSemesterNotFound)
	}
	return s.store.Offerings().ListAvailableForSection(ctx, sectionID, semesterID)
}

func (s *sectionServiceImpl) ListEnrollments(ctx context.Context, sectionID int64) ([]*models.EnrollmentDetails, error) {
	if _, err := s.store.Sections().GetByID(ctx, sectionID); err != nil {
		return nil, notFound(err, apperrors.ErrSectionNotFound)
	}
	return s.store.Enrollments().ListBySection(ctx, sectionID)
}

// SeatSnapshot returns the current seat state, the first frame of the seat feed.
func (s *sectionServiceImpl) SeatSnapshot(ctx context.Context, sectionID int64) (*dto.SeatUpdate, error) {
	section, err := s.store.Sections().GetByID(ctx, sectionID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrSectionNotFound)
	}
	enrolled, err := s.store.Enrollments().CountEnrolled(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	update := seatUpdate(section, enrolled)
	return &update, nil
}

// openOffering locks the offering so a concurrent cancel waits for the attach.
func openOffering(ctx context.Context, tx repositories.Repos, offeringID int64) (*models.Offering, error) {
	offering, err := tx.Offerings().GetByIDForUpdate(ctx, offeringID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrOfferingNotFound)
	}
	if offering.Status != models.OfferingOpen {
		return nil, &apperrors.OfferingNotOpenError{OfferingID: offeringID, Status: string(offering.Status)}
	}
	return offering, nil
}

func checkSection(ctx context.Context, tx repositories.Repos, sectionID int64) error {
	decision, err := guard.Section(ctx, tx, sectionID)
	if err != nil {
		return err
	}
	return decision.Err()
}

// loadSectionDetails denormalizes sections with their subjects, resolved
// instructors and live seat counts using one query per relation.
func loadSectionDetails(ctx context.Context, repos repositories.Repos, sections []*models.Section) ([]*models.SectionDetails, error) {
	details := make([]*models.SectionDetails, 0, len(sections))
	if len(sections) == 0 {
		return details, nil
	}

	ids := make([]int64, 0, len(sections))
	for _, section := range sections {
		ids = append(ids, section.ID)
	}

	subjects, err := repos.SectionSubjects().ListBySections(ctx, ids)
	if err != nil {
		return nil, err
	}
	counts, err := repos.Enrollments().CountEnrolledBySections(ctx, ids)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var offeringIDs []int64
	for _, ss := range subjects {
		if !seen[ss.OfferingID] {
			seen[ss.OfferingID] = true
			offeringIDs = append(offeringIDs, ss.OfferingID)
		}
	}
	var assignments []*models.AssignmentDetails
	if len(offeringIDs) > 0 {
		assignments, err = repos.Assignments().ListActiveByOfferings(ctx, offeringIDs)
		if err != nil {
			return nil, err
		}
	}

	bySection := make(map[int64][]*models.SectionSubjectDetails, len(sections))
	for _, ss := range subjects {
		ss.Instructor = models.ResolveInstructor(assignments, ss.OfferingID, ss.SectionID)
		bySection[ss.SectionID] = append(bySection[ss.SectionID], ss)
	}

	for _, section := range sections {
		enrolled := counts[section.ID]
		subjects := bySection[section.ID]
		if subjects == nil {
			subjects = []*models.SectionSubjectDetails{}
		}
		details = append(details, &models.SectionDetails{
			Section:       *section,
			EnrolledCount: enrolled,
			Available:     section.FreeSeats(enrolled),
			Subjects:      subjects,
		})
	}
	return details, nil
}
