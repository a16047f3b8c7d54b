package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/logger"
	"github.com/yigit/campus/internal/pkg/metrics"
)

// EnrollmentService enrolls students in offerings through sections
type EnrollmentService interface {
	Enroll(ctx context.Context, req dto.EnrollRequest) (*models.Enrollment, error)
	BatchEnroll(ctx context.Context, req dto.BatchEnrollRequest) (*dto.BatchEnrollResult, error)
	GetEnrollment(ctx context.Context, id int64) (*models.Enrollment, error)
	Unenroll(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status models.EnrollmentStatus) (*models.Enrollment, error)
	OverrideStatus(ctx context.Context, actorID, id int64, status models.EnrollmentStatus, reason string) (*models.Enrollment, error)
}

type enrollmentServiceImpl struct {
	store      repositories.Store
	seats      SeatNotifier
	batchLimit int
}

// NewEnrollmentService creates a new enrollment service instance.
// batchLimit caps the number of students in one batch request.
func NewEnrollmentService(store repositories.Store, seats SeatNotifier, batchLimit int) EnrollmentService {
	if batchLimit < 1 {
		batchLimit = 200
	}
	return &enrollmentServiceImpl{
		store:      store,
		seats:      orNoSeats(seats),
		batchLimit: batchLimit,
	}
}

// slot is a locked section teaching an open offering.
type slot struct {
	section  *models.Section
	offering *models.Offering
}

// lockSlot locks the section row, serializing every seat change of the
// section until the transaction ends, then checks that the offering can be
// taken through it.
func lockSlot(ctx context.Context, tx repositories.Repos, sectionID, offeringID int64) (*slot, error) {
	section, err := tx.Sections().GetByIDForUpdate(ctx, sectionID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrSectionNotFound)
	}
	if section.Status != models.SectionActive {
		return nil, &apperrors.SectionInactiveError{SectionID: sectionID}
	}

	offering, err := tx.Offerings().GetByID(ctx, offeringID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrOfferingNotFound)
	}
	if offering.Status != models.OfferingOpen {
		return nil, &apperrors.OfferingClosedError{OfferingID: offeringID, Status: string(offering.Status)}
	}

	if _, err := tx.SectionSubjects().Find(ctx, sectionID, offeringID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &apperrors.NotAttachedError{SectionID: sectionID, OfferingID: offeringID}
		}
		return nil, err
	}
	return &slot{section: section, offering: offering}, nil
}

// admit checks one student against the locked slot. enrolled is the
// current count of enrolled records in the section.
func (sl *slot) admit(ctx context.Context, tx repositories.Repos, studentID int64, enrolled int) error {
	user, err := tx.Users().GetByID(ctx, studentID)
	if err != nil {
		return notFound(err, apperrors.ErrUserNotFound)
	}
	if user.RoleType != models.RoleStudent {
		return &apperrors.RoleMismatchError{UserID: studentID, Want: string(models.RoleStudent), Got: string(user.RoleType)}
	}

	already, err := tx.Enrollments().HasEnrolled(ctx, studentID, sl.offering.ID)
	if err != nil {
		return err
	}
	if already {
		return &apperrors.AlreadyEnrolledError{StudentID: studentID, OfferingID: sl.offering.ID}
	}

	if sl.section.FreeSeats(enrolled) == 0 {
		return &apperrors.SectionFullError{SectionID: sl.section.ID, Capacity: sl.section.MaxCapacity}
	}
	return nil
}

func (sl *slot) create(ctx context.Context, tx repositories.Repos, studentID int64) (*models.Enrollment, error) {
	sectionID := sl.section.ID
	enrollment := &models.Enrollment{
		StudentID:  studentID,
		OfferingID: sl.offering.ID,
		SectionID:  &sectionID,
		Status:     models.EnrollmentEnrolled,
	}
	if err := tx.Enrollments().Create(ctx, enrollment); err != nil {
		if errors.Is(err, repositories.ErrAlreadyEnrolled) {
			return nil, &apperrors.AlreadyEnrolledError{StudentID: studentID, OfferingID: sl.offering.ID}
		}
		return nil, err
	}
	return enrollment, nil
}

// Enroll checks, in order, that the offering is open, that the student is
// not already enrolled in it and that the section has a free seat.
func (s *enrollmentServiceImpl) Enroll(ctx context.Context, req dto.EnrollRequest) (*models.Enrollment, error) {
	var (
		enrollment *models.Enrollment
		update     dto.SeatUpdate
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		sl, err := lockSlot(ctx, tx, req.SectionID, req.OfferingID)
		if err != nil {
			return err
		}
		enrolled, err := tx.Enrollments().CountEnrolled(ctx, req.SectionID)
		if err != nil {
			return err
		}
		if err := sl.admit(ctx, tx, req.StudentID, enrolled); err != nil {
			return err
		}
		if enrollment, err = sl.create(ctx, tx, req.StudentID); err != nil {
			return err
		}
		update = seatUpdate(sl.section, enrolled+1)
		return nil
	})
	metrics.Enrollments.WithLabelValues(enrollResult(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.seats.PublishSeats(update)
	logger.Ctx(ctx).Info().
		Int64("enrollmentID", enrollment.ID).
		Int64("studentID", req.StudentID).
		Int64("offeringID", req.OfferingID).
		Int64("sectionID", req.SectionID).
		Msg("Student enrolled")
	return enrollment, nil
}

// BatchEnroll enrolls the listed students in order until the section is
// full. Students that cannot be enrolled are reported, not fatal; only a
// slot that accepts nobody fails the whole batch.
func (s *enrollmentServiceImpl) BatchEnroll(ctx context.Context, req dto.BatchEnrollRequest) (*dto.BatchEnrollResult, error) {
	if len(req.StudentIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one student is required", apperrors.ErrValidationFailed)
	}
	if len(req.StudentIDs) > s.batchLimit {
		return nil, fmt.Errorf("%w: at most %d students per batch", apperrors.ErrValidationFailed, s.batchLimit)
	}

	var (
		result *dto.BatchEnrollResult
		update dto.SeatUpdate
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		result = &dto.BatchEnrollResult{
			Requested:   len(req.StudentIDs),
			Enrollments: []*models.Enrollment{},
			Skipped:     []dto.SkippedStudent{},
		}

		sl, err := lockSlot(ctx, tx, req.SectionID, req.OfferingID)
		if err != nil {
			return err
		}
		enrolled, err := tx.Enrollments().CountEnrolled(ctx, req.SectionID)
		if err != nil {
			return err
		}

		seen := make(map[int64]bool, len(req.StudentIDs))
		for _, studentID := range req.StudentIDs {
			if seen[studentID] {
				continue
			}
			seen[studentID] = true

			err := sl.admit(ctx, tx, studentID, enrolled)
			if err == nil {
				var enrollment *models.Enrollment
				if enrollment, err = sl.create(ctx, tx, studentID); err == nil {
					result.Enrollments = append(result.Enrollments, enrollment)
					enrolled++
				}
			}
			metrics.Enrollments.WithLabelValues(enrollResult(err)).Inc()
			if err != nil {
				skipped, ok := skip(studentID, err)
				if !ok {
					return err
				}
				result.Skipped = append(result.Skipped, skipped)
			}
		}

		result.Enrolled = len(result.Enrollments)
		update = seatUpdate(sl.section, enrolled)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Enrolled > 0 {
		s.seats.PublishSeats(update)
	}
	logger.Ctx(ctx).Info().
		Int64("offeringID", req.OfferingID).
		Int64("sectionID", req.SectionID).
		Int("requested", result.Requested).
		Int("enrolled", result.Enrolled).
		Int("skipped", len(result.Skipped)).
		Msg("Batch enrollment finished")
	return result, nil
}

// skip turns a per-student rejection into a report row. Infrastructure
// errors are not reported and abort the batch.
func skip(studentID int64, err error) (dto.SkippedStudent, bool) {
	var coded apperrors.Coded
	if !errors.As(err, &coded) {
		return dto.SkippedStudent{}, false
	}
	return dto.SkippedStudent{StudentID: studentID, Reason: coded.ErrorCode(), Message: err.Error()}, true
}

func enrollResult(err error) string {
	var (
		full *apperrors.SectionFullError
		dup  *apperrors.AlreadyEnrolledError
	)
	switch {
	case err == nil:
		return metrics.ResultEnrolled
	case errors.As(err, &full):
		return metrics.ResultFull
	case errors.As(err, &dup):
		return metrics.ResultDuplicate
	}
	return metrics.ResultRejected
}

func (s *enrollmentServiceImpl) GetEnrollment(ctx context.Context, id int64) (*models.Enrollment, error) {
	enrollment, err := s.store.Enrollments().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrEnrollmentNotFound)
	}
	return enrollment, nil
}

// Unenroll removes the record. Use SetStatus with dropped to keep history.
func (s *enrollmentServiceImpl) Unenroll(ctx context.Context, id int64) error {
	var update *dto.SeatUpdate
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		enrollment, err := tx.Enrollments().GetByID(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrEnrollmentNotFound)
		}

		section, err := lockEnrollmentSection(ctx, tx, enrollment)
		if err != nil {
			return err
		}
		if err := tx.Enrollments().Delete(ctx, id); err != nil {
			return notFound(err, apperrors.ErrEnrollmentNotFound)
		}
		if section != nil && enrollment.Status == models.EnrollmentEnrolled {
			update, err = snapshot(ctx, tx, section)
		}
		return err
	})
	if err != nil {
		return err
	}

	if update != nil {
		s.seats.PublishSeats(*update)
	}
	logger.Ctx(ctx).Info().Int64("enrollmentID", id).Msg("Enrollment removed")
	return nil
}

// SetStatus follows the status graph: enrolled may become dropped or
// completed, nothing else moves.
func (s *enrollmentServiceImpl) SetStatus(ctx context.Context, id int64, status models.EnrollmentStatus) (*models.Enrollment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown enrollment status %q", apperrors.ErrValidationFailed, status)
	}

	var (
		enrollment *models.Enrollment
		update     *dto.SeatUpdate
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		var err error
		enrollment, err = tx.Enrollments().GetByID(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrEnrollmentNotFound)
		}
		if !enrollment.Status.CanTransitionTo(status) {
			return &apperrors.InvalidTransitionError{Entity: "enrollment", From: string(enrollment.Status), To: string(status)}
		}

		section, err := lockEnrollmentSection(ctx, tx, enrollment)
		if err != nil {
			return err
		}
		if err := tx.Enrollments().UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		enrollment.Status = status
		if section != nil {
			update, err = snapshot(ctx, tx, section)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if update != nil {
		s.seats.PublishSeats(*update)
	}
	logger.Ctx(ctx).Info().Int64("enrollmentID", id).Str("status", string(status)).Msg("Enrollment status changed")
	return enrollment, nil
}

// OverrideStatus lets staff set any status, including moving a record back
// to enrolled. The single enrolled record per offering and the section
// capacity still hold.
func (s *enrollmentServiceImpl) OverrideStatus(ctx context.Context, actorID, id int64, status models.EnrollmentStatus, reason string) (*models.Enrollment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown enrollment status %q", apperrors.ErrValidationFailed, status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: a reason is required to override an enrollment status", apperrors.ErrValidationFailed)
	}

	var (
		enrollment *models.Enrollment
		from       models.EnrollmentStatus
		update     *dto.SeatUpdate
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		actor, err := tx.Users().GetByID(ctx, actorID)
		if err != nil {
			return notFound(err, apperrors.ErrUserNotFound)
		}
		if actor.RoleType != models.RoleStaff {
			return apperrors.NewForbiddenError("only staff may override an enrollment status")
		}

		enrollment, err = tx.Enrollments().GetByID(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrEnrollmentNotFound)
		}
		from = enrollment.Status
		if from == status {
			return nil
		}

		section, err := lockEnrollmentSection(ctx, tx, enrollment)
		if err != nil {
			return err
		}

		if status == models.EnrollmentEnrolled {
			already, err := tx.Enrollments().HasEnrolled(ctx, enrollment.StudentID, enrollment.OfferingID)
			if err != nil {
				return err
			}
			if already {
				return &apperrors.AlreadyEnrolledError{StudentID: enrollment.StudentID, OfferingID: enrollment.OfferingID}
			}
			if section != nil {
				enrolled, err := tx.Enrollments().CountEnrolled(ctx, section.ID)
				if err != nil {
					return err
				}
				if section.FreeSeats(enrolled) == 0 {
					return &apperrors.SectionFullError{SectionID: section.ID, Capacity: section.MaxCapacity}
				}
			}
		}

		if err := tx.Enrollments().UpdateStatus(ctx, id, status); err != nil {
			if errors.Is(err, repositories.ErrAlreadyEnrolled) {
				return &apperrors.AlreadyEnrolledError{StudentID: enrollment.StudentID, OfferingID: enrollment.OfferingID}
			}
			return err
		}
		enrollment.Status = status
		if section != nil {
			update, err = snapshot(ctx, tx, section)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if update != nil {
		s.seats.PublishSeats(*update)
	}
	logger.Ctx(ctx).Warn().
		Int64("actorID", actorID).
		Int64("enrollmentID", id).
		Str("from", string(from)).
		Str("to", string(status)).
		Str("reason", reason).
		Msg("Enrollment status overridden")
	return enrollment, nil
}

// lockEnrollmentSection locks the section an enrollment was taken through.
// Records whose section is gone return nil.
func lockEnrollmentSection(ctx context.Context, tx repositories.Repos, e *models.Enrollment) (*models.Section, error) {
	if e.SectionID == nil {
		return nil, nil
	}
	section, err := tx.Sections().GetByIDForUpdate(ctx, *e.SectionID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	return section, err
}

func snapshot(ctx context.Context, tx repositories.Repos, section *models.Section) (*dto.SeatUpdate, error) {
	enrolled, err := tx.Enrollments().CountEnrolled(ctx, section.ID)
	if err != nil {
		return nil, err
	}
	update := seatUpdate(section, enrolled)
	return &update, nil
}
