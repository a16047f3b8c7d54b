package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/dberrors"
)

const enrolledOnceIndex = "enrollments_student_offering_enrolled_idx"

// EnrollmentRepository handles database operations for enrollments
type EnrollmentRepository struct {
	db DBTX
}

// Create inserts an enrollment record
func (r *EnrollmentRepository) Create(ctx context.Context, e *models.Enrollment) error {
	query := `
		INSERT INTO enrollments (student_id, offering_id, section_id, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
		RETURNING id, enrolled_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, e.StudentID, e.OfferingID, e.SectionID, e.Status).
		Scan(&e.ID, &e.EnrolledAt, &e.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows || dberrors.IsDuplicateConstraintError(err, enrolledOnceIndex) {
			return repositories.ErrAlreadyEnrolled
		}
		return fmt.Errorf("error creating enrollment: %w", err)
	}
	return nil
}

// GetByID retrieves an enrollment by ID
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	var e models.Enrollment
	err := r.db.QueryRow(ctx, `
		SELECT id, student_id, offering_id, section_id, status, enrolled_at, updated_at
		FROM enrollments WHERE id = $1`, id,
	).Scan(&e.ID, &e.StudentID, &e.OfferingID, &e.SectionID, &e.Status, &e.EnrolledAt, &e.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// HasEnrolled reports whether the student holds an enrolled record for the offering
func (r *EnrollmentRepository) HasEnrolled(ctx context.Context, studentID, offeringID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND offering_id = $2 AND status = $3)`,
		studentID, offeringID, models.EnrollmentEnrolled,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking enrollment: %w", err)
	}
	return exists, nil
}

// CountEnrolledStudents counts distinct enrolled students in a section
func (r *EnrollmentRepository) CountEnrolledStudents(ctx context.Context, sectionID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT count(DISTINCT student_id) FROM enrollments WHERE section_id = $1 AND status = $2`,
		sectionID, models.EnrollmentEnrolled,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting enrolled students: %w", err)
	}
	return n, nil
}

// CountEnrolled counts enrolled records in a section
func (r *EnrollmentRepository) CountEnrolled(ctx context.Context, sectionID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT count(*) FROM enrollments WHERE section_id = $1 AND status = $2`,
		sectionID, models.EnrollmentEnrolled,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting enrollments: %w", err)
	}
	return n, nil
}

// CountEnrolledBySections counts enrolled records per section
func (r *EnrollmentRepository) CountEnrolledBySections(ctx context.Context, sectionIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(sectionIDs))
	if len(sectionIDs) == 0 {
		return counts, nil
	}

	sql, args, err := psql.Select("section_id", "count(*)").
		From("enrollments").
		Where(squirrel.Eq{"section_id": sectionIDs, "status": models.EnrollmentEnrolled}).
		GroupBy("section_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting enrollments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// CountEnrolledInSlot counts enrolled records for an offering taught in a section
func (r *EnrollmentRepository) CountEnrolledInSlot(ctx context.Context, sectionID, offeringID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT count(*) FROM enrollments WHERE section_id = $1 AND offering_id = $2 AND status = $3`,
		sectionID, offeringID, models.EnrollmentEnrolled,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting slot enrollments: %w", err)
	}
	return n, nil
}

// UpdateStatus sets the status of an enrollment
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE enrollments SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, enrolledOnceIndex) {
			return repositories.ErrAlreadyEnrolled
		}
		return fmt.Errorf("error updating enrollment status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Delete removes an enrollment record
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting enrollment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// ListBySection lists enrollments made through a section, newest first
func (r *EnrollmentRepository) ListBySection(ctx context.Context, sectionID int64) ([]*models.EnrollmentDetails, error) {
	rows, err := r.db.Query(ctx, `
		SELECT e.id, e.student_id, e.offering_id, e.section_id, e.status, e.enrolled_at, e.updated_at,
			u.first_name || ' ' || u.last_name, u.student_number, s.code, s.name
		FROM enrollments e
		JOIN users u ON u.id = e.student_id
		JOIN offerings o ON o.id = e.offering_id
		JOIN subjects s ON s.id = o.subject_id
		WHERE e.section_id = $1
		ORDER BY e.enrolled_at DESC, e.id DESC`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("error listing enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := []*models.EnrollmentDetails{}
	for rows.Next() {
		var e models.EnrollmentDetails
		err := rows.Scan(
			&e.ID, &e.StudentID, &e.OfferingID, &e.SectionID, &e.Status, &e.EnrolledAt, &e.UpdatedAt,
			&e.StudentName, &e.StudentNumber, &e.SubjectCode, &e.SubjectName,
		)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, &e)
	}
	return enrollments, rows.Err()
}
