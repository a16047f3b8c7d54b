package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/dberrors"
)

const assignmentNaturalKey = "faculty_assignments_natural_key_idx"

// AssignmentRepository handles database operations for faculty assignments
type AssignmentRepository struct {
	db DBTX
}

// UpdateByNaturalKey reactivates the row for (offering, section) with a new instructor
func (r *AssignmentRepository) UpdateByNaturalKey(ctx context.Context, a *models.FacultyAssignment) (bool, error) {
	query := `
		UPDATE faculty_assignments
		SET instructor_id = $1, status = $2, assigned_at = NOW(), removed_at = NULL, updated_at = NOW()
		WHERE offering_id = $3 AND section_id IS NOT DISTINCT FROM $4
		RETURNING id, assigned_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, a.InstructorID, models.AssignmentActive, a.OfferingID, a.SectionID).
		Scan(&a.ID, &a.AssignedAt, &a.UpdatedAt)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error updating faculty assignment: %w", err)
	}
	a.Status = models.AssignmentActive
	a.RemovedAt = nil
	return true, nil
}

// Insert creates a new assignment row
func (r *AssignmentRepository) Insert(ctx context.Context, a *models.FacultyAssignment) error {
	query := `
		INSERT INTO faculty_assignments (offering_id, instructor_id, section_id, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
		RETURNING id, assigned_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, a.OfferingID, a.InstructorID, a.SectionID, models.AssignmentActive).
		Scan(&a.ID, &a.AssignedAt, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows || dberrors.IsDuplicateConstraintError(err, assignmentNaturalKey) {
			return repositories.ErrDuplicateAssignment
		}
		return fmt.Errorf("error creating faculty assignment: %w", err)
	}
	a.Status = models.AssignmentActive
	return nil
}

// GetByID retrieves an assignment by ID
func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*models.FacultyAssignment, error) {
	var a models.FacultyAssignment
	err := r.db.QueryRow(ctx, `
		SELECT id, offering_id, instructor_id, section_id, status, assigned_at, removed_at, updated_at
		FROM faculty_assignments WHERE id = $1`, id,
	).Scan(&a.ID, &a.OfferingID, &a.InstructorID, &a.SectionID, &a.Status, &a.AssignedAt, &a.RemovedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// Deactivate marks an assignment inactive
func (r *AssignmentRepository) Deactivate(ctx context.Context, id int64, at time.Time) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE faculty_assignments SET status = $1, removed_at = $2, updated_at = NOW()
		WHERE id = $3`, models.AssignmentInactive, at, id)
	if err != nil {
		return fmt.Errorf("error removing faculty assignment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *AssignmentRepository) selectDetailsQuery() squirrel.SelectBuilder {
	return psql.Select(
		"fa.id", "fa.offering_id", "fa.instructor_id", "fa.section_id", "fa.status",
		"fa.assigned_at", "fa.removed_at", "fa.updated_at",
		"u.first_name || ' ' || u.last_name", "u.email",
	).From("faculty_assignments fa").
		Join("users u ON u.id = fa.instructor_id")
}

func (r *AssignmentRepository) queryDetails(ctx context.Context, b squirrel.SelectBuilder) ([]*models.AssignmentDetails, error) {
	sql, args, err := b.OrderBy("fa.assigned_at DESC", "fa.id DESC").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing faculty assignments: %w", err)
	}
	defer rows.Close()

	assignments := []*models.AssignmentDetails{}
	for rows.Next() {
		var a models.AssignmentDetails
		err := rows.Scan(
			&a.ID, &a.OfferingID, &a.InstructorID, &a.SectionID, &a.Status,
			&a.AssignedAt, &a.RemovedAt, &a.UpdatedAt,
			&a.InstructorName, &a.InstructorEmail,
		)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, &a)
	}
	return assignments, rows.Err()
}

// ListByOffering lists every assignment of an offering, active or not
func (r *AssignmentRepository) ListByOffering(ctx context.Context, offeringID int64) ([]*models.AssignmentDetails, error) {
	return r.queryDetails(ctx, r.selectDetailsQuery().Where(squirrel.Eq{"fa.offering_id": offeringID}))
}

// ListActiveByOfferings lists active assignments of the given offerings
func (r *AssignmentRepository) ListActiveByOfferings(ctx context.Context, offeringIDs []int64) ([]*models.AssignmentDetails, error) {
	if len(offeringIDs) == 0 {
		return []*models.AssignmentDetails{}, nil
	}
	return r.queryDetails(ctx, r.selectDetailsQuery().Where(squirrel.Eq{
		"fa.offering_id": offeringIDs,
		"fa.status":      models.AssignmentActive,
	}))
}
