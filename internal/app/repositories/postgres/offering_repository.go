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

const offeringLiveIndex = "offerings_subject_semester_live_idx"

// OfferingRepository handles database operations for offerings
type OfferingRepository struct {
	db DBTX
}

func (r *OfferingRepository) selectDetailsQuery() squirrel.SelectBuilder {
	return psql.Select(
		"o.id", "o.subject_id", "o.semester_id", "o.status", "o.created_at", "o.updated_at",
		"s.code AS subject_code", "s.name AS subject_name", "sm.name AS semester_name", "sm.academic_year",
	).From("offerings o").
		Join("subjects s ON s.id = o.subject_id").
		Join("semesters sm ON sm.id = o.semester_id")
}

func scanOfferingDetails(row pgx.Row) (*models.OfferingDetails, error) {
	var o models.OfferingDetails
	err := row.Scan(
		&o.ID, &o.SubjectID, &o.SemesterID, &o.Status, &o.CreatedAt, &o.UpdatedAt,
		&o.SubjectCode, &o.SubjectName, &o.SemesterName, &o.AcademicYear,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *OfferingRepository) queryDetails(ctx context.Context, b squirrel.SelectBuilder) ([]*models.OfferingDetails, error) {
	sql, args, err := b.OrderBy("s.code").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offerings := []*models.OfferingDetails{}
	for rows.Next() {
		o, err := scanOfferingDetails(rows)
		if err != nil {
			return nil, err
		}
		offerings = append(offerings, o)
	}
	return offerings, rows.Err()
}

// Create inserts an open offering. The partial unique index is the authority
// on one live offering per subject and semester.
func (r *OfferingRepository) Create(ctx context.Context, o *models.Offering) error {
	query := `
		INSERT INTO offerings (subject_id, semester_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, o.SubjectID, o.SemesterID, o.Status).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows || dberrors.IsDuplicateConstraintError(err, offeringLiveIndex) {
			return repositories.ErrDuplicateOffering
		}
		return fmt.Errorf("error creating offering: %w", err)
	}
	return nil
}

const offeringByID = `SELECT id, subject_id, semester_id, status, created_at, updated_at FROM offerings WHERE id = $1`

// GetByID retrieves an offering by ID
func (r *OfferingRepository) GetByID(ctx context.Context, id int64) (*models.Offering, error) {
	return r.scanOne(ctx, offeringByID, id)
}

// GetByIDForUpdate retrieves an offering and locks its row for the rest of the transaction
func (r *OfferingRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Offering, error) {
	return r.scanOne(ctx, offeringByID+` FOR UPDATE`, id)
}

func (r *OfferingRepository) scanOne(ctx context.Context, query string, id int64) (*models.Offering, error) {
	var o models.Offering
	err := r.db.QueryRow(ctx, query, id).
		Scan(&o.ID, &o.SubjectID, &o.SemesterID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// GetDetails retrieves an offering with subject and semester labels
func (r *OfferingRepository) GetDetails(ctx context.Context, id int64) (*models.OfferingDetails, error) {
	sql, args, err := r.selectDetailsQuery().Where(squirrel.Eq{"o.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanOfferingDetails(r.db.QueryRow(ctx, sql, args...))
}

// List retrieves offerings matching filter
func (r *OfferingRepository) List(ctx context.Context, filter repositories.OfferingFilter) ([]*models.OfferingDetails, error) {
	b := r.selectDetailsQuery()
	if filter.SemesterID != nil {
		b = b.Where(squirrel.Eq{"o.semester_id": *filter.SemesterID})
	}
	if filter.SubjectID != nil {
		b = b.Where(squirrel.Eq{"o.subject_id": *filter.SubjectID})
	}
	if filter.Status != nil {
		b = b.Where(squirrel.Eq{"o.status": *filter.Status})
	}
	return r.queryDetails(ctx, b)
}

// ListAvailableForSection lists open offerings of a semester not yet attached to the section
func (r *OfferingRepository) ListAvailableForSection(ctx context.Context, sectionID, semesterID int64) ([]*models.OfferingDetails, error) {
	b := r.selectDetailsQuery().
		Where(squirrel.Eq{"o.semester_id": semesterID, "o.status": models.OfferingOpen}).
		Where("NOT EXISTS (SELECT 1 FROM section_subjects ss WHERE ss.offering_id = o.id AND ss.section_id = ?)", sectionID)
	return r.queryDetails(ctx, b)
}

// UpdateStatus sets the status of an offering
func (r *OfferingRepository) UpdateStatus(ctx context.Context, id int64, status models.OfferingStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE offerings SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating offering status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
