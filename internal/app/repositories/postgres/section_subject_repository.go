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

const sectionSubjectKey = "section_subjects_section_offering_key"

// SectionSubjectRepository handles database operations for section subjects
type SectionSubjectRepository struct {
	db DBTX
}

const sectionSubjectColumns = "id, section_id, offering_id, schedule, room, created_at"

func scanSectionSubject(row pgx.Row) (*models.SectionSubject, error) {
	var ss models.SectionSubject
	if err := row.Scan(&ss.ID, &ss.SectionID, &ss.OfferingID, &ss.Schedule, &ss.Room, &ss.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &ss, nil
}

// Create attaches an offering to a section
func (r *SectionSubjectRepository) Create(ctx context.Context, ss *models.SectionSubject) error {
	query := `
		INSERT INTO section_subjects (section_id, offering_id, schedule, room)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT ` + sectionSubjectKey + ` DO NOTHING
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, ss.SectionID, ss.OfferingID, ss.Schedule, ss.Room).
		Scan(&ss.ID, &ss.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows || dberrors.IsDuplicateConstraintError(err, sectionSubjectKey) {
			return repositories.ErrAlreadyAttached
		}
		return fmt.Errorf("error attaching offering to section: %w", err)
	}
	return nil
}

// GetByID retrieves a section subject by ID
func (r *SectionSubjectRepository) GetByID(ctx context.Context, id int64) (*models.SectionSubject, error) {
	return scanSectionSubject(r.db.QueryRow(ctx,
		`SELECT `+sectionSubjectColumns+` FROM section_subjects WHERE id = $1`, id))
}

// Find retrieves the join row for a section and offering
func (r *SectionSubjectRepository) Find(ctx context.Context, sectionID, offeringID int64) (*models.SectionSubject, error) {
	return scanSectionSubject(r.db.QueryRow(ctx,
		`SELECT `+sectionSubjectColumns+` FROM section_subjects WHERE section_id = $1 AND offering_id = $2`,
		sectionID, offeringID))
}

// ListBySections lists the subjects of every given section with offering and subject labels
func (r *SectionSubjectRepository) ListBySections(ctx context.Context, sectionIDs []int64) ([]*models.SectionSubjectDetails, error) {
	if len(sectionIDs) == 0 {
		return []*models.SectionSubjectDetails{}, nil
	}

	sql, args, err := psql.Select(
		"ss.id", "ss.section_id", "ss.offering_id", "ss.schedule", "ss.room", "ss.created_at",
		"o.subject_id", "s.code", "s.name", "o.semester_id", "o.status",
	).From("section_subjects ss").
		Join("offerings o ON o.id = ss.offering_id").
		Join("subjects s ON s.id = o.subject_id").
		Where(squirrel.Eq{"ss.section_id": sectionIDs}).
		OrderBy("ss.section_id", "s.code").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing section subjects: %w", err)
	}
	defer rows.Close()

	subjects := []*models.SectionSubjectDetails{}
	for rows.Next() {
		var d models.SectionSubjectDetails
		err := rows.Scan(
			&d.ID, &d.SectionID, &d.OfferingID, &d.Schedule, &d.Room, &d.CreatedAt,
			&d.SubjectID, &d.SubjectCode, &d.SubjectName, &d.SemesterID, &d.OfferingStatus,
		)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, &d)
	}
	return subjects, rows.Err()
}

// Delete removes a section subject
func (r *SectionSubjectRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM section_subjects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error detaching offering: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
