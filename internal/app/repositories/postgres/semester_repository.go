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

const semesterSingleActiveIndex = "semesters_single_active_idx"

// SemesterRepository handles database operations for semesters
type SemesterRepository struct {
	db DBTX
}

func (r *SemesterRepository) selectQuery() squirrel.SelectBuilder {
	return psql.Select("id", "name", "academic_year", "level", "is_active", "created_at", "updated_at").
		From("semesters")
}

func scanSemester(row pgx.Row) (*models.Semester, error) {
	var s models.Semester
	if err := row.Scan(&s.ID, &s.Name, &s.AcademicYear, &s.Level, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Create inserts a new, inactive semester
func (r *SemesterRepository) Create(ctx context.Context, s *models.Semester) error {
	query := `
		INSERT INTO semesters (name, academic_year, level)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, s.Name, s.AcademicYear, s.Level).
		Scan(&s.ID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating semester: %w", err)
	}
	return nil
}

// GetByID retrieves a semester by ID
func (r *SemesterRepository) GetByID(ctx context.Context, id int64) (*models.Semester, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanSemester(r.db.QueryRow(ctx, sql, args...))
}

// GetActive returns the active semester or ErrNotFound
func (r *SemesterRepository) GetActive(ctx context.Context) (*models.Semester, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"is_active": true}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanSemester(r.db.QueryRow(ctx, sql, args...))
}

// List retrieves all semesters, newest first
func (r *SemesterRepository) List(ctx context.Context) ([]*models.Semester, error) {
	sql, args, err := r.selectQuery().OrderBy("academic_year DESC", "level DESC").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	semesters := []*models.Semester{}
	for rows.Next() {
		s, err := scanSemester(rows)
		if err != nil {
			return nil, err
		}
		semesters = append(semesters, s)
	}
	return semesters, rows.Err()
}

// SetActive flips the active flag. The partial unique index rejects a second active semester.
func (r *SemesterRepository) SetActive(ctx context.Context, id int64, active bool) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE semesters SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, semesterSingleActiveIndex) {
			return repositories.ErrActiveSemesterExists
		}
		return fmt.Errorf("error updating semester: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
