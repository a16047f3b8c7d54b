package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/helpers"
)

// SectionRepository handles database operations for sections
type SectionRepository struct {
	db DBTX
}

const sectionColumns = "id, name, enrollment_code, max_capacity, status, created_at, updated_at"

func scanSection(row pgx.Row) (*models.Section, error) {
	var s models.Section
	err := row.Scan(&s.ID, &s.Name, &s.EnrollmentCode, &s.MaxCapacity, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Create inserts a section. A taken enrollment code yields ErrDuplicateCode;
// ON CONFLICT keeps the enclosing transaction usable for the next attempt.
func (r *SectionRepository) Create(ctx context.Context, s *models.Section) error {
	query := `
		INSERT INTO sections (name, enrollment_code, max_capacity, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (enrollment_code) DO NOTHING
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, s.Name, s.EnrollmentCode, s.MaxCapacity, s.Status).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return repositories.ErrDuplicateCode
		}
		return fmt.Errorf("error creating section: %w", err)
	}
	return nil
}

// CodeExists reports whether a section already uses code
func (r *SectionRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM sections WHERE enrollment_code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking enrollment code: %w", err)
	}
	return exists, nil
}

// GetByID retrieves a section by ID
func (r *SectionRepository) GetByID(ctx context.Context, id int64) (*models.Section, error) {
	return scanSection(r.db.QueryRow(ctx, `SELECT `+sectionColumns+` FROM sections WHERE id = $1`, id))
}

// GetByIDForUpdate retrieves a section and locks its row for the rest of the transaction
func (r *SectionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Section, error) {
	return scanSection(r.db.QueryRow(ctx, `SELECT `+sectionColumns+` FROM sections WHERE id = $1 FOR UPDATE`, id))
}

// GetByCode retrieves a section by enrollment code
func (r *SectionRepository) GetByCode(ctx context.Context, code string) (*models.Section, error) {
	return scanSection(r.db.QueryRow(ctx, `SELECT `+sectionColumns+` FROM sections WHERE enrollment_code = $1`, code))
}

// List retrieves sections matching filter together with the total count
func (r *SectionRepository) List(ctx context.Context, filter repositories.SectionFilter) ([]*models.Section, int64, error) {
	where := squirrel.And{}
	if filter.SemesterID != nil {
		where = append(where, squirrel.Expr(
			`EXISTS (SELECT 1 FROM section_subjects ss JOIN offerings o ON o.id = ss.offering_id
				WHERE ss.section_id = sections.id AND o.semester_id = ?)`, *filter.SemesterID))
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"enrollment_code": pattern},
		})
	}

	countSQL, countArgs, err := psql.Select("count(*)").From("sections").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting sections: %w", err)
	}

	b := psql.Select(sectionColumns).From("sections").Where(where).OrderBy("name", "id")
	if filter.Size > 0 {
		offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
		b = b.Offset(offset).Limit(uint64(limit))
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sections := []*models.Section{}
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, 0, err
		}
		sections = append(sections, s)
	}
	return sections, total, rows.Err()
}

// Update writes name, capacity and status of a section
func (r *SectionRepository) Update(ctx context.Context, s *models.Section) error {
	err := r.db.QueryRow(ctx, `
		UPDATE sections SET name = $1, max_capacity = $2, status = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`,
		s.Name, s.MaxCapacity, s.Status, s.ID,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return notFound(err)
	}
	return nil
}

// CountActiveByOffering counts active sections teaching the offering
func (r *SectionRepository) CountActiveByOffering(ctx context.Context, offeringID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT count(DISTINCT s.id)
		FROM sections s
		JOIN section_subjects ss ON ss.section_id = s.id
		WHERE ss.offering_id = $1 AND s.status = $2`,
		offeringID, models.SectionActive,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting active sections: %w", err)
	}
	return n, nil
}
