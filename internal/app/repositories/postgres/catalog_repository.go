package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/campus/internal/app/models"
)

// SubjectRepository reads and seeds the subject catalog
type SubjectRepository struct {
	db DBTX
}

// Create inserts a subject
func (r *SubjectRepository) Create(ctx context.Context, s *models.Subject) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO subjects (code, name, units, department_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		s.Code, s.Name, s.Units, s.DepartmentID).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("error creating subject: %w", err)
	}
	return nil
}

// GetByID retrieves a subject by ID
func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*models.Subject, error) {
	return scanSubject(r.db.QueryRow(ctx,
		`SELECT id, code, name, units, department_id FROM subjects WHERE id = $1`, id))
}

// GetByCode retrieves a subject by its catalog code
func (r *SubjectRepository) GetByCode(ctx context.Context, code string) (*models.Subject, error) {
	return scanSubject(r.db.QueryRow(ctx,
		`SELECT id, code, name, units, department_id FROM subjects WHERE code = $1`, code))
}

func scanSubject(row pgx.Row) (*models.Subject, error) {
	var s models.Subject
	if err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Units, &s.DepartmentID); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// UserRepository reads users for role checks and seeds demo accounts
type UserRepository struct {
	db DBTX
}

const userColumns = `id, email, password, first_name, last_name, role_type, is_active,
	student_number, employee_number, program_id, department_id, created_at, updated_at`

// Create inserts a user
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (email, password, first_name, last_name, role_type, is_active,
			student_number, employee_number, program_id, department_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		u.Email, u.Password, u.FirstName, u.LastName, u.RoleType, u.IsActive,
		u.StudentNumber, u.EmployeeNumber, u.ProgramID, u.DepartmentID,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.RoleType, &u.IsActive,
		&u.StudentNumber, &u.EmployeeNumber, &u.ProgramID, &u.DepartmentID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
