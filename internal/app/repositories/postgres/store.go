// Package postgres implements the repositories on PostgreSQL with pgx and squirrel.
package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/db"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Store is the PostgreSQL implementation of repositories.Store.
type Store struct {
	repos
	pg *db.PostgresDB
}

// NewStore creates a store backed by the pool of pg.
func NewStore(pg *db.PostgresDB) *Store {
	return &Store{repos: repos{q: pg.Pool}, pg: pg}
}

// WithinTx runs fn with repositories bound to a single transaction.
func (s *Store) WithinTx(ctx context.Context, fn repositories.TxFunc) error {
	return s.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, repos{q: tx})
	})
}

type repos struct {
	q DBTX
}

func (r repos) Semesters() repositories.SemesterRepository { return &SemesterRepository{db: r.q} }
func (r repos) Subjects() repositories.SubjectRepository   { return &SubjectRepository{db: r.q} }
func (r repos) Users() repositories.UserRepository         { return &UserRepository{db: r.q} }
func (r repos) Offerings() repositories.OfferingRepository { return &OfferingRepository{db: r.q} }
func (r repos) Sections() repositories.SectionRepository   { return &SectionRepository{db: r.q} }
func (r repos) SectionSubjects() repositories.SectionSubjectRepository {
	return &SectionSubjectRepository{db: r.q}
}
func (r repos) Assignments() repositories.AssignmentRepository {
	return &AssignmentRepository{db: r.q}
}
func (r repos) Enrollments() repositories.EnrollmentRepository {
	return &EnrollmentRepository{db: r.q}
}

// notFound maps pgx.ErrNoRows to repositories.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repositories.ErrNotFound
	}
	return err
}
