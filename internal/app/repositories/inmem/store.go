// Package inmem implements the repositories on mutex-guarded maps. It backs
// the service tests and the local demo mode, and enforces the same
// uniqueness rules as the PostgreSQL schema.
package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/repositories"
)

type tables struct {
	seq             int64
	semesters       map[int64]models.Semester
	subjects        map[int64]models.Subject
	users           map[int64]models.User
	offerings       map[int64]models.Offering
	sections        map[int64]models.Section
	sectionSubjects map[int64]models.SectionSubject
	assignments     map[int64]models.FacultyAssignment
	enrollments     map[int64]models.Enrollment
}

func newTables() *tables {
	return &tables{
		semesters:       map[int64]models.Semester{},
		subjects:        map[int64]models.Subject{},
		users:           map[int64]models.User{},
		offerings:       map[int64]models.Offering{},
		sections:        map[int64]models.Section{},
		sectionSubjects: map[int64]models.SectionSubject{},
		assignments:     map[int64]models.FacultyAssignment{},
		enrollments:     map[int64]models.Enrollment{},
	}
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies every table. Pointer fields inside rows are never mutated
// in place, so a shallow row copy is enough.
func (t *tables) clone() *tables {
	return &tables{
		seq:             t.seq,
		semesters:       cloneMap(t.semesters),
		subjects:        cloneMap(t.subjects),
		users:           cloneMap(t.users),
		offerings:       cloneMap(t.offerings),
		sections:        cloneMap(t.sections),
		sectionSubjects: cloneMap(t.sectionSubjects),
		assignments:     cloneMap(t.assignments),
		enrollments:     cloneMap(t.enrollments),
	}
}

func (t *tables) nextID() int64 {
	t.seq++
	return t.seq
}

// Store is the in-memory implementation of repositories.Store. Transactions
// hold the store lock for their whole duration, so they run one at a time.
type Store struct {
	mu   sync.Mutex
	data *tables
	now  func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: newTables(), now: time.Now}
}

// WithinTx runs fn against a private copy of the tables and publishes the
// copy only when fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn repositories.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.data.clone()
	if err := fn(ctx, view{store: s, tx: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) Semesters() repositories.SemesterRepository { return view{store: s}.Semesters() }
func (s *Store) Subjects() repositories.SubjectRepository   { return view{store: s}.Subjects() }
func (s *Store) Users() repositories.UserRepository         { return view{store: s}.Users() }
func (s *Store) Offerings() repositories.OfferingRepository { return view{store: s}.Offerings() }
func (s *Store) Sections() repositories.SectionRepository   { return view{store: s}.Sections() }
func (s *Store) SectionSubjects() repositories.SectionSubjectRepository {
	return view{store: s}.SectionSubjects()
}
func (s *Store) Assignments() repositories.AssignmentRepository {
	return view{store: s}.Assignments()
}
func (s *Store) Enrollments() repositories.EnrollmentRepository {
	return view{store: s}.Enrollments()
}

// view binds repositories either to the live tables (tx == nil, one lock
// per call) or to a transaction's working copy (lock already held).
type view struct {
	store *Store
	tx    *tables
}

func (v view) read(fn func(t *tables) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.data)
}

// write applies fn to a copy outside transactions so that a failed call
// leaves no partial change behind.
func (v view) write(fn func(t *tables) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	work := v.store.data.clone()
	if err := fn(work); err != nil {
		return err
	}
	v.store.data = work
	return nil
}

func (v view) now() time.Time { return v.store.now().UTC() }

func (v view) Semesters() repositories.SemesterRepository             { return semesterRepo{v} }
func (v view) Subjects() repositories.SubjectRepository               { return subjectRepo{v} }
func (v view) Users() repositories.UserRepository                     { return userRepo{v} }
func (v view) Offerings() repositories.OfferingRepository             { return offeringRepo{v} }
func (v view) Sections() repositories.SectionRepository               { return sectionRepo{v} }
func (v view) SectionSubjects() repositories.SectionSubjectRepository { return sectionSubjectRepo{v} }
func (v view) Assignments() repositories.AssignmentRepository         { return assignmentRepo{v} }
func (v view) Enrollments() repositories.EnrollmentRepository         { return enrollmentRepo{v} }
