package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/yigit/campus/internal/app/models"
)

// Repository level errors. Implementations translate store-specific failures
// (constraint violations, missing rows) into these.
var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateCode        = errors.New("enrollment code already taken")
	ErrDuplicateOffering    = errors.New("offering already exists for subject and semester")
	ErrAlreadyAttached      = errors.New("offering already attached to section")
	ErrAlreadyEnrolled      = errors.New("student already enrolled in offering")
	ErrDuplicateAssignment  = errors.New("assignment already exists for offering and section")
	ErrActiveSemesterExists = errors.New("another semester is already active")
)

// OfferingFilter narrows offering listings.
type OfferingFilter struct {
	SemesterID *int64
	SubjectID  *int64
	Status     *models.OfferingStatus
}

// SectionFilter narrows section listings. Page is 1-based; Size 0 means no paging.
type SectionFilter struct {
	SemesterID *int64
	Status     *models.SectionStatus
	Search     string
	Page       int
	Size       int
}

// SemesterRepository persists semesters.
type SemesterRepository interface {
	Create(ctx context.Context, semester *models.Semester) error
	GetByID(ctx context.Context, id int64) (*models.Semester, error)
	GetActive(ctx context.Context) (*models.Semester, error)
	List(ctx context.Context) ([]*models.Semester, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// SubjectRepository reads the subject catalog.
type SubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id int64) (*models.Subject, error)
	GetByCode(ctx context.Context, code string) (*models.Subject, error)
}

// UserRepository reads users for role checks.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// OfferingRepository persists offerings.
type OfferingRepository interface {
	Create(ctx context.Context, offering *models.Offering) error
	GetByID(ctx context.Context, id int64) (*models.Offering, error)
	// GetByIDForUpdate locks the offering row until the transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Offering, error)
	GetDetails(ctx context.Context, id int64) (*models.OfferingDetails, error)
	List(ctx context.Context, filter OfferingFilter) ([]*models.OfferingDetails, error)
	ListAvailableForSection(ctx context.Context, sectionID, semesterID int64) ([]*models.OfferingDetails, error)
	UpdateStatus(ctx context.Context, id int64, status models.OfferingStatus) error
}

// SectionRepository persists sections.
type SectionRepository interface {
	// Create inserts the section. It returns ErrDuplicateCode when the
	// enrollment code is taken, without aborting an enclosing transaction.
	Create(ctx context.Context, section *models.Section) error
	CodeExists(ctx context.Context, code string) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Section, error)
	// GetByIDForUpdate reads the section and locks its row until the
	// enclosing transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Section, error)
	GetByCode(ctx context.Context, code string) (*models.Section, error)
	List(ctx context.Context, filter SectionFilter) ([]*models.Section, int64, error)
	Update(ctx context.Context, section *models.Section) error
	CountActiveByOffering(ctx context.Context, offeringID int64) (int, error)
}

// SectionSubjectRepository persists the section/offering join rows.
type SectionSubjectRepository interface {
	Create(ctx context.Context, ss *models.SectionSubject) error
	GetByID(ctx context.Context, id int64) (*models.SectionSubject, error)
	Find(ctx context.Context, sectionID, offeringID int64) (*models.SectionSubject, error)
	ListBySections(ctx context.Context, sectionIDs []int64) ([]*models.SectionSubjectDetails, error)
	Delete(ctx context.Context, id int64) error
}

// AssignmentRepository persists faculty assignments.
type AssignmentRepository interface {
	// UpdateByNaturalKey rewrites the row matching (OfferingID, SectionID),
	// filling ID and AssignedAt. It reports false when no row matched.
	UpdateByNaturalKey(ctx context.Context, a *models.FacultyAssignment) (bool, error)
	// Insert returns ErrDuplicateAssignment when a row for the natural key already exists.
	Insert(ctx context.Context, a *models.FacultyAssignment) error
	GetByID(ctx context.Context, id int64) (*models.FacultyAssignment, error)
	Deactivate(ctx context.Context, id int64, at time.Time) error
	ListByOffering(ctx context.Context, offeringID int64) ([]*models.AssignmentDetails, error)
	ListActiveByOfferings(ctx context.Context, offeringIDs []int64) ([]*models.AssignmentDetails, error)
}

// EnrollmentRepository persists enrollments.
type EnrollmentRepository interface {
	// Create returns ErrAlreadyEnrolled when an enrolled record already
	// exists for the student and offering.
	Create(ctx context.Context, e *models.Enrollment) error
	GetByID(ctx context.Context, id int64) (*models.Enrollment, error)
	HasEnrolled(ctx context.Context, studentID, offeringID int64) (bool, error)
	// CountEnrolled counts enrolled records referencing the section. It is
	// the occupancy measured against the section capacity.
	CountEnrolled(ctx context.Context, sectionID int64) (int, error)
	CountEnrolledBySections(ctx context.Context, sectionIDs []int64) (map[int64]int, error)
	// CountEnrolledStudents counts distinct students holding at least one
	// enrolled record in the section.
	CountEnrolledStudents(ctx context.Context, sectionID int64) (int, error)
	CountEnrolledInSlot(ctx context.Context, sectionID, offeringID int64) (int, error)
	UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error
	Delete(ctx context.Context, id int64) error
	ListBySection(ctx context.Context, sectionID int64) ([]*models.EnrollmentDetails, error)
}

// Repos groups the repositories sharing one connection or transaction.
type Repos interface {
	Semesters() SemesterRepository
	Subjects() SubjectRepository
	Users() UserRepository
	Offerings() OfferingRepository
	Sections() SectionRepository
	SectionSubjects() SectionSubjectRepository
	Assignments() AssignmentRepository
	Enrollments() EnrollmentRepository
}

// TxFunc runs inside a transaction. Returning an error rolls it back.
type TxFunc func(ctx context.Context, tx Repos) error

// Store is the entry point of the data layer.
type Store interface {
	Repos
	// WithinTx runs fn in one read-committed transaction.
	WithinTx(ctx context.Context, fn TxFunc) error
}
