package apperrors

import "fmt"

// Stable error codes rendered to API clients.
const (
	CodeNotFound   = "RES_001"
	CodeConflict   = "RES_004"
	CodeValidation = "VAL_001"
	CodeForbidden  = "FORBIDDEN"

	CodeCodeExhausted         = "SCH_001"
	CodeDuplicateOffering     = "SCH_002"
	CodeHasActiveSections     = "SCH_003"
	CodeOfferingNotOpen       = "SCH_004"
	CodeAlreadyAttached       = "SCH_005"
	CodeHasEnrollments        = "SCH_006"
	CodeHasEnrolledStudents   = "SCH_007"
	CodeOfferingClosed        = "SCH_008"
	CodeAlreadyEnrolled       = "SCH_009"
	CodeSectionFull           = "SCH_010"
	CodeInvalidTransition     = "SCH_011"
	CodeSemesterAlreadyActive = "SCH_012"
	CodeCapacityBelowEnrolled = "SCH_013"
	CodeSectionInactive       = "SCH_014"
	CodeNotAttached           = "SCH_015"
	CodeRoleMismatch          = "SCH_016"
)

// Coded is implemented by errors that carry a stable client-facing code.
type Coded interface {
	error
	ErrorCode() string
}

// Blocking is implemented by errors caused by live dependents. The count is
// the number of dependents that blocked the operation.
type Blocking interface {
	error
	BlockingCount() int
}

// CodeExhaustedError means no free enrollment code was found within the attempt budget.
// It is transient: the caller may retry.
type CodeExhaustedError struct {
	Attempts int
}

func (e *CodeExhaustedError) Error() string {
	return fmt.Sprintf("could not allocate a unique enrollment code after %d attempts", e.Attempts)
}
func (e *CodeExhaustedError) Unwrap() error     { return ErrExhausted }
func (e *CodeExhaustedError) ErrorCode() string { return CodeCodeExhausted }

// DuplicateOfferingError means a non-cancelled offering already exists for the subject and semester.
type DuplicateOfferingError struct {
	SubjectID  int64
	SemesterID int64
}

func (e *DuplicateOfferingError) Error() string {
	return fmt.Sprintf("subject %d is already offered in semester %d", e.SubjectID, e.SemesterID)
}
func (e *DuplicateOfferingError) Unwrap() error     { return ErrConflict }
func (e *DuplicateOfferingError) ErrorCode() string { return CodeDuplicateOffering }

// HasActiveSectionsError blocks cancelling an offering still taught in active sections.
type HasActiveSectionsError struct {
	OfferingID int64
	Count      int
}

func (e *HasActiveSectionsError) Error() string {
	return fmt.Sprintf("cannot cancel offering: %d active section(s) reference it", e.Count)
}
func (e *HasActiveSectionsError) Unwrap() error      { return ErrConflict }
func (e *HasActiveSectionsError) ErrorCode() string  { return CodeHasActiveSections }
func (e *HasActiveSectionsError) BlockingCount() int { return e.Count }

// OfferingNotOpenError rejects attaching an offering that is closed or cancelled.
type OfferingNotOpenError struct {
	OfferingID int64
	Status     string
}

func (e *OfferingNotOpenError) Error() string {
	return fmt.Sprintf("offering %d is %s, only open offerings can be attached", e.OfferingID, e.Status)
}
func (e *OfferingNotOpenError) Unwrap() error     { return ErrConflict }
func (e *OfferingNotOpenError) ErrorCode() string { return CodeOfferingNotOpen }

// AlreadyAttachedError rejects attaching the same offering twice to one section.
type AlreadyAttachedError struct {
	SectionID  int64
	OfferingID int64
}

func (e *AlreadyAttachedError) Error() string {
	return fmt.Sprintf("offering %d is already attached to section %d", e.OfferingID, e.SectionID)
}
func (e *AlreadyAttachedError) Unwrap() error     { return ErrConflict }
func (e *AlreadyAttachedError) ErrorCode() string { return CodeAlreadyAttached }

// HasEnrollmentsError blocks detaching a section subject with enrolled students.
type HasEnrollmentsError struct {
	SectionSubjectID int64
	Count            int
}

func (e *HasEnrollmentsError) Error() string {
	return fmt.Sprintf("cannot detach subject: %d student(s) enrolled through it", e.Count)
}
func (e *HasEnrollmentsError) Unwrap() error      { return ErrConflict }
func (e *HasEnrollmentsError) ErrorCode() string  { return CodeHasEnrollments }
func (e *HasEnrollmentsError) BlockingCount() int { return e.Count }

// HasEnrolledStudentsError blocks deleting a section with enrolled students.
type HasEnrolledStudentsError struct {
	SectionID int64
	Count     int
}

func (e *HasEnrolledStudentsError) Error() string {
	return fmt.Sprintf("cannot delete section: %d student(s) enrolled", e.Count)
}
func (e *HasEnrolledStudentsError) Unwrap() error      { return ErrConflict }
func (e *HasEnrolledStudentsError) ErrorCode() string  { return CodeHasEnrolledStudents }
func (e *HasEnrolledStudentsError) BlockingCount() int { return e.Count }

// OfferingClosedError rejects enrollment into an offering that is not open.
type OfferingClosedError struct {
	OfferingID int64
	Status     string
}

func (e *OfferingClosedError) Error() string {
	return fmt.Sprintf("offering %d is %s and does not accept enrollments", e.OfferingID, e.Status)
}
func (e *OfferingClosedError) Unwrap() error     { return ErrConflict }
func (e *OfferingClosedError) ErrorCode() string { return CodeOfferingClosed }

// AlreadyEnrolledError rejects a second enrolled record for the same student and offering.
type AlreadyEnrolledError struct {
	StudentID  int64
	OfferingID int64
}

func (e *AlreadyEnrolledError) Error() string {
	return fmt.Sprintf("student %d is already enrolled in offering %d", e.StudentID, e.OfferingID)
}
func (e *AlreadyEnrolledError) Unwrap() error     { return ErrConflict }
func (e *AlreadyEnrolledError) ErrorCode() string { return CodeAlreadyEnrolled }

// SectionFullError rejects enrollment into a section with no free seats.
type SectionFullError struct {
	SectionID int64
	Capacity  int
}

func (e *SectionFullError) Error() string {
	return fmt.Sprintf("section %d is full (capacity %d)", e.SectionID, e.Capacity)
}
func (e *SectionFullError) Unwrap() error     { return ErrConflict }
func (e *SectionFullError) ErrorCode() string { return CodeSectionFull }

// InvalidTransitionError rejects a status change that has no edge in the status graph.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s status cannot change from %s to %s", e.Entity, e.From, e.To)
}
func (e *InvalidTransitionError) Unwrap() error     { return ErrValidationFailed }
func (e *InvalidTransitionError) ErrorCode() string { return CodeInvalidTransition }

// SemesterAlreadyActiveError rejects activating a second semester.
type SemesterAlreadyActiveError struct {
	ActiveID int64
}

func (e *SemesterAlreadyActiveError) Error() string {
	return fmt.Sprintf("semester %d is already active, deactivate it first", e.ActiveID)
}
func (e *SemesterAlreadyActiveError) Unwrap() error     { return ErrConflict }
func (e *SemesterAlreadyActiveError) ErrorCode() string { return CodeSemesterAlreadyActive }

// CapacityBelowEnrolledError rejects shrinking a section below its enrolled count.
type CapacityBelowEnrolledError struct {
	SectionID int64
	Requested int
	Enrolled  int
}

func (e *CapacityBelowEnrolledError) Error() string {
	return fmt.Sprintf("capacity %d is below the %d student(s) already enrolled", e.Requested, e.Enrolled)
}
func (e *CapacityBelowEnrolledError) Unwrap() error      { return ErrConflict }
func (e *CapacityBelowEnrolledError) ErrorCode() string  { return CodeCapacityBelowEnrolled }
func (e *CapacityBelowEnrolledError) BlockingCount() int { return e.Enrolled }

// SectionInactiveError rejects mutations that need an active section.
type SectionInactiveError struct {
	SectionID int64
}

func (e *SectionInactiveError) Error() string {
	return fmt.Sprintf("section %d is inactive", e.SectionID)
}
func (e *SectionInactiveError) Unwrap() error     { return ErrConflict }
func (e *SectionInactiveError) ErrorCode() string { return CodeSectionInactive }

// NotAttachedError rejects enrolling through a section that does not teach the offering.
type NotAttachedError struct {
	SectionID  int64
	OfferingID int64
}

func (e *NotAttachedError) Error() string {
	return fmt.Sprintf("offering %d is not taught in section %d", e.OfferingID, e.SectionID)
}
func (e *NotAttachedError) Unwrap() error     { return ErrValidationFailed }
func (e *NotAttachedError) ErrorCode() string { return CodeNotAttached }

// RoleMismatchError rejects a user whose role does not fit the operation.
type RoleMismatchError struct {
	UserID int64
	Want   string
	Got    string
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("user %d has role %s, expected %s", e.UserID, e.Got, e.Want)
}
func (e *RoleMismatchError) Unwrap() error     { return ErrValidationFailed }
func (e *RoleMismatchError) ErrorCode() string { return CodeRoleMismatch }
