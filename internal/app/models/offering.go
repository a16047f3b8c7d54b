package models

import "time"

// OfferingStatus gates whether sections and enrollments may be created against an offering.
type OfferingStatus string

const (
	OfferingOpen      OfferingStatus = "open"
	OfferingClosed    OfferingStatus = "closed"
	OfferingCancelled OfferingStatus = "cancelled"
)

// Valid reports whether s is a known offering status.
func (s OfferingStatus) Valid() bool {
	switch s {
	case OfferingOpen, OfferingClosed, OfferingCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an offering in status s may move to next.
// open and closed toggle freely; cancelled is terminal.
func (s OfferingStatus) CanTransitionTo(next OfferingStatus) bool {
	if !next.Valid() || s == OfferingCancelled {
		return false
	}
	return s != next
}

// Offering is a Subject scheduled within a Semester.
type Offering struct {
	ID         int64          `json:"id" db:"id"`
	SubjectID  int64          `json:"subjectId" db:"subject_id"`
	SemesterID int64          `json:"semesterId" db:"semester_id"`
	Status     OfferingStatus `json:"status" db:"status"`
	CreatedAt  time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time      `json:"updatedAt" db:"updated_at"`
}

// OfferingDetails is an offering joined with its subject and semester labels.
type OfferingDetails struct {
	Offering
	SubjectCode  string `json:"subjectCode" db:"subject_code"`
	SubjectName  string `json:"subjectName" db:"subject_name"`
	SemesterName string `json:"semesterName" db:"semester_name"`
	AcademicYear string `json:"academicYear" db:"academic_year"`
}
