package models

import "time"

// EnrollmentStatus is the lifecycle status of a student's enrollment in an offering.
type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentDropped   EnrollmentStatus = "dropped"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// enrollmentTransitions is the directed status graph. There are no back-edges.
var enrollmentTransitions = map[EnrollmentStatus][]EnrollmentStatus{
	EnrollmentEnrolled: {EnrollmentDropped, EnrollmentCompleted},
}

// Valid reports whether s is a known enrollment status.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentEnrolled, EnrollmentDropped, EnrollmentCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether the graph has an edge from s to next.
func (s EnrollmentStatus) CanTransitionTo(next EnrollmentStatus) bool {
	for _, to := range enrollmentTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// Enrollment records a student's participation in an offering through a section.
type Enrollment struct {
	ID         int64            `json:"id" db:"id"`
	StudentID  int64            `json:"studentId" db:"student_id"`
	OfferingID int64            `json:"offeringId" db:"offering_id"`
	SectionID  *int64           `json:"sectionId,omitempty" db:"section_id"`
	Status     EnrollmentStatus `json:"status" db:"status"`
	EnrolledAt time.Time        `json:"enrolledAt" db:"enrolled_at"`
	UpdatedAt  time.Time        `json:"updatedAt" db:"updated_at"`
}

// EnrollmentDetails is an enrollment joined with student and subject labels.
type EnrollmentDetails struct {
	Enrollment
	StudentName   string  `json:"studentName" db:"student_name"`
	StudentNumber *string `json:"studentNumber,omitempty" db:"student_number"`
	SubjectCode   string  `json:"subjectCode" db:"subject_code"`
	SubjectName   string  `json:"subjectName" db:"subject_name"`
}
