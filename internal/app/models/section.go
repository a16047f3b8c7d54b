package models

import "time"

// SectionStatus is the lifecycle flag of a section. Sections are never physically removed.
type SectionStatus string

const (
	SectionActive   SectionStatus = "active"
	SectionInactive SectionStatus = "inactive"
)

// Valid reports whether s is a known section status.
func (s SectionStatus) Valid() bool {
	return s == SectionActive || s == SectionInactive
}

// Section is a named class group with a bounded capacity and a unique enrollment code.
type Section struct {
	ID             int64         `json:"id" db:"id"`
	Name           string        `json:"name" db:"name"`
	EnrollmentCode string        `json:"enrollmentCode" db:"enrollment_code" example:"ABC-1234"`
	MaxCapacity    int           `json:"maxCapacity" db:"max_capacity"`
	Status         SectionStatus `json:"status" db:"status"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}

// SectionSubject binds a section to one offering with its own schedule and room.
type SectionSubject struct {
	ID         int64     `json:"id" db:"id"`
	SectionID  int64     `json:"sectionId" db:"section_id"`
	OfferingID int64     `json:"offeringId" db:"offering_id"`
	Schedule   string    `json:"schedule" db:"schedule" example:"MWF 8-9"`
	Room       string    `json:"room" db:"room" example:"R-201"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// SectionSubjectDetails is a section subject joined with its offering and subject labels
// and the instructor resolved for this slot.
type SectionSubjectDetails struct {
	SectionSubject
	SubjectID      int64          `json:"subjectId" db:"subject_id"`
	SubjectCode    string         `json:"subjectCode" db:"subject_code"`
	SubjectName    string         `json:"subjectName" db:"subject_name"`
	SemesterID     int64          `json:"semesterId" db:"semester_id"`
	OfferingStatus OfferingStatus `json:"offeringStatus" db:"offering_status"`
	Instructor     *InstructorRef `json:"instructor,omitempty"`
}

// SectionDetails is the denormalized listing row: a section with its subjects and live seat count.
type SectionDetails struct {
	Section
	EnrolledCount int                      `json:"enrolledCount"`
	Available     int                      `json:"available"`
	Subjects      []*SectionSubjectDetails `json:"subjects"`
}

// FreeSeats returns the free seats given the enrolled count, never negative.
func (s *Section) FreeSeats(enrolled int) int {
	if free := s.MaxCapacity - enrolled; free > 0 {
		return free
	}
	return 0
}
