package models

import "time"

// AssignmentStatus is the lifecycle flag of a faculty assignment.
type AssignmentStatus string

const (
	AssignmentActive   AssignmentStatus = "active"
	AssignmentInactive AssignmentStatus = "inactive"
)

// FacultyAssignment binds an instructor to an offering, optionally scoped to one section.
// (OfferingID, SectionID) is the natural key: re-assigning updates the row in place.
type FacultyAssignment struct {
	ID           int64            `json:"id" db:"id"`
	OfferingID   int64            `json:"offeringId" db:"offering_id"`
	InstructorID int64            `json:"instructorId" db:"instructor_id"`
	SectionID    *int64           `json:"sectionId,omitempty" db:"section_id"`
	Status       AssignmentStatus `json:"status" db:"status"`
	AssignedAt   time.Time        `json:"assignedAt" db:"assigned_at"`
	RemovedAt    *time.Time       `json:"removedAt,omitempty" db:"removed_at"`
	UpdatedAt    time.Time        `json:"updatedAt" db:"updated_at"`
}

// SectionScoped reports whether the assignment applies to a single section only.
func (a *FacultyAssignment) SectionScoped() bool {
	return a.SectionID != nil
}

// AssignmentDetails is an assignment joined with the instructor's name.
type AssignmentDetails struct {
	FacultyAssignment
	InstructorName  string `json:"instructorName" db:"instructor_name"`
	InstructorEmail string `json:"instructorEmail" db:"instructor_email"`
}

// InstructorRef is the instructor shown for an offering inside a section.
type InstructorRef struct {
	AssignmentID int64  `json:"assignmentId"`
	InstructorID int64  `json:"instructorId"`
	Name         string `json:"name"`
	Scope        string `json:"scope" example:"section"` // "section" or "offering"
}

// ResolveInstructor picks the instructor for offeringID as taught in sectionID.
// An active section-scoped assignment wins over an active offering-wide one.
// Among equally specific candidates the most recently assigned wins.
func ResolveInstructor(assignments []*AssignmentDetails, offeringID, sectionID int64) *InstructorRef {
	var sectionMatch, offeringMatch *AssignmentDetails
	for _, a := range assignments {
		if a.OfferingID != offeringID || a.Status != AssignmentActive {
			continue
		}
		if a.SectionID != nil {
			if *a.SectionID == sectionID && newer(a, sectionMatch) {
				sectionMatch = a
			}
			continue
		}
		if newer(a, offeringMatch) {
			offeringMatch = a
		}
	}

	switch {
	case sectionMatch != nil:
		return sectionMatch.ref("section")
	case offeringMatch != nil:
		return offeringMatch.ref("offering")
	}
	return nil
}

func newer(a, current *AssignmentDetails) bool {
	if current == nil {
		return true
	}
	if a.AssignedAt.Equal(current.AssignedAt) {
		return a.ID > current.ID
	}
	return a.AssignedAt.After(current.AssignedAt)
}

func (a *AssignmentDetails) ref(scope string) *InstructorRef {
	return &InstructorRef{
		AssignmentID: a.ID,
		InstructorID: a.InstructorID,
		Name:         a.InstructorName,
		Scope:        scope,
	}
}
