package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/repositories"
)

func sameSection(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type assignmentRepo struct{ v view }

func (r assignmentRepo) UpdateByNaturalKey(_ context.Context, a *models.FacultyAssignment) (bool, error) {
	var found bool
	err := r.v.write(func(t *tables) error {
		for id, cur := range t.assignments {
			if cur.OfferingID != a.OfferingID || !sameSection(cur.SectionID, a.SectionID) {
				continue
			}
			now := r.v.now()
			cur.InstructorID = a.InstructorID
			cur.Status = models.AssignmentActive
			cur.AssignedAt, cur.UpdatedAt, cur.RemovedAt = now, now, nil
			t.assignments[id] = cur
			*a = cur
			found = true
			return nil
		}
		return nil
	})
	return found, err
}

func (r assignmentRepo) Insert(_ context.Context, a *models.FacultyAssignment) error {
	return r.v.write(func(t *tables) error {
		for _, cur := range t.assignments {
			if cur.OfferingID == a.OfferingID && sameSection(cur.SectionID, a.SectionID) {
				return repositories.ErrDuplicateAssignment
			}
		}
		now := r.v.now()
		a.ID = t.nextID()
		a.Status = models.AssignmentActive
		a.AssignedAt, a.UpdatedAt, a.RemovedAt = now, now, nil
		t.assignments[a.ID] = *a
		return nil
	})
}

func (r assignmentRepo) GetByID(_ context.Context, id int64) (*models.FacultyAssignment, error) {
	var out *models.FacultyAssignment
	err := r.v.read(func(t *tables) error {
		a, ok := t.assignments[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r assignmentRepo) Deactivate(_ context.Context, id int64, at time.Time) error {
	return r.v.write(func(t *tables) error {
		a, ok := t.assignments[id]
		if !ok {
			return repositories.ErrNotFound
		}
		a.Status = models.AssignmentInactive
		a.RemovedAt = &at
		a.UpdatedAt = r.v.now()
		t.assignments[id] = a
		return nil
	})
}

func (r assignmentRepo) list(match func(models.FacultyAssignment) bool) ([]*models.AssignmentDetails, error) {
	out := []*models.AssignmentDetails{}
	err := r.v.read(func(t *tables) error {
		for _, a := range t.assignments {
			if !match(a) {
				continue
			}
			d := &models.AssignmentDetails{FacultyAssignment: a}
			if u, ok := t.users[a.InstructorID]; ok {
				d.InstructorName, d.InstructorEmail = u.FullName(), u.Email
			}
			out = append(out, d)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AssignedAt.Equal(out[j].AssignedAt) {
			return out[i].AssignedAt.After(out[j].AssignedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func (r assignmentRepo) ListByOffering(_ context.Context, offeringID int64) ([]*models.AssignmentDetails, error) {
	return r.list(func(a models.FacultyAssignment) bool { return a.OfferingID == offeringID })
}

func (r assignmentRepo) ListActiveByOfferings(_ context.Context, offeringIDs []int64) ([]*models.AssignmentDetails, error) {
	want := make(map[int64]bool, len(offeringIDs))
	for _, id := range offeringIDs {
		want[id] = true
	}
	return r.list(func(a models.FacultyAssignment) bool {
		return want[a.OfferingID] && a.Status == models.AssignmentActive
	})
}

type enrollmentRepo struct{ v view }

func enrolledIn(t *tables, studentID, offeringID int64, except int64) bool {
	for _, e := range t.enrollments {
		if e.ID != except && e.StudentID == studentID && e.OfferingID == offeringID &&
			e.Status == models.EnrollmentEnrolled {
			return true
		}
	}
	return false
}

func (r enrollmentRepo) Create(_ context.Context, e *models.Enrollment) error {
	return r.v.write(func(t *tables) error {
		if e.Status == models.EnrollmentEnrolled && enrolledIn(t, e.StudentID, e.OfferingID, 0) {
			return repositories.ErrAlreadyEnrolled
		}
		e.ID = t.nextID()
		e.EnrolledAt = r.v.now()
		e.UpdatedAt = e.EnrolledAt
		t.enrollments[e.ID] = *e
		return nil
	})
}

func (r enrollmentRepo) GetByID(_ context.Context, id int64) (*models.Enrollment, error) {
	var out *models.Enrollment
	err := r.v.read(func(t *tables) error {
		e, ok := t.enrollments[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &e
		return nil
	})
	return out, err
}

func (r enrollmentRepo) HasEnrolled(_ context.Context, studentID, offeringID int64) (bool, error) {
	var ok bool
	err := r.v.read(func(t *tables) error {
		ok = enrolledIn(t, studentID, offeringID, 0)
		return nil
	})
	return ok, err
}

func countStudents(t *tables, sectionID int64) int {
	students := map[int64]bool{}
	for _, e := range t.enrollments {
		if e.SectionID != nil && *e.SectionID == sectionID && e.Status == models.EnrollmentEnrolled {
			students[e.StudentID] = true
		}
	}
	return len(students)
}

func (r enrollmentRepo) CountEnrolledStudents(_ context.Context, sectionID int64) (int, error) {
	var n int
	err := r.v.read(func(t *tables) error {
		n = countStudents(t, sectionID)
		return nil
	})
	return n, err
}

func countRecords(t *tables, sectionID int64) int {
	n := 0
	for _, e := range t.enrollments {
		if e.SectionID != nil && *e.SectionID == sectionID && e.Status == models.EnrollmentEnrolled {
			n++
		}
	}
	return n
}

func (r enrollmentRepo) CountEnrolled(_ context.Context, sectionID int64) (int, error) {
	var n int
	err := r.v.read(func(t *tables) error {
		n = countRecords(t, sectionID)
		return nil
	})
	return n, err
}

func (r enrollmentRepo) CountEnrolledBySections(_ context.Context, sectionIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(sectionIDs))
	err := r.v.read(func(t *tables) error {
		for _, id := range sectionIDs {
			if n := countRecords(t, id); n > 0 {
				counts[id] = n
			}
		}
		return nil
	})
	return counts, err
}

func (r enrollmentRepo) CountEnrolledInSlot(_ context.Context, sectionID, offeringID int64) (int, error) {
	var n int
	err := r.v.read(func(t *tables) error {
		for _, e := range t.enrollments {
			if e.SectionID != nil && *e.SectionID == sectionID && e.OfferingID == offeringID &&
				e.Status == models.EnrollmentEnrolled {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r enrollmentRepo) UpdateStatus(_ context.Context, id int64, status models.EnrollmentStatus) error {
	return r.v.write(func(t *tables) error {
		e, ok := t.enrollments[id]
		if !ok {
			return repositories.ErrNotFound
		}
		if status == models.EnrollmentEnrolled && enrolledIn(t, e.StudentID, e.OfferingID, id) {
			return repositories.ErrAlreadyEnrolled
		}
		e.Status = status
		e.UpdatedAt = r.v.now()
		t.enrollments[id] = e
		return nil
	})
}

func (r enrollmentRepo) Delete(_ context.Context, id int64) error {
	return r.v.write(func(t *tables) error {
		if _, ok := t.enrollments[id]; !ok {
			return repositories.ErrNotFound
		}
		delete(t.enrollments, id)
		return nil
	})
}

func (r enrollmentRepo) ListBySection(_ context.Context, sectionID int64) ([]*models.EnrollmentDetails, error) {
	out := []*models.EnrollmentDetails{}
	err := r.v.read(func(t *tables) error {
		for _, e := range t.enrollments {
			if e.SectionID == nil || *e.SectionID != sectionID {
				continue
			}
			d := &models.EnrollmentDetails{Enrollment: e}
			if u, ok := t.users[e.StudentID]; ok {
				d.StudentName, d.StudentNumber = u.FullName(), u.StudentNumber
			}
			if o, ok := t.offerings[e.OfferingID]; ok {
				if s, ok := t.subjects[o.SubjectID]; ok {
					d.SubjectCode, d.SubjectName = s.Code, s.Name
				}
			}
			out = append(out, d)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EnrolledAt.Equal(out[j].EnrolledAt) {
			return out[i].EnrolledAt.After(out[j].EnrolledAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}
