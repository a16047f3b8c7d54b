package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/helpers"
)

type offeringRepo struct{ v view }

func offeringDetails(t *tables, o models.Offering) *models.OfferingDetails {
	d := &models.OfferingDetails{Offering: o}
	if s, ok := t.subjects[o.SubjectID]; ok {
		d.SubjectCode, d.SubjectName = s.Code, s.Name
	}
	if sm, ok := t.semesters[o.SemesterID]; ok {
		d.SemesterName, d.AcademicYear = sm.Name, sm.AcademicYear
	}
	return d
}

func sortOfferings(out []*models.OfferingDetails) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubjectCode != out[j].SubjectCode {
			return out[i].SubjectCode < out[j].SubjectCode
		}
		return out[i].ID < out[j].ID
	})
}

func (r offeringRepo) Create(_ context.Context, o *models.Offering) error {
	return r.v.write(func(t *tables) error {
		for _, other := range t.offerings {
			if other.SubjectID == o.SubjectID && other.SemesterID == o.SemesterID &&
				other.Status != models.OfferingCancelled {
				return repositories.ErrDuplicateOffering
			}
		}
		o.ID = t.nextID()
		o.CreatedAt = r.v.now()
		o.UpdatedAt = o.CreatedAt
		t.offerings[o.ID] = *o
		return nil
	})
}

func (r offeringRepo) GetByID(_ context.Context, id int64) (*models.Offering, error) {
	var out *models.Offering
	err := r.v.read(func(t *tables) error {
		o, ok := t.offerings[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &o
		return nil
	})
	return out, err
}

func (r offeringRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Offering, error) {
	return r.GetByID(ctx, id)
}

func (r offeringRepo) GetDetails(_ context.Context, id int64) (*models.OfferingDetails, error) {
	var out *models.OfferingDetails
	err := r.v.read(func(t *tables) error {
		o, ok := t.offerings[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = offeringDetails(t, o)
		return nil
	})
	return out, err
}

func (r offeringRepo) List(_ context.Context, f repositories.OfferingFilter) ([]*models.OfferingDetails, error) {
	out := []*models.OfferingDetails{}
	err := r.v.read(func(t *tables) error {
		for _, o := range t.offerings {
			if f.SemesterID != nil && o.SemesterID != *f.SemesterID {
				continue
			}
			if f.SubjectID != nil && o.SubjectID != *f.SubjectID {
				continue
			}
			if f.Status != nil && o.Status != *f.Status {
				continue
			}
			out = append(out, offeringDetails(t, o))
		}
		return nil
	})
	sortOfferings(out)
	return out, err
}

func (r offeringRepo) ListAvailableForSection(_ context.Context, sectionID, semesterID int64) ([]*models.OfferingDetails, error) {
	out := []*models.OfferingDetails{}
	err := r.v.read(func(t *tables) error {
		attached := map[int64]bool{}
		for _, ss := range t.sectionSubjects {
			if ss.SectionID == sectionID {
				attached[ss.OfferingID] = true
			}
		}
		for _, o := range t.offerings {
			if o.SemesterID == semesterID && o.Status == models.OfferingOpen && !attached[o.ID] {
				out = append(out, offeringDetails(t, o))
			}
		}
		return nil
	})
	sortOfferings(out)
	return out, err
}

func (r offeringRepo) UpdateStatus(_ context.Context, id int64, status models.OfferingStatus) error {
	return r.v.write(func(t *tables) error {
		o, ok := t.offerings[id]
		if !ok {
			return repositories.ErrNotFound
		}
		if status != models.OfferingCancelled {
			for _, other := range t.offerings {
				if other.ID != id && other.SubjectID == o.SubjectID && other.SemesterID == o.SemesterID &&
					other.Status != models.OfferingCancelled {
					return repositories.ErrDuplicateOffering
				}
			}
		}
		o.Status = status
		o.UpdatedAt = r.v.now()
		t.offerings[id] = o
		return nil
	})
}

type sectionRepo struct{ v view }

func (r sectionRepo) Create(_ context.Context, s *models.Section) error {
	return r.v.write(func(t *tables) error {
		for _, other := range t.sections {
			if other.EnrollmentCode == s.EnrollmentCode {
				return repositories.ErrDuplicateCode
			}
		}
		s.ID = t.nextID()
		s.CreatedAt = r.v.now()
		s.UpdatedAt = s.CreatedAt
		t.sections[s.ID] = *s
		return nil
	})
}

func (r sectionRepo) CodeExists(_ context.Context, code string) (bool, error) {
	var exists bool
	err := r.v.read(func(t *tables) error {
		for _, s := range t.sections {
			if s.EnrollmentCode == code {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r sectionRepo) get(match func(models.Section) bool) (*models.Section, error) {
	var out *models.Section
	err := r.v.read(func(t *tables) error {
		for _, s := range t.sections {
			if match(s) {
				out = &s
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return out, err
}

func (r sectionRepo) GetByID(_ context.Context, id int64) (*models.Section, error) {
	return r.get(func(s models.Section) bool { return s.ID == id })
}

// GetByIDForUpdate needs no row lock: transactions already hold the store lock.
func (r sectionRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Section, error) {
	return r.GetByID(ctx, id)
}

func (r sectionRepo) GetByCode(_ context.Context, code string) (*models.Section, error) {
	return r.get(func(s models.Section) bool { return s.EnrollmentCode == code })
}

func (r sectionRepo) List(_ context.Context, f repositories.SectionFilter) ([]*models.Section, int64, error) {
	out := []*models.Section{}
	err := r.v.read(func(t *tables) error {
		inSemester := map[int64]bool{}
		if f.SemesterID != nil {
			for _, ss := range t.sectionSubjects {
				if o, ok := t.offerings[ss.OfferingID]; ok && o.SemesterID == *f.SemesterID {
					inSemester[ss.SectionID] = true
				}
			}
		}
		search := strings.ToLower(f.Search)
		for _, s := range t.sections {
			if f.SemesterID != nil && !inSemester[s.ID] {
				continue
			}
			if f.Status != nil && s.Status != *f.Status {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(s.Name), search) &&
				!strings.Contains(strings.ToLower(s.EnrollmentCode), search) {
				continue
			}
			out = append(out, &s)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	total := int64(len(out))
	if f.Size > 0 {
		start, end := helpers.CalculateSliceIndices(f.Page, f.Size, len(out))
		out = out[start:end]
	}
	return out, total, nil
}

func (r sectionRepo) Update(_ context.Context, s *models.Section) error {
	return r.v.write(func(t *tables) error {
		cur, ok := t.sections[s.ID]
		if !ok {
			return repositories.ErrNotFound
		}
		cur.Name, cur.MaxCapacity, cur.Status = s.Name, s.MaxCapacity, s.Status
		cur.UpdatedAt = r.v.now()
		t.sections[s.ID] = cur
		s.UpdatedAt = cur.UpdatedAt
		return nil
	})
}

func (r sectionRepo) CountActiveByOffering(_ context.Context, offeringID int64) (int, error) {
	var n int
	err := r.v.read(func(t *tables) error {
		seen := map[int64]bool{}
		for _, ss := range t.sectionSubjects {
			if ss.OfferingID != offeringID || seen[ss.SectionID] {
				continue
			}
			if s, ok := t.sections[ss.SectionID]; ok && s.Status == models.SectionActive {
				seen[ss.SectionID] = true
				n++
			}
		}
		return nil
	})
	return n, err
}

type sectionSubjectRepo struct{ v view }

func (r sectionSubjectRepo) Create(_ context.Context, ss *models.SectionSubject) error {
	return r.v.write(func(t *tables) error {
		for _, other := range t.sectionSubjects {
			if other.SectionID == ss.SectionID && other.OfferingID == ss.OfferingID {
				return repositories.ErrAlreadyAttached
			}
		}
		ss.ID = t.nextID()
		ss.CreatedAt = r.v.now()
		t.sectionSubjects[ss.ID] = *ss
		return nil
	})
}

func (r sectionSubjectRepo) GetByID(_ context.Context, id int64) (*models.SectionSubject, error) {
	var out *models.SectionSubject
	err := r.v.read(func(t *tables) error {
		ss, ok := t.sectionSubjects[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &ss
		return nil
	})
	return out, err
}

func (r sectionSubjectRepo) Find(_ context.Context, sectionID, offeringID int64) (*models.SectionSubject, error) {
	var out *models.SectionSubject
	err := r.v.read(func(t *tables) error {
		for _, ss := range t.sectionSubjects {
			if ss.SectionID == sectionID && ss.OfferingID == offeringID {
				out = &ss
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return out, err
}

func (r sectionSubjectRepo) ListBySections(_ context.Context, sectionIDs []int64) ([]*models.SectionSubjectDetails, error) {
	want := make(map[int64]bool, len(sectionIDs))
	for _, id := range sectionIDs {
		want[id] = true
	}
	out := []*models.SectionSubjectDetails{}
	err := r.v.read(func(t *tables) error {
		for _, ss := range t.sectionSubjects {
			if !want[ss.SectionID] {
				continue
			}
			d := &models.SectionSubjectDetails{SectionSubject: ss}
			if o, ok := t.offerings[ss.OfferingID]; ok {
				d.SemesterID, d.OfferingStatus, d.SubjectID = o.SemesterID, o.Status, o.SubjectID
				if s, ok := t.subjects[o.SubjectID]; ok {
					d.SubjectCode, d.SubjectName = s.Code, s.Name
				}
			}
			out = append(out, d)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].SectionID != out[j].SectionID {
			return out[i].SectionID < out[j].SectionID
		}
		return out[i].SubjectCode < out[j].SubjectCode
	})
	return out, err
}

func (r sectionSubjectRepo) Delete(_ context.Context, id int64) error {
	return r.v.write(func(t *tables) error {
		if _, ok := t.sectionSubjects[id]; !ok {
			return repositories.ErrNotFound
		}
		delete(t.sectionSubjects, id)
		return nil
	})
}
