package inmem

import (
	"context"
	"sort"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/repositories"
)

type semesterRepo struct{ v view }

func (r semesterRepo) Create(_ context.Context, s *models.Semester) error {
	return r.v.write(func(t *tables) error {
		s.ID = t.nextID()
		s.IsActive = false
		s.CreatedAt = r.v.now()
		s.UpdatedAt = s.CreatedAt
		t.semesters[s.ID] = *s
		return nil
	})
}

func (r semesterRepo) GetByID(_ context.Context, id int64) (*models.Semester, error) {
	var out *models.Semester
	err := r.v.read(func(t *tables) error {
		s, ok := t.semesters[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &s
		return nil
	})
	return out, err
}

func (r semesterRepo) GetActive(_ context.Context) (*models.Semester, error) {
	var out *models.Semester
	err := r.v.read(func(t *tables) error {
		for _, s := range t.semesters {
			if s.IsActive {
				out = &s
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return out, err
}

func (r semesterRepo) List(_ context.Context) ([]*models.Semester, error) {
	out := []*models.Semester{}
	err := r.v.read(func(t *tables) error {
		for _, s := range t.semesters {
			out = append(out, &s)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].AcademicYear != out[j].AcademicYear {
			return out[i].AcademicYear > out[j].AcademicYear
		}
		return out[i].Level > out[j].Level
	})
	return out, err
}

func (r semesterRepo) SetActive(_ context.Context, id int64, active bool) error {
	return r.v.write(func(t *tables) error {
		s, ok := t.semesters[id]
		if !ok {
			return repositories.ErrNotFound
		}
		if active {
			for _, other := range t.semesters {
				if other.IsActive && other.ID != id {
					return repositories.ErrActiveSemesterExists
				}
			}
		}
		s.IsActive = active
		s.UpdatedAt = r.v.now()
		t.semesters[id] = s
		return nil
	})
}

type subjectRepo struct{ v view }

func (r subjectRepo) Create(_ context.Context, s *models.Subject) error {
	return r.v.write(func(t *tables) error {
		s.ID = t.nextID()
		t.subjects[s.ID] = *s
		return nil
	})
}

func (r subjectRepo) GetByID(_ context.Context, id int64) (*models.Subject, error) {
	var out *models.Subject
	err := r.v.read(func(t *tables) error {
		s, ok := t.subjects[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &s
		return nil
	})
	return out, err
}

func (r subjectRepo) GetByCode(_ context.Context, code string) (*models.Subject, error) {
	var out *models.Subject
	err := r.v.read(func(t *tables) error {
		for _, s := range t.subjects {
			if s.Code == code {
				out = &s
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return out, err
}

type userRepo struct{ v view }

func (r userRepo) Create(_ context.Context, u *models.User) error {
	return r.v.write(func(t *tables) error {
		u.ID = t.nextID()
		u.CreatedAt = r.v.now()
		u.UpdatedAt = u.CreatedAt
		t.users[u.ID] = *u
		return nil
	})
}

func (r userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	var out *models.User
	err := r.v.read(func(t *tables) error {
		u, ok := t.users[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.v.read(func(t *tables) error {
		for _, u := range t.users {
			if u.Email == email {
				out = &u
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return out, err
}
