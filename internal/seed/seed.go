// Package seed creates the demo catalog: staff, instructors, students,
// subjects and one active semester. It is idempotent.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/auth"
)

// Options controls the demo accounts.
type Options struct {
	Password   string
	BcryptCost int
}

type demoUser struct {
	email, first, last string
	role               models.RoleType
	number             string
}

var demoUsers = []demoUser{
	{"registrar@school.edu", "Rita", "Registrar", models.RoleStaff, "E-0001"},
	{"ada@school.edu", "Ada", "Lovelace", models.RoleInstructor, "E-1001"},
	{"alan@school.edu", "Alan", "Turing", models.RoleInstructor, "E-1002"},
	{"student1@school.edu", "Sam", "Student", models.RoleStudent, "2025-0001"},
	{"student2@school.edu", "Kim", "Student", models.RoleStudent, "2025-0002"},
	{"student3@school.edu", "Lee", "Student", models.RoleStudent, "2025-0003"},
}

var demoSubjects = []models.Subject{
	{Code: "CS101", Name: "Introduction to Computing", Units: 3},
	{Code: "MATH101", Name: "Calculus I", Units: 4},
	{Code: "PHYS101", Name: "General Physics", Units: 4},
}

// CreateDefaultData inserts whatever part of the demo data is missing.
func CreateDefaultData(ctx context.Context, store repositories.Store, opts Options, lgr zerolog.Logger) error {
	if opts.Password == "" {
		return errors.New("seed password is required")
	}
	hash, err := auth.HashPassword(opts.Password, opts.BcryptCost)
	if err != nil {
		return err
	}

	var finalErr error
	created := 0
	for _, u := range demoUsers {
		ok, err := ensureUser(ctx, store, u, hash)
		if err != nil {
			lgr.Error().Err(err).Str("email", u.email).Msg("Error creating demo user")
			finalErr = errors.Join(finalErr, err)
		}
		if ok {
			created++
		}
	}

	for _, s := range demoSubjects {
		_, err := store.Subjects().GetByCode(ctx, s.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			finalErr = errors.Join(finalErr, err)
			continue
		}
		subject := s
		if err := store.Subjects().Create(ctx, &subject); err != nil {
			lgr.Error().Err(err).Str("code", s.Code).Msg("Error creating demo subject")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		created++
	}

	if err := ensureSemester(ctx, store); err != nil {
		lgr.Error().Err(err).Msg("Error creating demo semester")
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Int("created", created).Msg("Default data checked")
	return finalErr
}

func ensureUser(ctx context.Context, store repositories.Store, u demoUser, hash string) (bool, error) {
	_, err := store.Users().GetByEmail(ctx, u.email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return false, err
	}

	number := u.number
	user := &models.User{
		Email:     u.email,
		Password:  hash,
		FirstName: u.first,
		LastName:  u.last,
		RoleType:  u.role,
		IsActive:  true,
	}
	if u.role == models.RoleStudent {
		user.StudentNumber = &number
	} else {
		user.EmployeeNumber = &number
	}
	if err := store.Users().Create(ctx, user); err != nil {
		return false, fmt.Errorf("create %s: %w", u.email, err)
	}
	return true, nil
}

func ensureSemester(ctx context.Context, store repositories.Store) error {
	semesters, err := store.Semesters().List(ctx)
	if err != nil || len(semesters) > 0 {
		return err
	}
	return store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
		semester := &models.Semester{Name: "First Semester", AcademicYear: "2025-2026", Level: 1}
		if err := tx.Semesters().Create(ctx, semester); err != nil {
			return err
		}
		return tx.Semesters().SetActive(ctx, semester.ID, true)
	})
}
