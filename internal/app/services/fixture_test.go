package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yigit/campus/internal/app/codegen"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/repositories/inmem"
)

type recordingSeats struct {
	mu      sync.Mutex
	updates []dto.SeatUpdate
}

func (r *recordingSeats) PublishSeats(u dto.SeatUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recordingSeats) last() dto.SeatUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.updates) == 0 {
		return dto.SeatUpdate{}
	}
	return r.updates[len(r.updates)-1]
}

type fixture struct {
	ctx   context.Context
	store *inmem.Store
	seats *recordingSeats

	semesters   SemesterService
	offerings   OfferingService
	sections    SectionService
	assignments AssignmentService
	enrollments EnrollmentService

	semester *models.Semester
	users    int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := inmem.NewStore()
	seats := &recordingSeats{}
	f := &fixture{
		ctx:         context.Background(),
		store:       store,
		seats:       seats,
		semesters:   NewSemesterService(store),
		offerings:   NewOfferingService(store),
		sections:    NewSectionService(store, codegen.NewWithSource(codegen.DefaultAttempts, rand.NewPCG(7, 11)), seats),
		assignments: NewAssignmentService(store),
		enrollments: NewEnrollmentService(store, seats, 5),
	}

	var err error
	f.semester, err = f.semesters.CreateSemester(f.ctx, "First Semester", "2025-2026", 1)
	require.NoError(t, err)
	return f
}

func (f *fixture) user(t *testing.T, role models.RoleType) *models.User {
	t.Helper()
	f.users++
	u := &models.User{
		Email:     fmt.Sprintf("user%d@school.edu", f.users),
		FirstName: "User",
		LastName:  fmt.Sprint(f.users),
		RoleType:  role,
		IsActive:  true,
	}
	require.NoError(t, f.store.Users().Create(f.ctx, u))
	return u
}

func (f *fixture) students(t *testing.T, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for range n {
		ids = append(ids, f.user(t, models.RoleStudent).ID)
	}
	return ids
}

func (f *fixture) offering(t *testing.T, code string) *models.OfferingDetails {
	t.Helper()
	subject := &models.Subject{Code: code, Name: code + " course", Units: 3}
	require.NoError(t, f.store.Subjects().Create(f.ctx, subject))
	offering, err := f.offerings.CreateOffering(f.ctx, subject.ID, f.semester.ID)
	require.NoError(t, err)
	return offering
}

// section creates an active section teaching offeringID.
func (f *fixture) section(t *testing.T, capacity int, offeringID int64) *models.SectionDetails {
	t.Helper()
	section, err := f.sections.CreateSection(f.ctx, dto.CreateSectionRequest{
		Name:        fmt.Sprintf("Section %d", offeringID),
		MaxCapacity: capacity,
		OfferingID:  &offeringID,
		Schedule:    "MWF 8-9",
		Room:        "R-201",
	})
	require.NoError(t, err)
	return section
}

func (f *fixture) enroll(t *testing.T, studentID, offeringID, sectionID int64) *models.Enrollment {
	t.Helper()
	e, err := f.enrollments.Enroll(f.ctx, dto.EnrollRequest{StudentID: studentID, OfferingID: offeringID, SectionID: sectionID})
	require.NoError(t, err)
	return e
}
