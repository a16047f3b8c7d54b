package codegen

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/app/repositories/inmem"
	"github.com/yigit/campus/internal/pkg/apperrors"
)

type stubChecker struct {
	taken map[string]bool
	calls int
}

func (s *stubChecker) CodeExists(_ context.Context, code string) (bool, error) {
	s.calls++
	return s.taken[code], nil
}

type alwaysTaken struct{}

func (alwaysTaken) CodeExists(context.Context, string) (bool, error) { return true, nil }

func TestValid(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"ABC-1234", true},
		{"XYZ-0000", true},
		{"ABI-1234", false},
		{"LMN-1234", false},
		{"OPQ-1234", false},
		{"abc-1234", false},
		{"ABC1234", false},
		{"ABC-123", false},
		{"ABCD-1234", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.code))
		})
	}
}

func TestCandidateShape(t *testing.T) {
	g := NewWithSource(DefaultAttempts, rand.NewPCG(1, 2))
	for range 1000 {
		code := g.Candidate()
		require.True(t, Valid(code), code)
		assert.False(t, strings.ContainsAny(code[:3], "ILO"), code)
	}
}

func TestAllocateRetriesOnTakenCode(t *testing.T) {
	first := NewWithSource(DefaultAttempts, rand.NewPCG(7, 7)).Candidate()
	check := &stubChecker{taken: map[string]bool{first: true}}
	g := NewWithSource(DefaultAttempts, rand.NewPCG(7, 7))

	var persisted string
	code, err := g.Allocate(context.Background(), check, func(_ context.Context, c string) error {
		persisted = c
		return nil
	})
	require.NoError(t, err)
	assert.NotEqual(t, first, code)
	assert.Equal(t, code, persisted)
	assert.Equal(t, 2, check.calls)
}

func TestAllocateRetriesOnInsertConflict(t *testing.T) {
	g := NewWithSource(DefaultAttempts, rand.NewPCG(3, 4))
	inserts := 0
	code, err := g.Allocate(context.Background(), &stubChecker{}, func(context.Context, string) error {
		inserts++
		if inserts < 3 {
			return repositories.ErrDuplicateCode
		}
		return nil
	})
	require.NoError(t, err)
	assert.True(t, Valid(code))
	assert.Equal(t, 3, inserts)
}

func TestAllocateExhausted(t *testing.T) {
	g := NewWithSource(4, rand.NewPCG(1, 1))
	_, err := g.Allocate(context.Background(), alwaysTaken{}, func(context.Context, string) error {
		t.Fatal("persist must not run for a taken code")
		return nil
	})

	var exhausted *apperrors.CodeExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 4, exhausted.Attempts)
	assert.ErrorIs(t, err, apperrors.ErrExhausted)
}

func TestAllocateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(DefaultAttempts).Allocate(ctx, &stubChecker{}, func(context.Context, string) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

// Creators sharing one seed draw identical candidate sequences, so every
// round collides; the store still hands out distinct codes.
func TestConcurrentCreatorsNeverShareACode(t *testing.T) {
	const creators = 8
	const perCreator = 5
	store := inmem.NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, creators*perCreator)
	for range creators {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g := NewWithSource(creators*perCreator, rand.NewPCG(42, 42))
			for range perCreator {
				err := store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repos) error {
					_, err := g.Allocate(ctx, tx.Sections(), func(ctx context.Context, code string) error {
						return tx.Sections().Create(ctx, &models.Section{
							Name: "S", EnrollmentCode: code, MaxCapacity: 30, Status: models.SectionActive,
						})
					})
					return err
				})
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	sections, total, err := store.Sections().List(ctx, repositories.SectionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, creators*perCreator, total)

	seen := map[string]bool{}
	for _, s := range sections {
		assert.True(t, Valid(s.EnrollmentCode))
		assert.False(t, seen[s.EnrollmentCode], "duplicate code %s", s.EnrollmentCode)
		seen[s.EnrollmentCode] = true
	}
}
