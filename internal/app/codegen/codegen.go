// Package codegen allocates the enrollment codes of sections.
//
// A code is three letters from an alphabet without I, L and O, a dash and
// four digits, e.g. "KMR-0427". Uniqueness is decided by the store: the
// existence check only avoids noisy constraint churn, the unique index on
// the code column is the authority.
package codegen

import (
	"context"
	"errors"
	"math/rand/v2"
	"regexp"
	"sync"
	"time"

	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/logger"
	"github.com/yigit/campus/internal/pkg/metrics"
)

const (
	// Alphabet holds the letters a code may use.
	Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ"
	// DefaultAttempts bounds how many candidates are tried before giving up.
	DefaultAttempts = 10

	letters = 3
	digits  = 4
)

var pattern = regexp.MustCompile(`^[A-HJKMNP-Z]{3}-\d{4}$`)

// Valid reports whether code has the enrollment code shape.
func Valid(code string) bool {
	return pattern.MatchString(code)
}

// Checker looks up the section store for a code.
type Checker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// PersistFunc stores the owning section with code. It returns
// repositories.ErrDuplicateCode when the code was taken concurrently.
type PersistFunc func(ctx context.Context, code string) error

// Generator draws random codes. It is safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	attempts int
}

// New returns a generator seeded from the clock.
func New(attempts int) *Generator {
	seed := uint64(time.Now().UnixNano())
	return NewWithSource(attempts, rand.NewPCG(seed, seed>>1|1))
}

// NewWithSource returns a generator drawing from src.
func NewWithSource(attempts int, src rand.Source) *Generator {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	return &Generator{rng: rand.New(src), attempts: attempts}
}

// Attempts returns the configured attempt budget.
func (g *Generator) Attempts() int {
	return g.attempts
}

// Candidate draws one code uniformly from the code space.
func (g *Generator) Candidate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	buf := make([]byte, 0, letters+1+digits)
	for range letters {
		buf = append(buf, Alphabet[g.rng.IntN(len(Alphabet))])
	}
	buf = append(buf, '-')
	for range digits {
		buf = append(buf, byte('0'+g.rng.IntN(10)))
	}
	return string(buf)
}

// Allocate draws candidates until persist accepts one and returns it.
// Taken-code lookups and insert-time duplicates share the same attempt budget; once
// it is spent Allocate fails with *apperrors.CodeExhaustedError.
func (g *Generator) Allocate(ctx context.Context, check Checker, persist PersistFunc) (string, error) {
	for attempt := 1; attempt <= g.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code := g.Candidate()
		taken, err := check.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if taken {
			metrics.CodeCollisions.Inc()
			logger.Debug().Str("code", code).Int("attempt", attempt).Msg("Enrollment code taken, retrying")
			continue
		}

		err = persist(ctx, code)
		if errors.Is(err, repositories.ErrDuplicateCode) {
			metrics.CodeCollisions.Inc()
			logger.Debug().Str("code", code).Int("attempt", attempt).Msg("Enrollment code claimed concurrently, retrying")
			continue
		}
		if err != nil {
			return "", err
		}

		metrics.CodesGenerated.Inc()
		return code, nil
	}

	metrics.CodeExhausted.Inc()
	logger.Error().Int("attempts", g.attempts).Msg("Enrollment code generation exhausted")
	return "", &apperrors.CodeExhaustedError{Attempts: g.attempts}
}
