// Package cascade decides whether an offering, section or section subject
// may be deactivated or removed while live records still depend on it.
package cascade

import (
	"context"
	"fmt"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/metrics"
)

// Entity names the kind of record being downgraded.
type Entity string

const (
	EntityOffering       Entity = "offering"
	EntitySection        Entity = "section"
	EntitySectionSubject Entity = "section_subject"
)

// Decision is the outcome of a check. BlockingCount is the number of live
// dependents found; the change is allowed only when it is zero.
type Decision struct {
	Entity        Entity `json:"entity"`
	ID            int64  `json:"id"`
	Allowed       bool   `json:"allowed"`
	BlockingCount int    `json:"blockingCount"`
}

// Decide is the pure rule.
func Decide(entity Entity, id int64, liveDependents int) Decision {
	return Decision{
		Entity:        entity,
		ID:            id,
		Allowed:       liveDependents <= 0,
		BlockingCount: max(liveDependents, 0),
	}
}

// Err returns the typed error describing a blocked decision, or nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Entity {
	case EntityOffering:
		return &apperrors.HasActiveSectionsError{OfferingID: d.ID, Count: d.BlockingCount}
	case EntitySection:
		return &apperrors.HasEnrolledStudentsError{SectionID: d.ID, Count: d.BlockingCount}
	case EntitySectionSubject:
		return &apperrors.HasEnrollmentsError{SectionSubjectID: d.ID, Count: d.BlockingCount}
	}
	return fmt.Errorf("%w: %s %d has %d live dependents", apperrors.ErrConflict, d.Entity, d.ID, d.BlockingCount)
}

// Guard counts live dependents through the repositories it is handed, so
// that it runs inside the caller's transaction.
type Guard struct{}

// Offering counts active sections teaching the offering.
func (Guard) Offering(ctx context.Context, repos repositories.Repos, offeringID int64) (Decision, error) {
	n, err := repos.Sections().CountActiveByOffering(ctx, offeringID)
	if err != nil {
		return Decision{}, err
	}
	return observe(Decide(EntityOffering, offeringID, n)), nil
}

// Section counts distinct students holding an enrolled record in the section.
func (Guard) Section(ctx context.Context, repos repositories.Repos, sectionID int64) (Decision, error) {
	n, err := repos.Enrollments().CountEnrolledStudents(ctx, sectionID)
	if err != nil {
		return Decision{}, err
	}
	return observe(Decide(EntitySection, sectionID, n)), nil
}

// SectionSubject counts enrolled records for the offering taken through the section.
func (Guard) SectionSubject(ctx context.Context, repos repositories.Repos, ss *models.SectionSubject) (Decision, error) {
	n, err := repos.Enrollments().CountEnrolledInSlot(ctx, ss.SectionID, ss.OfferingID)
	if err != nil {
		return Decision{}, err
	}
	return observe(Decide(EntitySectionSubject, ss.ID, n)), nil
}

func observe(d Decision) Decision {
	if !d.Allowed {
		metrics.CascadeBlocked.WithLabelValues(string(d.Entity)).Inc()
	}
	return d
}
