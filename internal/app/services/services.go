// Package services implements the scheduling and enrollment operations on
// top of repositories.Store. Every mutating operation runs in one
// transaction; invariant violations come back as the typed errors of
// package apperrors.
package services

import (
	"errors"

	"github.com/yigit/campus/internal/app/cascade"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/repositories"
)

// SeatNotifier receives the seat state of a section after it changed.
// Implementations must not block.
type SeatNotifier interface {
	PublishSeats(update dto.SeatUpdate)
}

type noSeats struct{}

func (noSeats) PublishSeats(dto.SeatUpdate) {}

// orNoSeats keeps services usable without a seat feed.
func orNoSeats(n SeatNotifier) SeatNotifier {
	if n == nil {
		return noSeats{}
	}
	return n
}

var guard cascade.Guard

// notFound replaces repositories.ErrNotFound by the entity specific error.
func notFound(err error, entityErr error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return entityErr
	}
	return err
}

func seatUpdate(section *models.Section, enrolled int) dto.SeatUpdate {
	return dto.SeatUpdate{
		SectionID: section.ID,
		Enrolled:  enrolled,
		Capacity:  section.MaxCapacity,
		Available: section.FreeSeats(enrolled),
	}
}
