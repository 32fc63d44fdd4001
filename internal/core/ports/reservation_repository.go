package ports

import (
	"context"

	"github.com/ema-residences/rental-system/internal/core/domain"
)

// StatusCount is one row of the owner statistics aggregation: how many
// reservations sit in a status and how much they are worth.
type StatusCount struct {
	Status  domain.ReservationStatus
	Count   int64
	Revenue float64
}

// ReservationRepository defines persistence operations for reservations.
type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error)
	FindByID(ctx context.Context, id string) (*domain.Reservation, error)
	// UpdateStatus persists the transition from expected to next. The write is
	// conditional on the stored status still being expected; when a concurrent
	// writer got there first the call fails with ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id string, expected, next domain.ReservationStatus) error
	Delete(ctx context.Context, id string) error
	// ListByResidenceIDs returns reservations against any of the given
	// listings, newest first.
	ListByResidenceIDs(ctx context.Context, residenceIDs []string) ([]*domain.Reservation, error)
	// ListByUser returns the user's own reservations, newest first.
	ListByUser(ctx context.Context, user domain.UserID) ([]*domain.Reservation, error)
	// AggregateStats groups reservations against the given listings by status
	// in a single read, so counts and revenue form one snapshot.
	AggregateStats(ctx context.Context, residenceIDs []string) ([]StatusCount, error)
}
