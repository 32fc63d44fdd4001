package ports

import (
	"context"
	"time"

	"github.com/ema-residences/rental-system/internal/core/domain"
)

// CreateReservationInput carries all data needed to book a residence.
type CreateReservationInput struct {
	ResidenceID string
	Requester   domain.Identity
	StartDate   time.Time
	EndDate     time.Time
	// IdempotencyKey, when non-empty, makes repeated submissions return the
	// originally created reservation instead of booking twice.
	IdempotencyKey string
}

// ResidenceSummary is the requester-safe slice of a listing embedded in
// reservation views.
type ResidenceSummary struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Location string         `json:"location"`
	Price    float64        `json:"price"`
	Media    []domain.Media `json:"media,omitempty"`
}

// UserSummary is the requester-safe slice of a user embedded in reservation
// views.
type UserSummary struct {
	ID    domain.UserID `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Phone string        `json:"phone,omitempty"`
}

// ReservationView is a reservation enriched with display fields. Residence
// and User are nil when the referenced record no longer exists.
type ReservationView struct {
	ID         string                   `json:"id"`
	StartDate  time.Time                `json:"start_date"`
	EndDate    time.Time                `json:"end_date"`
	TotalPrice float64                  `json:"total_price"`
	Status     domain.ReservationStatus `json:"status"`
	CreatedAt  time.Time                `json:"created_at"`
	Residence  *ResidenceSummary        `json:"residence,omitempty"`
	User       *UserSummary             `json:"user,omitempty"`
}

// OwnerStats aggregates all reservations against an owner's listings.
// TotalReservations always equals the sum of the three status counts;
// TotalRevenue sums total_price over confirmed reservations only.
type OwnerStats struct {
	TotalReservations     int64   `json:"totalReservations"`
	ConfirmedReservations int64   `json:"confirmedReservations"`
	PendingReservations   int64   `json:"pendingReservations"`
	CancelledReservations int64   `json:"cancelledReservations"`
	TotalRevenue          float64 `json:"totalRevenue"`
}

// ReservationService defines the reservation lifecycle use cases.
type ReservationService interface {
	Create(ctx context.Context, in CreateReservationInput) (*ReservationView, error)
	// TransitionStatus moves a reservation to next. Only the owner of the
	// referenced residence or an admin may transition.
	TransitionStatus(ctx context.Context, id string, next domain.ReservationStatus, requester domain.Identity) (*ReservationView, error)
	// GetByID is visible to the residence owner and the requesting client only.
	GetByID(ctx context.Context, id string, requester domain.Identity) (*ReservationView, error)
	// Delete shares GetByID's visibility rule.
	Delete(ctx context.Context, id string, requester domain.Identity) error
	ListForOwner(ctx context.Context, owner domain.UserID) ([]ReservationView, error)
	ListForClient(ctx context.Context, client domain.UserID) ([]ReservationView, error)
	OwnerStatistics(ctx context.Context, owner domain.UserID) (*OwnerStats, error)
}
