package domain

import (
	"errors"
	"time"
)

// ReservationStatus is the lifecycle state of a reservation. The wire values
// are the French labels the original clients expect.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "en attente"
	StatusConfirmed ReservationStatus = "confirmée"
	StatusCancelled ReservationStatus = "annulée"
)

// validTransitions defines the allowed state machine transitions.
// Confirmed and cancelled are terminal.
var validTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending: {StatusConfirmed, StatusCancelled},
}

var ErrReservationNotFound = errors.New("reservation not found")
var ErrInvalidTransition = errors.New("invalid status transition")

// ValidStatus reports whether s is a member of the status enum.
func (s ReservationStatus) ValidStatus() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCancelled
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Reservation is a client's request to occupy a residence for a date range.
// Status is controlled by the residence owner (or an admin); the requesting
// client can only create and delete.
type Reservation struct {
	ID          string            `json:"id" bson:"_id,omitempty"`
	ResidenceID string            `json:"residence_id" bson:"residence_id"`
	UserID      UserID            `json:"user_id" bson:"user_id"`
	StartDate   time.Time         `json:"start_date" bson:"start_date"`
	EndDate     time.Time         `json:"end_date" bson:"end_date"`
	TotalPrice  float64           `json:"total_price" bson:"total_price"`
	Status      ReservationStatus `json:"status" bson:"status"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at"`
}

// Nights returns the number of whole 24-hour periods between the dates.
func (r *Reservation) Nights() int {
	return int(r.EndDate.Sub(r.StartDate).Hours() / 24)
}
