package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/ema-residences/rental-system/internal/core/domain"
	"github.com/ema-residences/rental-system/internal/core/ports"
)

// ReservationDedup abstracts the idempotency store (Redis). Lookup returns
// the reservation id remembered for a key, or "" when unseen.
type ReservationDedup interface {
	Lookup(ctx context.Context, key string) (string, error)
	Remember(ctx context.Context, key, reservationID string) error
}

// ReservationService implements the reservation lifecycle.
type ReservationService struct {
	reservations ports.ReservationRepository
	residences   ports.ResidenceRepository
	users        ports.UserRepository
	dedup        ReservationDedup
	logger       zerolog.Logger
}

func NewReservationService(
	reservations ports.ReservationRepository,
	residences ports.ResidenceRepository,
	users ports.UserRepository,
	dedup ReservationDedup,
	logger zerolog.Logger,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		residences:   residences,
		users:        users,
		dedup:        dedup,
		logger:       logger,
	}
}

// Create books a residence for a date range. The total price is derived from
// the residence's nightly price; the reservation starts pending. When an
// idempotency key was already seen, the original reservation is returned
// without a second booking.
func (s *ReservationService) Create(ctx context.Context, in ports.CreateReservationInput) (*ports.ReservationView, error) {
	if in.IdempotencyKey != "" && s.dedup != nil {
		id, err := s.dedup.Lookup(ctx, in.IdempotencyKey)
		if err != nil {
			s.logger.Warn().Err(err).Msg("idempotency lookup failed, processing anyway")
		} else if id != "" {
			existing, err := s.reservations.FindByID(ctx, id)
			if err == nil {
				s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("reservation_id", id).Msg("idempotent replay")
				return s.view(ctx, existing), nil
			}
		}
	}

	if !in.EndDate.After(in.StartDate) {
		return nil, domain.NewValidationError("end_date must be after start_date")
	}

	residence, err := s.residences.FindByID(ctx, in.ResidenceID)
	if err != nil {
		return nil, err
	}

	reservation := &domain.Reservation{
		ResidenceID: residence.ID,
		UserID:      in.Requester.ID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	reservation.TotalPrice = float64(reservation.Nights()) * residence.Price

	created, err := s.reservations.Create(ctx, reservation)
	if err != nil {
		s.logger.Error().Err(err).Str("residence_id", in.ResidenceID).Msg("failed to create reservation")
		return nil, err
	}

	if in.IdempotencyKey != "" && s.dedup != nil {
		if err := s.dedup.Remember(ctx, in.IdempotencyKey, created.ID); err != nil {
			s.logger.Warn().Err(err).Str("reservation_id", created.ID).Msg("failed to set idempotency key")
		}
	}

	s.logger.Info().
		Str("reservation_id", created.ID).
		Str("residence_id", created.ResidenceID).
		Str("user_id", string(created.UserID)).
		Float64("total_price", created.TotalPrice).
		Msg("reservation created")

	return s.view(ctx, created), nil
}

// TransitionStatus moves a reservation to next. Only the owner of the
// referenced residence or an admin may transition; terminal states are final.
// The persisted write is conditional on the status read here, so of two
// concurrent transitions exactly one wins.
func (s *ReservationService) TransitionStatus(ctx context.Context, id string, next domain.ReservationStatus, requester domain.Identity) (*ports.ReservationView, error) {
	if !next.ValidStatus() {
		return nil, domain.NewValidationError("status must be one of: en attente, confirmée, annulée")
	}

	reservation, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireOwner(ctx, reservation, requester); err != nil {
		return nil, err
	}

	if !reservation.Status.CanTransitionTo(next) {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.reservations.UpdateStatus(ctx, id, reservation.Status, next); err != nil {
		return nil, err
	}
	reservation.Status = next

	s.logger.Info().
		Str("reservation_id", id).
		Str("status", string(next)).
		Str("actor", string(requester.ID)).
		Msg("reservation status updated")

	return s.view(ctx, reservation), nil
}

// GetByID returns the enriched reservation. Visible to the residence owner
// and the requesting client only.
func (s *ReservationService) GetByID(ctx context.Context, id string, requester domain.Identity) (*ports.ReservationView, error) {
	reservation, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireParticipant(ctx, reservation, requester); err != nil {
		return nil, err
	}

	return s.view(ctx, reservation), nil
}

// Delete removes a reservation, under the same visibility rule as GetByID.
func (s *ReservationService) Delete(ctx context.Context, id string, requester domain.Identity) error {
	reservation, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.requireParticipant(ctx, reservation, requester); err != nil {
		return err
	}

	if err := s.reservations.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("reservation_id", id).Str("actor", string(requester.ID)).Msg("reservation deleted")
	return nil
}

// ListForOwner returns all reservations against the owner's residences,
// newest first.
func (s *ReservationService) ListForOwner(ctx context.Context, owner domain.UserID) ([]ports.ReservationView, error) {
	ids, err := s.residences.FindIDsByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []ports.ReservationView{}, nil
	}

	reservations, err := s.reservations.ListByResidenceIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reservations), nil
}

// ListForClient returns the client's own reservations, newest first.
func (s *ReservationService) ListForClient(ctx context.Context, client domain.UserID) ([]ports.ReservationView, error) {
	reservations, err := s.reservations.ListByUser(ctx, client)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reservations), nil
}

// OwnerStatistics aggregates reservation counts per status plus revenue over
// confirmed reservations. The figures come from a single aggregation read,
// so the total always equals the sum of the three status counts.
func (s *ReservationService) OwnerStatistics(ctx context.Context, owner domain.UserID) (*ports.OwnerStats, error) {
	ids, err := s.residences.FindIDsByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	stats := &ports.OwnerStats{}
	if len(ids) == 0 {
		return stats, nil
	}

	rows, err := s.reservations.AggregateStats(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		stats.TotalReservations += row.Count
		switch row.Status {
		case domain.StatusConfirmed:
			stats.ConfirmedReservations = row.Count
			stats.TotalRevenue = row.Revenue
		case domain.StatusPending:
			stats.PendingReservations = row.Count
		case domain.StatusCancelled:
			stats.CancelledReservations = row.Count
		}
	}

	return stats, nil
}

// requireOwner fails with ErrForbidden unless the requester owns the
// reservation's residence or is an admin. A reservation whose residence was
// deleted can no longer be transitioned by anyone but an admin.
func (s *ReservationService) requireOwner(ctx context.Context, r *domain.Reservation, requester domain.Identity) error {
	if requester.Role == domain.RoleAdmin {
		return nil
	}
	residence, err := s.residences.FindByID(ctx, r.ResidenceID)
	if err != nil {
		if errors.Is(err, domain.ErrResidenceNotFound) {
			return domain.ErrForbidden
		}
		return err
	}
	if residence.Owner != requester.ID {
		return domain.ErrForbidden
	}
	return nil
}

// requireParticipant allows the requesting client, the residence owner, and
// admins.
func (s *ReservationService) requireParticipant(ctx context.Context, r *domain.Reservation, requester domain.Identity) error {
	if requester.Role == domain.RoleAdmin || r.UserID == requester.ID {
		return nil
	}
	residence, err := s.residences.FindByID(ctx, r.ResidenceID)
	if err != nil {
		if errors.Is(err, domain.ErrResidenceNotFound) {
			return domain.ErrForbidden
		}
		return err
	}
	if residence.Owner != requester.ID {
		return domain.ErrForbidden
	}
	return nil
}

// view enriches a reservation with display fields. Missing referents leave
// the summary nil rather than failing the read.
func (s *ReservationService) view(ctx context.Context, r *domain.Reservation) *ports.ReservationView {
	v := &ports.ReservationView{
		ID:         r.ID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		TotalPrice: r.TotalPrice,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
	}

	if residence, err := s.residences.FindByID(ctx, r.ResidenceID); err == nil {
		v.Residence = &ports.ResidenceSummary{
			ID:       residence.ID,
			Title:    residence.Title,
			Location: residence.Location,
			Price:    residence.Price,
			Media:    residence.Media,
		}
	}
	if user, err := s.users.FindByID(ctx, r.UserID); err == nil {
		v.User = &ports.UserSummary{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Phone: user.Phone,
		}
	}

	return v
}

func (s *ReservationService) views(ctx context.Context, reservations []*domain.Reservation) []ports.ReservationView {
	out := make([]ports.ReservationView, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, *s.view(ctx, r))
	}
	return out
}
