package ports

import (
	"context"

	"github.com/ema-residences/rental-system/internal/core/domain"
)

// ResidenceFilter carries the public search parameters. Zero values mean
// "no filter" for that field.
type ResidenceFilter struct {
	City     string  // case-insensitive partial match on location
	Title    string  // case-insensitive partial match on title
	MaxPrice float64 // price <= MaxPrice when > 0
}

// ResidenceRepository defines persistence operations for listings.
type ResidenceRepository interface {
	Create(ctx context.Context, r *domain.Residence) (*domain.Residence, error)
	FindByID(ctx context.Context, id string) (*domain.Residence, error)
	// Find returns listings matching filter, newest first.
	Find(ctx context.Context, filter ResidenceFilter) ([]*domain.Residence, error)
	Update(ctx context.Context, r *domain.Residence) error
	Delete(ctx context.Context, id string) error
	// ReferenceExists reports whether another listing (excluding excludeID)
	// already uses the given reference.
	ReferenceExists(ctx context.Context, reference, excludeID string) (bool, error)
	// FindIDsByOwner returns the ids of all listings owned by owner.
	FindIDsByOwner(ctx context.Context, owner domain.UserID) ([]string, error)
}
