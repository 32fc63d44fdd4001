package ports

import (
	"context"

	"github.com/ema-residences/rental-system/internal/core/domain"
)

// CreateResidenceInput is the typed command parsed once from the multipart
// request body. Uploads are persisted only after validation succeeds.
type CreateResidenceInput struct {
	Title       string
	Description string
	Location    string
	Address     string
	Reference   string
	Type        string
	Price       float64
	Amenities   []string
	// ExistingMedia is media retained from a previous edit round-trip,
	// kept ahead of new uploads in the stored order.
	ExistingMedia []domain.Media
	Uploads       []FileUpload
	Owner         domain.Identity
}

// UpdateResidenceInput is the partial-update command. Nil pointer fields are
// left untouched.
type UpdateResidenceInput struct {
	ID          string
	Title       *string
	Description *string
	Location    *string
	Address     *string
	Reference   *string
	Type        *string
	Price       *float64
	Amenities   *[]string
	// MediaToDelete lists media URLs removed from the current set.
	MediaToDelete []string
	ExistingMedia []domain.Media
	Uploads       []FileUpload
	Requester     domain.Identity
}

// ResidenceService defines use-case operations for listings.
type ResidenceService interface {
	List(ctx context.Context, filter ResidenceFilter) ([]*domain.Residence, error)
	GetByID(ctx context.Context, id string) (*domain.Residence, error)
	Create(ctx context.Context, in CreateResidenceInput) (*domain.Residence, error)
	Update(ctx context.Context, in UpdateResidenceInput) (*domain.Residence, error)
	Delete(ctx context.Context, id string, requester domain.Identity) error
}
