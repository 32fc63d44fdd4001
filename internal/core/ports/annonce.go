package ports

import (
	"context"

	"github.com/ema-residences/rental-system/internal/core/domain"
)

// AnnonceRepository defines persistence operations for annonces.
type AnnonceRepository interface {
	Create(ctx context.Context, a *domain.Annonce) (*domain.Annonce, error)
	FindByID(ctx context.Context, id string) (*domain.Annonce, error)
	// FindAll returns all annonces, newest first.
	FindAll(ctx context.Context) ([]*domain.Annonce, error)
}

// CreateAnnonceInput mirrors CreateResidenceInput for the secondary listing
// type (annonces carry no unique reference).
type CreateAnnonceInput struct {
	Title       string
	Description string
	Location    string
	Address     string
	Type        string
	Price       float64
	Amenities   []string
	Uploads     []FileUpload
	Owner       domain.Identity
}

// AnnonceService defines use-case operations for annonces.
type AnnonceService interface {
	List(ctx context.Context) ([]*domain.Annonce, error)
	GetByID(ctx context.Context, id string) (*domain.Annonce, error)
	Create(ctx context.Context, in CreateAnnonceInput) (*domain.Annonce, error)
}
