package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ema-residences/rental-system/internal/core/domain"
	"github.com/ema-residences/rental-system/internal/core/ports"
)

// AnnonceService implements the secondary listing type. Same validation rules
// as residences, minus the unique reference.
type AnnonceService struct {
	repo   ports.AnnonceRepository
	media  ports.MediaStore
	logger zerolog.Logger
}

func NewAnnonceService(repo ports.AnnonceRepository, media ports.MediaStore, logger zerolog.Logger) *AnnonceService {
	return &AnnonceService{repo: repo, media: media, logger: logger}
}

func (s *AnnonceService) List(ctx context.Context) ([]*domain.Annonce, error) {
	return s.repo.FindAll(ctx)
}

func (s *AnnonceService) GetByID(ctx context.Context, id string) (*domain.Annonce, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *AnnonceService) Create(ctx context.Context, in ports.CreateAnnonceInput) (*domain.Annonce, error) {
	var details []string
	if strings.TrimSpace(in.Title) == "" {
		details = append(details, "title is required")
	} else if len([]rune(in.Title)) > domain.MaxTitleLen {
		details = append(details, fmt.Sprintf("title must not exceed %d characters", domain.MaxTitleLen))
	}
	if strings.TrimSpace(in.Location) == "" {
		details = append(details, "location is required")
	}
	if !domain.ValidResidenceType(in.Type) {
		details = append(details, "type must be one of: "+strings.Join(domain.ResidenceTypes(), ", "))
	}
	if in.Price < domain.MinPrice || in.Price > domain.MaxPrice {
		details = append(details, fmt.Sprintf("price must be between %d and %d", domain.MinPrice, domain.MaxPrice))
	}
	if len([]rune(in.Description)) > domain.MaxDescriptionLen {
		details = append(details, fmt.Sprintf("description must not exceed %d characters", domain.MaxDescriptionLen))
	}
	if len(details) > 0 {
		return nil, &domain.ValidationError{Details: details}
	}

	media := make([]domain.Media, 0, len(in.Uploads))
	for _, u := range in.Uploads {
		m, err := s.media.Save(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("store upload %s: %w", u.Filename, err)
		}
		media = append(media, m)
	}

	annonce := &domain.Annonce{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Address:     strings.TrimSpace(in.Address),
		Type:        in.Type,
		Price:       in.Price,
		Media:       media,
		Amenities:   dedupeAmenities(in.Amenities),
		Owner:       in.Owner.ID,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, annonce)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create annonce")
		return nil, err
	}

	s.logger.Info().Str("annonce_id", created.ID).Str("owner", string(created.Owner)).Msg("annonce created")
	return created, nil
}
