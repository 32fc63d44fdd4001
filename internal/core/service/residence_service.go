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

// ResidenceService implements the listing store use cases.
type ResidenceService struct {
	repo   ports.ResidenceRepository
	media  ports.MediaStore
	logger zerolog.Logger
}

func NewResidenceService(repo ports.ResidenceRepository, media ports.MediaStore, logger zerolog.Logger) *ResidenceService {
	return &ResidenceService{repo: repo, media: media, logger: logger}
}

func (s *ResidenceService) List(ctx context.Context, filter ports.ResidenceFilter) ([]*domain.Residence, error) {
	return s.repo.Find(ctx, filter)
}

func (s *ResidenceService) GetByID(ctx context.Context, id string) (*domain.Residence, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates the command, persists the uploads, and stores the listing.
// Media order is retained existing media followed by new uploads, in
// submission order. Nothing is written when validation fails.
func (s *ResidenceService) Create(ctx context.Context, in ports.CreateResidenceInput) (*domain.Residence, error) {
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

	reference := strings.TrimSpace(in.Reference)
	if reference != "" {
		taken, err := s.repo.ReferenceExists(ctx, reference, "")
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.ErrDuplicateReference
		}
	}

	stored, err := s.storeUploads(ctx, in.Uploads)
	if err != nil {
		return nil, err
	}

	residence := &domain.Residence{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Address:     strings.TrimSpace(in.Address),
		Reference:   reference,
		Type:        in.Type,
		Price:       in.Price,
		Media:       append(sanitizeMedia(in.ExistingMedia), stored...),
		Amenities:   dedupeAmenities(in.Amenities),
		Owner:       in.Owner.ID,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, residence)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create residence")
		return nil, err
	}

	s.logger.Info().Str("residence_id", created.ID).Str("owner", string(created.Owner)).Msg("residence created")
	return created, nil
}

// Update applies a partial update. Only the owner or an admin may mutate.
// The resulting media set is (current - deleted) + retained + new uploads.
func (s *ResidenceService) Update(ctx context.Context, in ports.UpdateResidenceInput) (*domain.Residence, error) {
	existing, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if !existing.CanModify(in.Requester) {
		return nil, domain.ErrForbidden
	}

	var details []string
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			details = append(details, "title must not be blank")
		} else if len([]rune(*in.Title)) > domain.MaxTitleLen {
			details = append(details, fmt.Sprintf("title must not exceed %d characters", domain.MaxTitleLen))
		}
	}
	if in.Location != nil && strings.TrimSpace(*in.Location) == "" {
		details = append(details, "location must not be blank")
	}
	if in.Type != nil && !domain.ValidResidenceType(*in.Type) {
		details = append(details, "type must be one of: "+strings.Join(domain.ResidenceTypes(), ", "))
	}
	if in.Price != nil && (*in.Price < domain.MinPrice || *in.Price > domain.MaxPrice) {
		details = append(details, fmt.Sprintf("price must be between %d and %d", domain.MinPrice, domain.MaxPrice))
	}
	if in.Description != nil && len([]rune(*in.Description)) > domain.MaxDescriptionLen {
		details = append(details, fmt.Sprintf("description must not exceed %d characters", domain.MaxDescriptionLen))
	}
	if len(details) > 0 {
		return nil, &domain.ValidationError{Details: details}
	}

	if in.Reference != nil {
		reference := strings.TrimSpace(*in.Reference)
		if reference != "" && reference != existing.Reference {
			taken, err := s.repo.ReferenceExists(ctx, reference, existing.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, domain.ErrDuplicateReference
			}
		}
		existing.Reference = reference
	}

	if in.Title != nil {
		existing.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		existing.Description = strings.TrimSpace(*in.Description)
	}
	if in.Location != nil {
		existing.Location = strings.TrimSpace(*in.Location)
	}
	if in.Address != nil {
		existing.Address = strings.TrimSpace(*in.Address)
	}
	if in.Type != nil {
		existing.Type = *in.Type
	}
	if in.Price != nil {
		existing.Price = *in.Price
	}
	if in.Amenities != nil {
		existing.Amenities = dedupeAmenities(*in.Amenities)
	}

	media := existing.Media
	if len(in.MediaToDelete) > 0 {
		deleted := make(map[string]struct{}, len(in.MediaToDelete))
		for _, url := range in.MediaToDelete {
			deleted[url] = struct{}{}
		}
		kept := media[:0]
		for _, m := range media {
			if _, gone := deleted[m.URL]; !gone {
				kept = append(kept, m)
			}
		}
		media = kept
	}
	media = append(media, sanitizeMedia(in.ExistingMedia)...)

	stored, err := s.storeUploads(ctx, in.Uploads)
	if err != nil {
		return nil, err
	}
	existing.Media = append(media, stored...)

	if err := s.repo.Update(ctx, existing); err != nil {
		s.logger.Error().Err(err).Str("residence_id", existing.ID).Msg("failed to update residence")
		return nil, err
	}

	s.logger.Info().Str("residence_id", existing.ID).Msg("residence updated")
	return existing, nil
}

func (s *ResidenceService) Delete(ctx context.Context, id string, requester domain.Identity) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !existing.CanModify(requester) {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("residence_id", id).Msg("residence deleted")
	return nil
}

func (s *ResidenceService) storeUploads(ctx context.Context, uploads []ports.FileUpload) ([]domain.Media, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	stored := make([]domain.Media, 0, len(uploads))
	for _, u := range uploads {
		m, err := s.media.Save(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("store upload %s: %w", u.Filename, err)
		}
		stored = append(stored, m)
	}
	return stored, nil
}

// sanitizeMedia drops entries without a URL or with an unknown kind.
func sanitizeMedia(media []domain.Media) []domain.Media {
	out := make([]domain.Media, 0, len(media))
	for _, m := range media {
		if m.URL == "" {
			continue
		}
		if m.Kind != domain.MediaImage && m.Kind != domain.MediaVideo {
			continue
		}
		out = append(out, m)
	}
	return out
}

// dedupeAmenities normalizes amenities to a set of non-blank strings,
// preserving first-seen order.
func dedupeAmenities(amenities []string) []string {
	seen := make(map[string]struct{}, len(amenities))
	out := make([]string, 0, len(amenities))
	for _, a := range amenities {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
