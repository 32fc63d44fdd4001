package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ema-residences/rental-system/internal/core/domain"
	"github.com/ema-residences/rental-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories shared by the service tests. They mirror the
// filters and ordering of the real Mongo repositories.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID    map[domain.UserID]*domain.User
	byEmail map[string]*domain.User
	nextID  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:    make(map[domain.UserID]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	clone := *user
	clone.ID = domain.UserID(fmt.Sprintf("user-%d", r.nextID))
	r.byID[clone.ID] = &clone
	r.byEmail[clone.Email] = &clone
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

type stubResidenceRepo struct {
	byID   map[string]*domain.Residence
	nextID int
}

func newStubResidenceRepo() *stubResidenceRepo {
	return &stubResidenceRepo{byID: make(map[string]*domain.Residence)}
}

func (r *stubResidenceRepo) Create(_ context.Context, residence *domain.Residence) (*domain.Residence, error) {
	r.nextID++
	clone := *residence
	clone.ID = fmt.Sprintf("res-%d", r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubResidenceRepo) FindByID(_ context.Context, id string) (*domain.Residence, error) {
	res, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrResidenceNotFound
	}
	clone := *res
	return &clone, nil
}

func (r *stubResidenceRepo) Find(_ context.Context, filter ports.ResidenceFilter) ([]*domain.Residence, error) {
	var matched []*domain.Residence
	for _, res := range r.byID {
		if filter.City != "" && !strings.Contains(strings.ToLower(res.Location), strings.ToLower(filter.City)) {
			continue
		}
		if filter.Title != "" && !strings.Contains(strings.ToLower(res.Title), strings.ToLower(filter.Title)) {
			continue
		}
		if filter.MaxPrice > 0 && res.Price > filter.MaxPrice {
			continue
		}
		clone := *res
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (r *stubResidenceRepo) Update(_ context.Context, residence *domain.Residence) error {
	if _, ok := r.byID[residence.ID]; !ok {
		return domain.ErrResidenceNotFound
	}
	clone := *residence
	r.byID[residence.ID] = &clone
	return nil
}

func (r *stubResidenceRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrResidenceNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubResidenceRepo) ReferenceExists(_ context.Context, reference, excludeID string) (bool, error) {
	for _, res := range r.byID {
		if res.Reference == reference && res.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubResidenceRepo) FindIDsByOwner(_ context.Context, owner domain.UserID) ([]string, error) {
	var ids []string
	for _, res := range r.byID {
		if res.Owner == owner {
			ids = append(ids, res.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type stubReservationRepo struct {
	byID   map[string]*domain.Reservation
	order  []string // insertion order, used for stable listing
	nextID int
}

func newStubReservationRepo() *stubReservationRepo {
	return &stubReservationRepo{byID: make(map[string]*domain.Reservation)}
}

func (r *stubReservationRepo) Create(_ context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	r.nextID++
	clone := *reservation
	clone.ID = fmt.Sprintf("rsv-%d", r.nextID)
	r.byID[clone.ID] = &clone
	r.order = append(r.order, clone.ID)
	out := clone
	return &out, nil
}

func (r *stubReservationRepo) FindByID(_ context.Context, id string) (*domain.Reservation, error) {
	rsv, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	clone := *rsv
	return &clone, nil
}

func (r *stubReservationRepo) UpdateStatus(_ context.Context, id string, expected, next domain.ReservationStatus) error {
	rsv, ok := r.byID[id]
	if !ok {
		return domain.ErrReservationNotFound
	}
	if rsv.Status != expected {
		return domain.ErrInvalidTransition
	}
	rsv.Status = next
	return nil
}

func (r *stubReservationRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrReservationNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubReservationRepo) ListByResidenceIDs(_ context.Context, residenceIDs []string) ([]*domain.Reservation, error) {
	wanted := make(map[string]struct{}, len(residenceIDs))
	for _, id := range residenceIDs {
		wanted[id] = struct{}{}
	}
	return r.list(func(rsv *domain.Reservation) bool {
		_, ok := wanted[rsv.ResidenceID]
		return ok
	}), nil
}

func (r *stubReservationRepo) ListByUser(_ context.Context, user domain.UserID) ([]*domain.Reservation, error) {
	return r.list(func(rsv *domain.Reservation) bool {
		return rsv.UserID == user
	}), nil
}

func (r *stubReservationRepo) list(match func(*domain.Reservation) bool) []*domain.Reservation {
	var out []*domain.Reservation
	for _, id := range r.order {
		rsv, ok := r.byID[id]
		if !ok || !match(rsv) {
			continue
		}
		clone := *rsv
		out = append(out, &clone)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *stubReservationRepo) AggregateStats(_ context.Context, residenceIDs []string) ([]ports.StatusCount, error) {
	wanted := make(map[string]struct{}, len(residenceIDs))
	for _, id := range residenceIDs {
		wanted[id] = struct{}{}
	}

	grouped := make(map[domain.ReservationStatus]*ports.StatusCount)
	for _, rsv := range r.byID {
		if _, ok := wanted[rsv.ResidenceID]; !ok {
			continue
		}
		row, ok := grouped[rsv.Status]
		if !ok {
			row = &ports.StatusCount{Status: rsv.Status}
			grouped[rsv.Status] = row
		}
		row.Count++
		row.Revenue += rsv.TotalPrice
	}

	out := make([]ports.StatusCount, 0, len(grouped))
	for _, row := range grouped {
		out = append(out, *row)
	}
	return out, nil
}

// stubMediaStore records saved uploads and returns deterministic URLs.
type stubMediaStore struct {
	saved []string
}

func (s *stubMediaStore) Save(_ context.Context, upload ports.FileUpload) (domain.Media, error) {
	s.saved = append(s.saved, upload.Filename)
	kind := domain.MediaImage
	if strings.HasPrefix(upload.ContentType, "video/") {
		kind = domain.MediaVideo
	}
	return domain.Media{URL: "/uploads/" + upload.Filename, Kind: kind}, nil
}

// stubDedup is an in-memory idempotency store.
type stubDedup struct {
	keys map[string]string
}

func newStubDedup() *stubDedup {
	return &stubDedup{keys: make(map[string]string)}
}

func (d *stubDedup) Lookup(_ context.Context, key string) (string, error) {
	return d.keys[key], nil
}

func (d *stubDedup) Remember(_ context.Context, key, reservationID string) error {
	d.keys[key] = reservationID
	return nil
}
