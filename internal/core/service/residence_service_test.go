package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ema-residences/rental-system/internal/core/domain"
	"github.com/ema-residences/rental-system/internal/core/ports"
)

func newResidenceService() (*ResidenceService, *stubResidenceRepo, *stubMediaStore) {
	repo := newStubResidenceRepo()
	media := &stubMediaStore{}
	return NewResidenceService(repo, media, discardLogger), repo, media
}

func validCreateInput(owner domain.Identity) ports.CreateResidenceInput {
	return ports.CreateResidenceInput{
		Title:    "Appartement Plateau",
		Location: "Dakar",
		Type:     "Appartement",
		Price:    35000,
		Owner:    owner,
	}
}

var testOwner = domain.Identity{ID: "owner-1", Role: domain.RoleOwner}

func TestResidenceService_Create(t *testing.T) {
	svc, _, _ := newResidenceService()

	in := validCreateInput(testOwner)
	in.Description = "  Deux pièces au centre-ville  "
	in.Amenities = []string{"wifi", " wifi ", "", "climatisation"}

	created, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.ID == "" {
		t.Error("expected an assigned id")
	}
	if created.Owner != testOwner.ID {
		t.Errorf("owner = %q, want %q", created.Owner, testOwner.ID)
	}
	if created.Description != "Deux pièces au centre-ville" {
		t.Errorf("description = %q, want trimmed", created.Description)
	}
	if want := []string{"wifi", "climatisation"}; !reflect.DeepEqual(created.Amenities, want) {
		t.Errorf("amenities = %v, want %v", created.Amenities, want)
	}
}

func TestResidenceService_Create_Validation(t *testing.T) {
	svc, repo, _ := newResidenceService()

	tests := []struct {
		name   string
		mutate func(*ports.CreateResidenceInput)
		detail string
	}{
		{"blank title", func(in *ports.CreateResidenceInput) { in.Title = "   " }, "title is required"},
		{"title too long", func(in *ports.CreateResidenceInput) { in.Title = strings.Repeat("a", 101) }, "title must not exceed 100"},
		{"blank location", func(in *ports.CreateResidenceInput) { in.Location = "" }, "location is required"},
		{"unknown type", func(in *ports.CreateResidenceInput) { in.Type = "Igloo" }, "type must be one of"},
		{"price too low", func(in *ports.CreateResidenceInput) { in.Price = 999 }, "price must be between"},
		{"price too high", func(in *ports.CreateResidenceInput) { in.Price = 1000001 }, "price must be between"},
		{"description too long", func(in *ports.CreateResidenceInput) { in.Description = strings.Repeat("d", 1001) }, "description must not exceed 1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput(testOwner)
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), in)
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("err = %v, want validation error", err)
			}
			found := false
			for _, d := range vErr.Details {
				if strings.Contains(d, tt.detail) {
					found = true
				}
			}
			if !found {
				t.Errorf("details %v missing %q", vErr.Details, tt.detail)
			}
		})
	}

	if len(repo.byID) != 0 {
		t.Errorf("stored %d residences, want 0 when validation fails", len(repo.byID))
	}
}

func TestResidenceService_Create_BoundaryPrices(t *testing.T) {
	svc, _, _ := newResidenceService()

	for _, price := range []float64{domain.MinPrice, domain.MaxPrice} {
		in := validCreateInput(testOwner)
		in.Price = price
		if _, err := svc.Create(context.Background(), in); err != nil {
			t.Errorf("price %v: %v, want accepted", price, err)
		}
	}
}

func TestResidenceService_Create_DuplicateReference(t *testing.T) {
	svc, _, _ := newResidenceService()
	ctx := context.Background()

	in := validCreateInput(testOwner)
	in.Reference = "REF-001"
	if _, err := svc.Create(ctx, in); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(ctx, in)
	if !errors.Is(err, domain.ErrDuplicateReference) {
		t.Fatalf("err = %v, want ErrDuplicateReference", err)
	}
}

func TestResidenceService_Create_MediaOrder(t *testing.T) {
	svc, _, media := newResidenceService()

	in := validCreateInput(testOwner)
	in.ExistingMedia = []domain.Media{
		{URL: "/uploads/kept.jpg", Kind: domain.MediaImage},
		{URL: "", Kind: domain.MediaImage},                        // dropped: blank URL
		{URL: "/uploads/odd.bin", Kind: domain.MediaKind("gltf")}, // dropped: unknown kind
	}
	in.Uploads = []ports.FileUpload{
		{Filename: "new1.jpg", ContentType: "image/jpeg", Content: strings.NewReader("a")},
		{Filename: "new2.mp4", ContentType: "video/mp4", Content: strings.NewReader("b")},
	}

	created, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	want := []domain.Media{
		{URL: "/uploads/kept.jpg", Kind: domain.MediaImage},
		{URL: "/uploads/new1.jpg", Kind: domain.MediaImage},
		{URL: "/uploads/new2.mp4", Kind: domain.MediaVideo},
	}
	if !reflect.DeepEqual(created.Media, want) {
		t.Errorf("media = %v, want %v", created.Media, want)
	}
	if len(media.saved) != 2 {
		t.Errorf("saved %d uploads, want 2", len(media.saved))
	}
}

func TestResidenceService_Update(t *testing.T) {
	svc, _, _ := newResidenceService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateInput(testOwner))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "Appartement rénové"
	price := 45000.0
	updated, err := svc.Update(ctx, ports.UpdateResidenceInput{
		ID:        created.ID,
		Title:     &title,
		Price:     &price,
		Requester: testOwner,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Title != title {
		t.Errorf("title = %q, want %q", updated.Title, title)
	}
	if updated.Price != price {
		t.Errorf("price = %v, want %v", updated.Price, price)
	}
	// Untouched fields survive a partial update.
	if updated.Location != "Dakar" {
		t.Errorf("location = %q, want Dakar", updated.Location)
	}
}

func TestResidenceService_Update_PriceOutOfBounds(t *testing.T) {
	svc, _, _ := newResidenceService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateInput(testOwner))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	price := 500.0
	_, err = svc.Update(ctx, ports.UpdateResidenceInput{ID: created.ID, Price: &price, Requester: testOwner})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestResidenceService_Update_MediaDeletion(t *testing.T) {
	svc, _, _ := newResidenceService()
	ctx := context.Background()

	in := validCreateInput(testOwner)
	in.ExistingMedia = []domain.Media{
		{URL: "/uploads/a.jpg", Kind: domain.MediaImage},
		{URL: "/uploads/b.jpg", Kind: domain.MediaImage},
	}
	created, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, ports.UpdateResidenceInput{
		ID:            created.ID,
		MediaToDelete: []string{"/uploads/a.jpg"},
		Uploads: []ports.FileUpload{
			{Filename: "c.jpg", ContentType: "image/jpeg", Content: strings.NewReader("c")},
		},
		Requester: testOwner,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	want := []domain.Media{
		{URL: "/uploads/b.jpg", Kind: domain.MediaImage},
		{URL: "/uploads/c.jpg", Kind: domain.MediaImage},
	}
	if !reflect.DeepEqual(updated.Media, want) {
		t.Errorf("media = %v, want %v", updated.Media, want)
	}
}

func TestResidenceService_Update_Forbidden(t *testing.T) {
	svc, _, _ := newResidenceService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateInput(testOwner))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "Hijacked"
	otherOwner := domain.Identity{ID: "owner-2", Role: domain.RoleOwner}
	_, err = svc.Update(ctx, ports.UpdateResidenceInput{ID: created.ID, Title: &title, Requester: otherOwner})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	// Admins may update anyone's listing.
	admin := domain.Identity{ID: "admin-1", Role: domain.RoleAdmin}
	if _, err := svc.Update(ctx, ports.UpdateResidenceInput{ID: created.ID, Title: &title, Requester: admin}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestResidenceService_Delete(t *testing.T) {
	svc, repo, _ := newResidenceService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateInput(testOwner))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stranger := domain.Identity{ID: "owner-2", Role: domain.RoleOwner}
	if err := svc.Delete(ctx, created.ID, stranger); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("delete as stranger: err = %v, want ErrForbidden", err)
	}

	if err := svc.Delete(ctx, created.ID, testOwner); err != nil {
		t.Fatalf("delete as owner: %v", err)
	}
	if len(repo.byID) != 0 {
		t.Errorf("residence still stored after delete")
	}

	if err := svc.Delete(ctx, created.ID, testOwner); !errors.Is(err, domain.ErrResidenceNotFound) {
		t.Fatalf("second delete: err = %v, want ErrResidenceNotFound", err)
	}
}

func TestResidenceService_List(t *testing.T) {
	svc, _, _ := newResidenceService()
	ctx := context.Background()

	cheap := validCreateInput(testOwner)
	cheap.Title = "Studio Ngor"
	cheap.Location = "Ngor"
	cheap.Type = "Studio"
	cheap.Price = 15000
	if _, err := svc.Create(ctx, cheap); err != nil {
		t.Fatalf("create studio: %v", err)
	}
	if _, err := svc.Create(ctx, validCreateInput(testOwner)); err != nil {
		t.Fatalf("create apartment: %v", err)
	}

	got, err := svc.List(ctx, ports.ResidenceFilter{MaxPrice: 20000})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Studio Ngor" {
		t.Errorf("filtered list = %v, want only Studio Ngor", got)
	}

	all, err := svc.List(ctx, ports.ResidenceFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len = %d, want 2", len(all))
	}
}
