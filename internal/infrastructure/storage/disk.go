// Package storage persists uploaded listing media on local disk, served
// statically under the uploads path.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ema-residences/rental-system/internal/core/domain"
	"github.com/ema-residences/rental-system/internal/core/ports"
)

// DiskMediaStore writes uploads into a directory and returns /uploads URLs.
type DiskMediaStore struct {
	dir string
}

// NewDiskMediaStore ensures dir exists and returns a store writing into it.
func NewDiskMediaStore(dir string) (*DiskMediaStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskMediaStore{dir: dir}, nil
}

// Save writes the upload under a random name, keeping the original extension.
// The media kind is derived from the declared content type: video/* is video,
// everything else is image.
func (s *DiskMediaStore) Save(_ context.Context, upload ports.FileUpload) (domain.Media, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(upload.Filename))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return domain.Media{}, fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, upload.Content); err != nil {
		os.Remove(path)
		return domain.Media{}, fmt.Errorf("write media file: %w", err)
	}

	kind := domain.MediaImage
	if strings.HasPrefix(upload.ContentType, "video/") {
		kind = domain.MediaVideo
	}

	return domain.Media{URL: "/uploads/" + name, Kind: kind}, nil
}
