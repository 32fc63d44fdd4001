package ports

import (
	"context"
	"io"

	"github.com/ema-residences/rental-system/internal/core/domain"
)

// FileUpload is a single multipart file received at the boundary, not yet
// persisted anywhere.
type FileUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// MediaStore persists uploaded files and returns the media record pointing at
// them. Implementations decide the storage backend and URL scheme.
type MediaStore interface {
	Save(ctx context.Context, upload FileUpload) (domain.Media, error)
}
