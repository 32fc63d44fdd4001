package handler

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ema-residences/rental-system/internal/core/domain"
	"github.com/ema-residences/rental-system/internal/core/ports"
)

// listingForm wraps the multipart body of listing create/update requests.
// Listings arrive as form fields plus JSON-encoded sub-arrays plus uploaded
// files; this type parses each exactly once into typed values.
type listingForm struct {
	values map[string][]string
	files  []*multipart.FileHeader
}

func parseListingForm(c echo.Context) (*listingForm, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "expected multipart form data")
	}

	files := form.File["media"]
	if len(files) > domain.MaxMediaFiles {
		return nil, domain.NewValidationError(fmt.Sprintf("at most %d media files are allowed", domain.MaxMediaFiles))
	}

	return &listingForm{values: form.Value, files: files}, nil
}

// has reports whether the field was present in the form, distinguishing
// "absent" from "blank" for partial updates.
func (f *listingForm) has(key string) bool {
	_, ok := f.values[key]
	return ok
}

func (f *listingForm) value(key string) string {
	if vs := f.values[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func (f *listingForm) price() (float64, error) {
	raw := f.value("price")
	if raw == "" {
		return 0, domain.NewValidationError("price is required")
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, domain.NewValidationError("price must be a number")
	}
	return price, nil
}

// jsonStrings decodes a JSON-encoded string array field. Malformed or absent
// values yield nil, matching the tolerant handling listings clients expect.
func (f *listingForm) jsonStrings(key string) []string {
	raw := f.value(key)
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// jsonMedia decodes a JSON-encoded media array field, dropping malformed
// entries.
func (f *listingForm) jsonMedia(key string) []domain.Media {
	raw := f.value(key)
	if raw == "" {
		return nil
	}
	var out []domain.Media
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// openUploads opens every uploaded file and returns them with a cleanup
// function. The caller must invoke cleanup after the service call.
func (f *listingForm) openUploads() ([]ports.FileUpload, func(), error) {
	uploads := make([]ports.FileUpload, 0, len(f.files))
	opened := make([]multipart.File, 0, len(f.files))

	cleanup := func() {
		for _, file := range opened {
			_ = file.Close()
		}
	}

	for _, fh := range f.files {
		file, err := fh.Open()
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		opened = append(opened, file)
		uploads = append(uploads, ports.FileUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     file,
		})
	}

	return uploads, cleanup, nil
}
