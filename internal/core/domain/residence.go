package domain

import (
	"errors"
	"time"
)

// Price bounds in FCFA per night.
const (
	MinPrice = 1000
	MaxPrice = 1000000
)

const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 1000
	MaxMediaFiles     = 10
)

var ErrResidenceNotFound = errors.New("residence not found")
var ErrDuplicateReference = errors.New("reference already in use")
var ErrForbidden = errors.New("access forbidden")

// MediaKind distinguishes the two supported media types.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Media is a single uploaded file attached to a listing. Order is
// significant: listings render media in the order stored.
type Media struct {
	URL  string    `json:"url" bson:"url"`
	Kind MediaKind `json:"type" bson:"type"`
}

// residenceTypes is the closed set of accepted listing types.
var residenceTypes = map[string]struct{}{
	"Hôtel":       {},
	"Appartement": {},
	"Villa":       {},
	"Studio":      {},
	"Suite":       {},
	"Chambre":     {},
}

// ValidResidenceType reports whether t is an accepted listing type.
func ValidResidenceType(t string) bool {
	_, ok := residenceTypes[t]
	return ok
}

// ResidenceTypes returns the accepted listing types, for error messages.
func ResidenceTypes() []string {
	return []string{"Hôtel", "Appartement", "Villa", "Studio", "Suite", "Chambre"}
}

// Residence is a rentable property listing. Owner never changes after
// creation; mutations require the owner or an admin.
type Residence struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Location    string    `json:"location" bson:"location"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	Reference   string    `json:"reference,omitempty" bson:"reference,omitempty"`
	Type        string    `json:"type" bson:"type"`
	Price       float64   `json:"price" bson:"price"`
	Media       []Media   `json:"media" bson:"media"`
	Amenities   []string  `json:"amenities" bson:"amenities"`
	Owner       UserID    `json:"owner" bson:"owner"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// CanModify reports whether the given identity may mutate this listing.
func (r *Residence) CanModify(id Identity) bool {
	return r.Owner == id.ID || id.Role == RoleAdmin
}
