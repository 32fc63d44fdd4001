package domain

import (
	"errors"
	"time"
)

var ErrAnnonceNotFound = errors.New("annonce not found")

// Annonce is the secondary listing type. It shares the residence shape but
// lives in its own collection and is read publicly.
type Annonce struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Location    string    `json:"location" bson:"location"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	Type        string    `json:"type" bson:"type"`
	Price       float64   `json:"price" bson:"price"`
	Media       []Media   `json:"media" bson:"media"`
	Amenities   []string  `json:"amenities" bson:"amenities"`
	Owner       UserID    `json:"owner" bson:"owner"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
