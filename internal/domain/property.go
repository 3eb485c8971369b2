package domain

import (
	"time"

	"github.com/google/uuid"
)

// Property is a bookable listing: a villa, an activity or an experience
type Property struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	Slug         string     `json:"slug" db:"slug"`
	Description  string     `json:"description,omitempty" db:"description"`
	Price        float64    `json:"price" db:"price"`
	Duration     string     `json:"duration,omitempty" db:"duration"`
	GroupSizeMin *int       `json:"group_size_min,omitempty" db:"group_size_min"`
	GroupSizeMax *int       `json:"group_size_max,omitempty" db:"group_size_max"`
	Level        string     `json:"level,omitempty" db:"level"`
	Season       string     `json:"season,omitempty" db:"season"`
	Address      string     `json:"address,omitempty" db:"address"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty" db:"category_id"`
	LocationID   *uuid.UUID `json:"location_id,omitempty" db:"location_id"`
	CreatedBy    *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

type PropertyImage struct {
	ID         uuid.UUID `json:"id" validate:"required"`
	PropertyID uuid.UUID `json:"property_id" validate:"required"`
	ImageURL   string    `json:"image_url" validate:"required"`
	IsPrimary  bool      `json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
}

// PropertyListing is the card shape used by home, category and search pages
type PropertyListing struct {
	Property
	Category *CategoryRef    `json:"category,omitempty"`
	Location *LocationRef    `json:"location,omitempty"`
	Images   []PropertyImage `json:"images"`
}

// PropertyDetail is the full shape rendered by the detail/booking page
type PropertyDetail struct {
	Property
	Category  *Category       `json:"category,omitempty"`
	Location  *Location       `json:"location,omitempty"`
	Images    []PropertyImage `json:"images"`
	Amenities []Amenity       `json:"amenities"`
	Reviews   []Review        `json:"reviews"`
}

// SearchResult is a listing returned by the search page. Ratings and
// AmenityIDs are fetched with the row; AverageRating and ReviewCount are
// derived from Ratings after filtering.
type SearchResult struct {
	PropertyListing
	AmenityIDs    []string `json:"amenity_ids"`
	Ratings       []int    `json:"-"`
	AverageRating float64  `json:"averageRating"`
	ReviewCount   int      `json:"reviewCount"`
}
