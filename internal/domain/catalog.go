package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category groups properties for filter facets and marketing tiles
type Category struct {
	ID        uuid.UUID `json:"id" db:"id" validate:"required"`
	Name      string    `json:"name" db:"name" validate:"required"`
	Slug      string    `json:"slug" db:"slug" validate:"required"`
	Icon      string    `json:"icon,omitempty" db:"icon"`
	ImageURL  string    `json:"image_url,omitempty" db:"image_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CategoryRef is the slice of a category embedded in listings
type CategoryRef struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required"`
}

type Location struct {
	ID        uuid.UUID `json:"id" db:"id" validate:"required"`
	City      string    `json:"city" db:"city" validate:"required"`
	State     string    `json:"state" db:"state"`
	Country   string    `json:"country" db:"country"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LocationRef is the slice of a location embedded in listings
type LocationRef struct {
	City  string `json:"city" validate:"required"`
	State string `json:"state"`
}

// LocationCount is a location together with the number of properties in it
type LocationCount struct {
	Location
	PropertyCount int `json:"property_count"`
}

type Amenity struct {
	ID   uuid.UUID `json:"id" db:"id" validate:"required"`
	Name string    `json:"name" db:"name" validate:"required"`
	Icon string    `json:"icon,omitempty" db:"icon"`
}
