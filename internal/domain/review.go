package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review of a property. ReviewerName comes from the reviewing user's profile
// and falls back to the name stored on the review itself.
type Review struct {
	ID           uuid.UUID  `json:"id" validate:"required"`
	PropertyID   uuid.UUID  `json:"property_id" validate:"required"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	ReviewerName string     `json:"reviewer_name"`
	Rating       int        `json:"rating" validate:"gte=1,lte=5"`
	Comment      string     `json:"comment,omitempty"`
	City         string     `json:"city,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
