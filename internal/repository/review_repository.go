package repository

import (
	"context"
	"database/sql"
	"fmt"

	"trailhaven/internal/domain"

	"github.com/google/uuid"
)

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*domain.Review, error)
}

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new instance of ReviewRepository
func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// ListByProperty retrieves a property's reviews with the reviewer name,
// newest first
func (r *reviewRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*domain.Review, error) {
	query := `
		SELECT r.id, r.property_id, r.user_id, COALESCE(u.name, r.user_name, ''),
		       r.rating, COALESCE(r.comment, ''), COALESCE(r.city, ''), r.created_at
		FROM reviews r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.property_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		review := &domain.Review{}
		err := rows.Scan(
			&review.ID,
			&review.PropertyID,
			&review.UserID,
			&review.ReviewerName,
			&review.Rating,
			&review.Comment,
			&review.City,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		if err := contract.Struct(review); err != nil {
			return nil, fmt.Errorf("%w: review %s: %v", ErrMalformedRow, review.ID, err)
		}
		reviews = append(reviews, review)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}
