package repository

import (
	"context"
	"database/sql"
	"fmt"

	"trailhaven/internal/domain"
)

type AmenityRepository interface {
	List(ctx context.Context) ([]*domain.Amenity, error)
}

type amenityRepository struct {
	db *sql.DB
}

func NewAmenityRepository(db *sql.DB) AmenityRepository {
	return &amenityRepository{db: db}
}

// List retrieves all amenities ordered by name
func (r *amenityRepository) List(ctx context.Context) ([]*domain.Amenity, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, COALESCE(icon, '') FROM amenities ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list amenities: %w", err)
	}
	defer rows.Close()

	amenities := []*domain.Amenity{}
	for rows.Next() {
		amenity := &domain.Amenity{}
		if err := rows.Scan(&amenity.ID, &amenity.Name, &amenity.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan amenity: %w", err)
		}
		amenities = append(amenities, amenity)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating amenities: %w", err)
	}

	return amenities, nil
}
