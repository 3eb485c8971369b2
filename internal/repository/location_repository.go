package repository

import (
	"context"
	"database/sql"
	"fmt"

	"trailhaven/internal/domain"
)

// LocationRepository defines the interface for location data access
type LocationRepository interface {
	List(ctx context.Context) ([]*domain.Location, error)
	ListWithCounts(ctx context.Context) ([]*domain.LocationCount, error)
}

type locationRepository struct {
	db *sql.DB
}

// NewLocationRepository creates a new instance of LocationRepository
func NewLocationRepository(db *sql.DB) LocationRepository {
	return &locationRepository{db: db}
}

// List retrieves all locations ordered by city
func (r *locationRepository) List(ctx context.Context) ([]*domain.Location, error) {
	query := `
		SELECT id, city, state, country, created_at
		FROM locations
		ORDER BY city ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	locations := []*domain.Location{}
	for rows.Next() {
		location := &domain.Location{}
		err := rows.Scan(
			&location.ID,
			&location.City,
			&location.State,
			&location.Country,
			&location.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, location)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}

	return locations, nil
}

// ListWithCounts retrieves every location with the number of properties
// attached to it
func (r *locationRepository) ListWithCounts(ctx context.Context) ([]*domain.LocationCount, error) {
	query := `
		SELECT l.id, l.city, l.state, l.country, l.created_at, COUNT(p.id)
		FROM locations l
		LEFT JOIN properties p ON p.location_id = l.id
		GROUP BY l.id
		ORDER BY l.city ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list location counts: %w", err)
	}
	defer rows.Close()

	counts := []*domain.LocationCount{}
	for rows.Next() {
		lc := &domain.LocationCount{}
		err := rows.Scan(
			&lc.ID,
			&lc.City,
			&lc.State,
			&lc.Country,
			&lc.CreatedAt,
			&lc.PropertyCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location count: %w", err)
		}
		counts = append(counts, lc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating location counts: %w", err)
	}

	return counts, nil
}
