package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"trailhaven/internal/domain"

	"github.com/google/uuid"
)

var ErrPropertyNotFound = errors.New("property not found")

// SearchFilter narrows the search query. Empty strings and nil prices are
// not applied. Both price bounds are inclusive.
type SearchFilter struct {
	CategorySlug string
	City         string
	MinPrice     *float64
	MaxPrice     *float64
}

// PropertyRepository defines the interface for property data access.
// Embedded relations are aggregated as JSON in SQL and decoded into typed
// structs that are validated before they leave the repository.
type PropertyRepository interface {
	List(ctx context.Context) ([]*domain.PropertyListing, error)
	ListByCategory(ctx context.Context, categorySlug string) ([]*domain.PropertyListing, error)
	FindBySlug(ctx context.Context, slug string) (*domain.PropertyDetail, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)
	Search(ctx context.Context, filter SearchFilter) ([]*domain.SearchResult, error)
}

type propertyRepository struct {
	db *sql.DB
}

// NewPropertyRepository creates a new instance of PropertyRepository
func NewPropertyRepository(db *sql.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

const propertyColumns = `
	p.id, p.title, p.slug, COALESCE(p.description, ''), p.price,
	COALESCE(p.duration, ''), p.group_size_min, p.group_size_max,
	COALESCE(p.level, ''), COALESCE(p.season, ''), COALESCE(p.address, ''),
	p.category_id, p.location_id, p.created_by, p.created_at`

const (
	categoryRefJSON = `CASE WHEN c.id IS NULL THEN NULL
		ELSE json_build_object('name', c.name, 'slug', c.slug) END`

	locationRefJSON = `CASE WHEN l.id IS NULL THEN NULL
		ELSE json_build_object('city', l.city, 'state', l.state) END`

	categoryJSON = `CASE WHEN c.id IS NULL THEN NULL
		ELSE json_build_object('id', c.id, 'name', c.name, 'slug', c.slug,
			'icon', COALESCE(c.icon, ''), 'image_url', COALESCE(c.image_url, ''),
			'created_at', c.created_at) END`

	locationJSON = `CASE WHEN l.id IS NULL THEN NULL
		ELSE json_build_object('id', l.id, 'city', l.city, 'state', l.state,
			'country', l.country, 'created_at', l.created_at) END`

	imagesJSON = `COALESCE((
		SELECT json_agg(json_build_object('id', i.id, 'property_id', i.property_id,
			'image_url', i.image_url, 'is_primary', i.is_primary, 'created_at', i.created_at)
			ORDER BY i.is_primary DESC, i.created_at ASC)
		FROM property_images i WHERE i.property_id = p.id), '[]')`

	amenitiesJSON = `COALESCE((
		SELECT json_agg(json_build_object('id', a.id, 'name', a.name, 'icon', COALESCE(a.icon, ''))
			ORDER BY a.name ASC)
		FROM property_amenities pa JOIN amenities a ON a.id = pa.amenity_id
		WHERE pa.property_id = p.id), '[]')`

	reviewsJSON = `COALESCE((
		SELECT json_agg(json_build_object('id', r.id, 'property_id', r.property_id,
			'user_id', r.user_id, 'reviewer_name', COALESCE(u.name, r.user_name, ''),
			'rating', r.rating, 'comment', COALESCE(r.comment, ''),
			'city', COALESCE(r.city, ''), 'created_at', r.created_at)
			ORDER BY r.created_at DESC)
		FROM reviews r LEFT JOIN users u ON u.id = r.user_id
		WHERE r.property_id = p.id), '[]')`

	ratingsJSON = `COALESCE((
		SELECT json_agg(r.rating) FROM reviews r WHERE r.property_id = p.id), '[]')`

	amenityIDsJSON = `COALESCE((
		SELECT json_agg(pa.amenity_id) FROM property_amenities pa WHERE pa.property_id = p.id), '[]')`
)

// List retrieves all properties with their category, location and images,
// newest first
func (r *propertyRepository) List(ctx context.Context) ([]*domain.PropertyListing, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM properties p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN locations l ON l.id = p.location_id
		ORDER BY p.created_at DESC
	`, propertyColumns, categoryRefJSON, locationRefJSON, imagesJSON)

	return r.queryListings(ctx, query)
}

// ListByCategory retrieves the listings of one category, newest first
func (r *propertyRepository) ListByCategory(ctx context.Context, categorySlug string) ([]*domain.PropertyListing, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM properties p
		INNER JOIN categories c ON c.id = p.category_id
		LEFT JOIN locations l ON l.id = p.location_id
		WHERE c.slug = $1
		ORDER BY p.created_at DESC
	`, propertyColumns, categoryRefJSON, locationRefJSON, imagesJSON)

	return r.queryListings(ctx, query, categorySlug)
}

func (r *propertyRepository) queryListings(ctx context.Context, query string, args ...interface{}) ([]*domain.PropertyListing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	listings := []*domain.PropertyListing{}
	for rows.Next() {
		listing := &domain.PropertyListing{}
		var categoryRaw, locationRaw, imagesRaw []byte

		if err := rows.Scan(append(propertyDest(&listing.Property), &categoryRaw, &locationRaw, &imagesRaw)...); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		if err := decodeListingRelations(listing, categoryRaw, locationRaw, imagesRaw); err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating properties: %w", err)
	}

	return listings, nil
}

// FindBySlug retrieves one property with category, location, images,
// amenities and reviews embedded
func (r *propertyRepository) FindBySlug(ctx context.Context, slug string) (*domain.PropertyDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM properties p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN locations l ON l.id = p.location_id
		WHERE p.slug = $1
	`, propertyColumns, categoryJSON, locationJSON, imagesJSON, amenitiesJSON, reviewsJSON)

	detail := &domain.PropertyDetail{}
	var categoryRaw, locationRaw, imagesRaw, amenitiesRaw, reviewsRaw []byte

	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		append(propertyDest(&detail.Property), &categoryRaw, &locationRaw, &imagesRaw, &amenitiesRaw, &reviewsRaw)...,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to find property by slug: %w", err)
	}

	if detail.Category, err = decodeObject[domain.Category](categoryRaw, "category"); err != nil {
		return nil, err
	}
	if detail.Location, err = decodeObject[domain.Location](locationRaw, "location"); err != nil {
		return nil, err
	}
	if detail.Images, err = decodeList[domain.PropertyImage](imagesRaw, "images"); err != nil {
		return nil, err
	}
	if detail.Amenities, err = decodeList[domain.Amenity](amenitiesRaw, "amenities"); err != nil {
		return nil, err
	}
	if detail.Reviews, err = decodeList[domain.Review](reviewsRaw, "reviews"); err != nil {
		return nil, err
	}

	return detail, nil
}

// FindByID retrieves the bare property row
func (r *propertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties p WHERE p.id = $1`

	property := &domain.Property{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(propertyDest(property)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to find property by ID: %w", err)
	}

	return property, nil
}

// Search composes a single query: inner joins on category and location,
// optional equality filters on category slug and city, and inclusive price
// bounds. Rows come back newest first with their review ratings and linked
// amenity ids so amenity filtering and rating aggregation can run in-process.
func (r *propertyRepository) Search(ctx context.Context, filter SearchFilter) ([]*domain.SearchResult, error) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.CategorySlug != "" {
		conditions = append(conditions, fmt.Sprintf("c.slug = $%d", argIndex))
		args = append(args, filter.CategorySlug)
		argIndex++
	}

	if filter.City != "" {
		conditions = append(conditions, fmt.Sprintf("l.city = $%d", argIndex))
		args = append(args, filter.City)
		argIndex++
	}

	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("p.price >= $%d", argIndex))
		args = append(args, *filter.MinPrice)
		argIndex++
	}

	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("p.price <= $%d", argIndex))
		args = append(args, *filter.MaxPrice)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM properties p
		INNER JOIN categories c ON c.id = p.category_id
		INNER JOIN locations l ON l.id = p.location_id
		%s
		ORDER BY p.created_at DESC
	`, propertyColumns, categoryRefJSON, locationRefJSON, imagesJSON, ratingsJSON, amenityIDsJSON, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}
	defer rows.Close()

	results := []*domain.SearchResult{}
	for rows.Next() {
		result := &domain.SearchResult{}
		var categoryRaw, locationRaw, imagesRaw, ratingsRaw, amenityIDsRaw []byte

		err := rows.Scan(append(propertyDest(&result.Property),
			&categoryRaw, &locationRaw, &imagesRaw, &ratingsRaw, &amenityIDsRaw)...)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}

		if err := decodeListingRelations(&result.PropertyListing, categoryRaw, locationRaw, imagesRaw); err != nil {
			return nil, err
		}
		if result.Ratings, err = decodeRatings(ratingsRaw); err != nil {
			return nil, err
		}
		if result.AmenityIDs, err = decodeIDs(amenityIDsRaw, "amenity_ids"); err != nil {
			return nil, err
		}

		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return results, nil
}

func propertyDest(p *domain.Property) []interface{} {
	return []interface{}{
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Description,
		&p.Price,
		&p.Duration,
		&p.GroupSizeMin,
		&p.GroupSizeMax,
		&p.Level,
		&p.Season,
		&p.Address,
		&p.CategoryID,
		&p.LocationID,
		&p.CreatedBy,
		&p.CreatedAt,
	}
}

func decodeListingRelations(listing *domain.PropertyListing, categoryRaw, locationRaw, imagesRaw []byte) error {
	var err error
	if listing.Category, err = decodeObject[domain.CategoryRef](categoryRaw, "category"); err != nil {
		return err
	}
	if listing.Location, err = decodeObject[domain.LocationRef](locationRaw, "location"); err != nil {
		return err
	}
	if listing.Images, err = decodeList[domain.PropertyImage](imagesRaw, "images"); err != nil {
		return err
	}
	return nil
}
