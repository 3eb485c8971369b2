package service

import (
	"context"
	"errors"
	"fmt"

	"trailhaven/internal/domain"
	"trailhaven/internal/metrics"
	"trailhaven/internal/repository"
	"trailhaven/internal/search"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// HomePage is everything the landing page renders
type HomePage struct {
	Properties []*domain.PropertyListing `json:"properties"`
	Categories []*domain.Category        `json:"categories"`
	Locations  []*domain.Location        `json:"locations"`
}

// SearchPage is the search results together with the filter facets.
// Locations are de-duplicated by city.
type SearchPage struct {
	Categories []*domain.Category     `json:"categories"`
	Locations  []*domain.Location     `json:"locations"`
	Amenities  []*domain.Amenity      `json:"amenities"`
	Properties []*domain.SearchResult `json:"properties"`
	CityCounts map[string]int         `json:"cityCounts"`
}

// CatalogService is the read side of the marketplace
type CatalogService interface {
	GetProperties(ctx context.Context) ([]*domain.PropertyListing, error)
	GetPropertyBySlug(ctx context.Context, slug string) (*domain.PropertyDetail, error)
	GetPropertiesByCategory(ctx context.Context, categorySlug string) ([]*domain.PropertyListing, error)
	GetPropertyReviews(ctx context.Context, propertyID uuid.UUID) ([]*domain.Review, error)
	GetCategories(ctx context.Context) ([]*domain.Category, error)
	GetLocations(ctx context.Context) ([]*domain.Location, error)
	GetLocationsWithCounts(ctx context.Context) ([]*domain.LocationCount, error)
	GetAmenities(ctx context.Context) []*domain.Amenity
	SearchProperties(ctx context.Context, criteria search.Criteria) ([]*domain.SearchResult, error)
	HomePage(ctx context.Context) (*HomePage, error)
	SearchPage(ctx context.Context, criteria search.Criteria) (*SearchPage, error)
}

type catalogService struct {
	properties repository.PropertyRepository
	categories repository.CategoryRepository
	locations  repository.LocationRepository
	amenities  repository.AmenityRepository
	reviews    repository.ReviewRepository
	logger     *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	properties repository.PropertyRepository,
	categories repository.CategoryRepository,
	locations repository.LocationRepository,
	amenities repository.AmenityRepository,
	reviews repository.ReviewRepository,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		properties: properties,
		categories: categories,
		locations:  locations,
		amenities:  amenities,
		reviews:    reviews,
		logger:     logger,
	}
}

func (s *catalogService) GetProperties(ctx context.Context) ([]*domain.PropertyListing, error) {
	return s.properties.List(ctx)
}

// GetPropertyBySlug returns repository.ErrPropertyNotFound for an unknown
// slug
func (s *catalogService) GetPropertyBySlug(ctx context.Context, slug string) (*domain.PropertyDetail, error) {
	return s.properties.FindBySlug(ctx, slug)
}

// GetPropertiesByCategory returns repository.ErrCategoryNotFound for an
// unknown slug and an empty list for a category without properties
func (s *catalogService) GetPropertiesByCategory(ctx context.Context, categorySlug string) ([]*domain.PropertyListing, error) {
	if _, err := s.categories.FindBySlug(ctx, categorySlug); err != nil {
		return nil, err
	}
	return s.properties.ListByCategory(ctx, categorySlug)
}

func (s *catalogService) GetPropertyReviews(ctx context.Context, propertyID uuid.UUID) ([]*domain.Review, error) {
	return s.reviews.ListByProperty(ctx, propertyID)
}

func (s *catalogService) GetCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *catalogService) GetLocations(ctx context.Context) ([]*domain.Location, error) {
	return s.locations.List(ctx)
}

func (s *catalogService) GetLocationsWithCounts(ctx context.Context) ([]*domain.LocationCount, error) {
	return s.locations.ListWithCounts(ctx)
}

// GetAmenities never fails: a store error degrades to an empty list
func (s *catalogService) GetAmenities(ctx context.Context) []*domain.Amenity {
	amenities, err := s.amenities.List(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("Failed to load amenities, continuing without them", zap.Error(err))
		}
		metrics.ObserveFacetFallback("amenities")
		return []*domain.Amenity{}
	}
	return amenities
}

// SearchProperties runs the SQL search, then keeps the rows linked to every
// selected amenity and annotates each survivor with its rating summary
func (s *catalogService) SearchProperties(ctx context.Context, criteria search.Criteria) ([]*domain.SearchResult, error) {
	rows, err := s.properties.Search(ctx, repository.SearchFilter{
		CategorySlug: criteria.CategorySlug,
		City:         criteria.City,
		MinPrice:     criteria.MinPrice,
		MaxPrice:     criteria.MaxPrice,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}

	rows = search.FilterByAmenities(rows, criteria.AmenityIDs)
	search.Annotate(rows)
	return rows, nil
}

// HomePage loads properties, categories and locations concurrently
func (s *catalogService) HomePage(ctx context.Context) (*HomePage, error) {
	page := &HomePage{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		page.Properties, err = s.GetProperties(gctx)
		return err
	})
	g.Go(func() (err error) {
		page.Categories, err = s.GetCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		page.Locations, err = s.GetLocations(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return page, nil
}

// SearchPage loads the facets and the search results concurrently
func (s *catalogService) SearchPage(ctx context.Context, criteria search.Criteria) (*SearchPage, error) {
	page := &SearchPage{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		page.Categories, err = s.GetCategories(gctx)
		return err
	})
	g.Go(func() error {
		locations, err := s.GetLocations(gctx)
		if err != nil {
			return err
		}
		page.Locations = search.UniqueCities(locations)
		return nil
	})
	g.Go(func() error {
		page.Amenities = s.GetAmenities(gctx)
		return nil
	})
	g.Go(func() (err error) {
		page.Properties, err = s.SearchProperties(gctx, criteria)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	page.CityCounts = search.CityCounts(page.Properties)
	return page, nil
}
