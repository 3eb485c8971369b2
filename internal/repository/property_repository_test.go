package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestPropertyRepository_SearchPriceBoundsAreInclusive(t *testing.T) {
	resetCatalog(t)
	ctx := context.Background()
	repo := NewPropertyRepository(testDB)

	categoryID := insertCategory(t, "Luxury Villas", "luxury-villas")
	locationID := insertLocation(t, "Lonavala", "Maharashtra")
	now := time.Now()

	insertProperty(t, "just-below", 9999, categoryID, locationID, now.Add(-4*time.Hour))
	insertProperty(t, "lower-edge", 10000, categoryID, locationID, now.Add(-3*time.Hour))
	insertProperty(t, "upper-edge", 25000, categoryID, locationID, now.Add(-2*time.Hour))
	insertProperty(t, "just-above", 25001, categoryID, locationID, now.Add(-1*time.Hour))

	results, err := repo.Search(ctx, SearchFilter{MinPrice: floatPtr(10000), MaxPrice: floatPtr(25000)})
	require.NoError(t, err)

	slugs := []string{}
	for _, r := range results {
		slugs = append(slugs, r.Slug)
	}
	assert.Equal(t, []string{"upper-edge", "lower-edge"}, slugs)
}

func TestPropertyRepository_SearchFiltersByCategoryAndCity(t *testing.T) {
	resetCatalog(t)
	ctx := context.Background()
	repo := NewPropertyRepository(testDB)

	villas := insertCategory(t, "Luxury Villas", "luxury-villas")
	rafting := insertCategory(t, "River Rafting", "river-rafting")
	lonavala := insertLocation(t, "Lonavala", "Maharashtra")
	rishikesh := insertLocation(t, "Rishikesh", "Uttarakhand")
	now := time.Now()

	insertProperty(t, "villa-lonavala", 7000, villas, lonavala, now.Add(-3*time.Hour))
	insertProperty(t, "villa-rishikesh", 8000, villas, rishikesh, now.Add(-2*time.Hour))
	insertProperty(t, "rafting-rishikesh", 1500, rafting, rishikesh, now.Add(-1*time.Hour))

	results, err := repo.Search(ctx, SearchFilter{CategorySlug: "luxury-villas", City: "Rishikesh"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "villa-rishikesh", results[0].Slug)
	require.NotNil(t, results[0].Category)
	assert.Equal(t, "luxury-villas", results[0].Category.Slug)
	require.NotNil(t, results[0].Location)
	assert.Equal(t, "Rishikesh", results[0].Location.City)

	all, err := repo.Search(ctx, SearchFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "rafting-rishikesh", all[0].Slug, "newest first")
}

func TestPropertyRepository_SearchEmbedsRatingsAndAmenityIDs(t *testing.T) {
	resetCatalog(t)
	ctx := context.Background()
	repo := NewPropertyRepository(testDB)

	categoryID := insertCategory(t, "Luxury Villas", "luxury-villas")
	locationID := insertLocation(t, "Lonavala", "Maharashtra")
	propertyID := insertProperty(t, "hashtag-villa", 7000, categoryID, locationID, time.Now())
	pool := insertAmenity(t, "Private Pool")
	wifi := insertAmenity(t, "Wifi")
	linkAmenity(t, propertyID, pool)
	linkAmenity(t, propertyID, wifi)
	insertReview(t, propertyID, "Rahul Sharma", 5)
	insertReview(t, propertyID, "Priya V.", 4)

	results, err := repo.Search(ctx, SearchFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.ElementsMatch(t, []string{pool.String(), wifi.String()}, results[0].AmenityIDs)
	assert.ElementsMatch(t, []int{5, 4}, results[0].Ratings)
}

func TestPropertyRepository_SearchSkipsPropertiesWithoutCategoryOrLocation(t *testing.T) {
	resetCatalog(t)
	ctx := context.Background()
	repo := NewPropertyRepository(testDB)

	categoryID := insertCategory(t, "Camping", "camping")
	locationID := insertLocation(t, "Pawna", "Maharashtra")
	insertProperty(t, "linked", 2000, categoryID, locationID, time.Now())
	_, err := testDB.Exec(`INSERT INTO properties (title, slug, price) VALUES ('Orphan', 'orphan', 100)`)
	require.NoError(t, err)

	results, err := repo.Search(ctx, SearchFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "linked", results[0].Slug)

	listings, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listings, 2, "the plain listing does not require category or location")
}

func TestPropertyRepository_FindBySlug(t *testing.T) {
	resetCatalog(t)
	ctx := context.Background()
	repo := NewPropertyRepository(testDB)

	categoryID := insertCategory(t, "Luxury Villas", "luxury-villas")
	locationID := insertLocation(t, "Lonavala", "Maharashtra")
	propertyID := insertProperty(t, "hashtag-villa", 7000, categoryID, locationID, time.Now())
	insertImage(t, propertyID, "https://cdn.example.com/secondary.jpg", false)
	insertImage(t, propertyID, "https://cdn.example.com/primary.jpg", true)
	linkAmenity(t, propertyID, insertAmenity(t, "Bonfire"))
	insertReview(t, propertyID, "Amit K.", 5)

	detail, err := repo.FindBySlug(ctx, "hashtag-villa")
	require.NoError(t, err)

	assert.Equal(t, propertyID, detail.ID)
	assert.InDelta(t, 7000, detail.Price, 0.001)
	require.NotNil(t, detail.Category)
	assert.Equal(t, "Luxury Villas", detail.Category.Name)
	require.NotNil(t, detail.Location)
	assert.Equal(t, "India", detail.Location.Country)
	require.Len(t, detail.Images, 2)
	assert.True(t, detail.Images[0].IsPrimary, "primary image comes first")
	require.Len(t, detail.Amenities, 1)
	assert.Equal(t, "Bonfire", detail.Amenities[0].Name)
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, "Amit K.", detail.Reviews[0].ReviewerName)
}

func TestPropertyRepository_FindBySlugNotFound(t *testing.T) {
	resetCatalog(t)
	repo := NewPropertyRepository(testDB)

	_, err := repo.FindBySlug(context.Background(), "does-not-exist")
	assert.True(t, errors.Is(err, ErrPropertyNotFound))
}

func TestPropertyRepository_ListByCategory(t *testing.T) {
	resetCatalog(t)
	ctx := context.Background()
	repo := NewPropertyRepository(testDB)

	villas := insertCategory(t, "Luxury Villas", "luxury-villas")
	sailing := insertCategory(t, "Luxury Sailing", "luxury-sailing")
	goa := insertLocation(t, "Goa", "Goa")
	insertProperty(t, "villa", 9000, villas, goa, time.Now())
	insertProperty(t, "yacht", 15000, sailing, goa, time.Now())

	listings, err := repo.ListByCategory(ctx, "luxury-sailing")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "yacht", listings[0].Slug)
	assert.Empty(t, listings[0].Images)
}

// Feature: trailhaven, Property: Search never returns a price outside the requested range
func TestProperty_SearchRespectsPriceRange(t *testing.T) {
	resetCatalog(t)
	ctx := context.Background()
	repo := NewPropertyRepository(testDB)

	categoryID := insertCategory(t, "Treks", "treks")
	locationID := insertLocation(t, "Manali", "Himachal Pradesh")
	prices := []float64{0, 999, 5000, 9999, 10000, 17500, 25000, 25001, 50000, 1000000}
	for i, price := range prices {
		insertProperty(t, fmt.Sprintf("trek-%d", i), price, categoryID, locationID, time.Now())
	}

	properties := gopter.NewProperties(nil)

	properties.Property("every result lies within [min, max] and every in-range price is returned", prop.ForAll(
		func(a, b float64) bool {
			minPrice, maxPrice := a, b
			if minPrice > maxPrice {
				minPrice, maxPrice = maxPrice, minPrice
			}

			results, err := repo.Search(ctx, SearchFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})
			if err != nil {
				t.Logf("FAIL: search returned error: %v", err)
				return false
			}

			expected := 0
			for _, price := range prices {
				if price >= minPrice && price <= maxPrice {
					expected++
				}
			}

			for _, r := range results {
				if r.Price < minPrice || r.Price > maxPrice {
					t.Logf("FAIL: price %f outside [%f, %f]", r.Price, minPrice, maxPrice)
					return false
				}
			}
			return len(results) == expected
		},
		gen.OneConstOf(0.0, 999.0, 9999.0, 10000.0, 25000.0, 50000.0),
		gen.OneConstOf(1000.0, 10000.0, 25000.0, 25001.0, 1000000.0),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
