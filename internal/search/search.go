// Package search holds the in-process half of property search: parsing the
// query string, amenity intersection, rating annotation and facet helpers.
package search

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"trailhaven/internal/domain"
)

var ErrInvalidPrice = errors.New("price must be a non-negative number")

// Criteria is the parsed search request. Empty strings, nil prices and an
// empty amenity list are not applied.
type Criteria struct {
	CategorySlug string
	City         string
	MinPrice     *float64
	MaxPrice     *float64
	AmenityIDs   []string
}

// ParseCriteria reads category, city, minPrice, maxPrice and amenities
// (comma separated) from a query string
func ParseCriteria(values url.Values) (Criteria, error) {
	c := Criteria{
		CategorySlug: strings.TrimSpace(values.Get("category")),
		City:         strings.TrimSpace(values.Get("city")),
	}

	var err error
	if c.MinPrice, err = parsePrice(values.Get("minPrice")); err != nil {
		return Criteria{}, fmt.Errorf("minPrice: %w", err)
	}
	if c.MaxPrice, err = parsePrice(values.Get("maxPrice")); err != nil {
		return Criteria{}, fmt.Errorf("maxPrice: %w", err)
	}

	for _, id := range strings.Split(values.Get("amenities"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			c.AmenityIDs = append(c.AmenityIDs, id)
		}
	}

	return c, nil
}

func parsePrice(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, ErrInvalidPrice
	}
	return &v, nil
}

// ContainsAll reports whether every selected id is in linked
func ContainsAll(linked, selected []string) bool {
	if len(selected) == 0 {
		return true
	}

	set := make(map[string]struct{}, len(linked))
	for _, id := range linked {
		set[id] = struct{}{}
	}
	for _, id := range selected {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

// FilterByAmenities keeps the rows linked to every selected amenity.
// Row order is preserved.
func FilterByAmenities(rows []*domain.SearchResult, selected []string) []*domain.SearchResult {
	if len(selected) == 0 {
		return rows
	}

	kept := make([]*domain.SearchResult, 0, len(rows))
	for _, row := range rows {
		if ContainsAll(row.AmenityIDs, selected) {
			kept = append(kept, row)
		}
	}
	return kept
}

// AverageRating is the arithmetic mean of ratings, 0 when there are none
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}

// Annotate fills AverageRating and ReviewCount from each row's ratings
func Annotate(rows []*domain.SearchResult) {
	for _, row := range rows {
		row.AverageRating = AverageRating(row.Ratings)
		row.ReviewCount = len(row.Ratings)
	}
}

// UniqueCities drops locations whose city was already seen. The first
// occurrence wins.
func UniqueCities(locations []*domain.Location) []*domain.Location {
	seen := make(map[string]struct{}, len(locations))
	unique := make([]*domain.Location, 0, len(locations))
	for _, l := range locations {
		if _, ok := seen[l.City]; ok {
			continue
		}
		seen[l.City] = struct{}{}
		unique = append(unique, l)
	}
	return unique
}

// CityCounts counts results per city
func CityCounts(rows []*domain.SearchResult) map[string]int {
	counts := make(map[string]int)
	for _, row := range rows {
		if row.Location == nil {
			continue
		}
		counts[row.Location.City]++
	}
	return counts
}
