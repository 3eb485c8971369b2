package service

import (
	"context"
	"errors"
	"sync"

	"trailhaven/internal/domain"
	"trailhaven/internal/repository"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("connection refused")

// Mock repositories for testing
type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists || refreshToken.Revoked {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

type mockPropertyRepository struct {
	bySlug  map[string]*domain.PropertyDetail
	results []*domain.SearchResult
	err     error

	mu         sync.Mutex
	lastFilter repository.SearchFilter
}

func newMockPropertyRepository() *mockPropertyRepository {
	return &mockPropertyRepository{bySlug: make(map[string]*domain.PropertyDetail)}
}

func (m *mockPropertyRepository) add(slug string, price float64) *domain.PropertyDetail {
	detail := &domain.PropertyDetail{}
	detail.ID = uuid.New()
	detail.Slug = slug
	detail.Title = slug
	detail.Price = price
	m.bySlug[slug] = detail
	return detail
}

func (m *mockPropertyRepository) List(ctx context.Context) ([]*domain.PropertyListing, error) {
	if m.err != nil {
		return nil, m.err
	}
	listings := []*domain.PropertyListing{}
	for _, d := range m.bySlug {
		listings = append(listings, &domain.PropertyListing{Property: d.Property})
	}
	return listings, nil
}

func (m *mockPropertyRepository) ListByCategory(ctx context.Context, categorySlug string) ([]*domain.PropertyListing, error) {
	if m.err != nil {
		return nil, m.err
	}
	listings := []*domain.PropertyListing{}
	for _, d := range m.bySlug {
		if d.Category != nil && d.Category.Slug == categorySlug {
			listings = append(listings, &domain.PropertyListing{Property: d.Property})
		}
	}
	return listings, nil
}

func (m *mockPropertyRepository) FindBySlug(ctx context.Context, slug string) (*domain.PropertyDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	detail, ok := m.bySlug[slug]
	if !ok {
		return nil, repository.ErrPropertyNotFound
	}
	return detail, nil
}

func (m *mockPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, d := range m.bySlug {
		if d.ID == id {
			p := d.Property
			return &p, nil
		}
	}
	return nil, repository.ErrPropertyNotFound
}

func (m *mockPropertyRepository) Search(ctx context.Context, filter repository.SearchFilter) ([]*domain.SearchResult, error) {
	m.mu.Lock()
	m.lastFilter = filter
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

type mockCategoryRepository struct {
	categories []*domain.Category
	err        error
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.categories, nil
}

func (m *mockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

type mockLocationRepository struct {
	locations []*domain.Location
	err       error
}

func (m *mockLocationRepository) List(ctx context.Context) ([]*domain.Location, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.locations, nil
}

func (m *mockLocationRepository) ListWithCounts(ctx context.Context) ([]*domain.LocationCount, error) {
	if m.err != nil {
		return nil, m.err
	}
	counts := []*domain.LocationCount{}
	for _, l := range m.locations {
		counts = append(counts, &domain.LocationCount{Location: *l})
	}
	return counts, nil
}

type mockAmenityRepository struct {
	amenities []*domain.Amenity
	err       error
}

func (m *mockAmenityRepository) List(ctx context.Context) ([]*domain.Amenity, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.amenities, nil
}

type mockReviewRepository struct {
	reviews map[uuid.UUID][]*domain.Review
}

func (m *mockReviewRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*domain.Review, error) {
	reviews, ok := m.reviews[propertyID]
	if !ok {
		return []*domain.Review{}, nil
	}
	return reviews, nil
}

type mockBookingRepository struct {
	bookings map[uuid.UUID]*domain.Booking
	err      error
}

func newMockBookingRepository() *mockBookingRepository {
	return &mockBookingRepository{bookings: make(map[uuid.UUID]*domain.Booking)}
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	if m.err != nil {
		return m.err
	}
	stored := *booking
	m.bookings[booking.ID] = &stored
	return nil
}
