package transport

import (
	"context"
	"errors"
	"sync"
	"time"

	"trailhaven/internal/domain"
	"trailhaven/internal/repository"
	"trailhaven/internal/search"
	"trailhaven/internal/service"
	"trailhaven/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

var errStoreDown = errors.New("connection refused")

// Mock repositories for testing
type mockUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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
	m.mu.Lock()
	defer m.mu.Unlock()
	refreshToken, exists := m.tokens[token]
	if !exists || refreshToken.Revoked {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

// authFixture is an auth handler over in-memory repositories
type authFixture struct {
	users   *mockUserRepository
	broker  *session.Broker
	store   *session.Store
	service service.AuthService
	handler *AuthHandler
}

func newAuthFixture() *authFixture {
	users := newMockUserRepository()
	broker := session.NewBroker()
	store := session.NewStore(broker)
	authService := service.NewAuthService(users, newMockRefreshTokenRepository(), broker,
		service.TokenConfig{Secret: testSecret, AccessTTL: time.Minute, RefreshTTL: time.Hour}, zap.NewNop())

	return &authFixture{
		users:   users,
		broker:  broker,
		store:   store,
		service: authService,
		handler: NewAuthHandler(authService, store, zap.NewNop()),
	}
}

// stubCatalogService returns canned data, or err from every fallible call
type stubCatalogService struct {
	detail     *domain.PropertyDetail
	results    []*domain.SearchResult
	reviews    []*domain.Review
	categories []*domain.Category
	err        error

	lastCriteria search.Criteria
	lastReviewID uuid.UUID
}

func (s *stubCatalogService) GetProperties(ctx context.Context) ([]*domain.PropertyListing, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*domain.PropertyListing{}, nil
}

func (s *stubCatalogService) GetPropertyBySlug(ctx context.Context, slug string) (*domain.PropertyDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.detail == nil || s.detail.Slug != slug {
		return nil, repository.ErrPropertyNotFound
	}
	return s.detail, nil
}

func (s *stubCatalogService) GetPropertiesByCategory(ctx context.Context, categorySlug string) ([]*domain.PropertyListing, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, c := range s.categories {
		if c.Slug == categorySlug {
			return []*domain.PropertyListing{}, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (s *stubCatalogService) GetPropertyReviews(ctx context.Context, propertyID uuid.UUID) ([]*domain.Review, error) {
	s.lastReviewID = propertyID
	if s.err != nil {
		return nil, s.err
	}
	return s.reviews, nil
}

func (s *stubCatalogService) GetCategories(ctx context.Context) ([]*domain.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.categories, nil
}

func (s *stubCatalogService) GetLocations(ctx context.Context) ([]*domain.Location, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*domain.Location{}, nil
}

func (s *stubCatalogService) GetLocationsWithCounts(ctx context.Context) ([]*domain.LocationCount, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*domain.LocationCount{}, nil
}

func (s *stubCatalogService) GetAmenities(ctx context.Context) []*domain.Amenity {
	return []*domain.Amenity{}
}

func (s *stubCatalogService) SearchProperties(ctx context.Context, criteria search.Criteria) ([]*domain.SearchResult, error) {
	s.lastCriteria = criteria
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *stubCatalogService) HomePage(ctx context.Context) (*service.HomePage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.HomePage{
		Properties: []*domain.PropertyListing{},
		Categories: s.categories,
		Locations:  []*domain.Location{},
	}, nil
}

func (s *stubCatalogService) SearchPage(ctx context.Context, criteria search.Criteria) (*service.SearchPage, error) {
	results, err := s.SearchProperties(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return &service.SearchPage{
		Categories: s.categories,
		Locations:  []*domain.Location{},
		Amenities:  []*domain.Amenity{},
		Properties: results,
		CityCounts: search.CityCounts(results),
	}, nil
}

// stubBookingService records the last request and answers with err or a
// pending booking
type stubBookingService struct {
	err  error
	last service.BookingRequest
}

func (s *stubBookingService) CreateBooking(ctx context.Context, req service.BookingRequest) (*domain.Booking, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	total := 0.0
	if req.TotalPrice != nil {
		total = *req.TotalPrice
	}
	return &domain.Booking{
		ID:          uuid.New(),
		UserID:      req.UserID,
		PropertyID:  req.PropertyID,
		BookingDate: req.BookingDate,
		Slot:        req.Slot,
		Quantity:    req.Quantity,
		TotalPrice:  total,
		Status:      domain.BookingPending,
		CreatedAt:   time.Now(),
	}, nil
}
