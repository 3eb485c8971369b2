package server

import (
	"fmt"
	"net/http"
	"time"

	"trailhaven/internal/config"
	"trailhaven/internal/database"
	"trailhaven/internal/metrics"
	custommiddleware "trailhaven/internal/middleware"
	"trailhaven/internal/repository"
	"trailhaven/internal/service"
	"trailhaven/internal/session"
	"trailhaven/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config   *config.Config
	logger   *zap.Logger
	db       database.Service
	redis    *redis.Client
	sessions *session.Store
	// stops the auth event counter
	stopMetrics func()
}

// NewServer wires repositories, services and handlers onto one router.
// redisClient may be nil, which disables rate limiting. An invalid config,
// such as a missing signing key, is rejected before anything is wired.
func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(metrics.Middleware)
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health()
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})
	router.Method(http.MethodGet, "/metrics", metrics.Handler(metrics.InitRegistry()))

	broker := session.NewBroker()
	sessions := session.NewStore(broker)
	stopMetrics := metrics.CountAuthEvents(broker)

	// Initialize repositories
	sqlDB := db.DB()
	userRepo := repository.NewUserRepository(sqlDB)
	refreshTokenRepo := repository.NewRefreshTokenRepository(sqlDB)
	propertyRepo := repository.NewPropertyRepository(sqlDB)
	categoryRepo := repository.NewCategoryRepository(sqlDB)
	locationRepo := repository.NewLocationRepository(sqlDB)
	amenityRepo := repository.NewAmenityRepository(sqlDB)
	reviewRepo := repository.NewReviewRepository(sqlDB)
	bookingRepo := repository.NewBookingRepository(sqlDB)

	// Initialize services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, broker, service.TokenConfig{
		Secret:     cfg.Backend.Key,
		AccessTTL:  time.Duration(cfg.Auth.AccessExpiry) * time.Minute,
		RefreshTTL: time.Duration(cfg.Auth.RefreshExpiry) * 24 * time.Hour,
	}, logger)
	catalogService := service.NewCatalogService(propertyRepo, categoryRepo, locationRepo, amenityRepo, reviewRepo, logger)
	bookingService := service.NewBookingService(bookingRepo, propertyRepo)

	// Initialize handlers
	authHandler := transport.NewAuthHandler(authService, sessions, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	bookingHandler := transport.NewBookingHandler(bookingService, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.Backend.Key, logger)
	optionalAuth := custommiddleware.OptionalAuth(cfg.Backend.Key, logger)
	rateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            time.Duration(cfg.RateLimit.Window) * time.Second,
		KeyPrefix:         "rate_limit:auth",
	}, logger)

	// Register routes
	authHandler.RegisterRoutes(router, authMiddleware, rateLimit)
	catalogHandler.RegisterRoutes(router)
	bookingHandler.RegisterRoutes(router, optionalAuth)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		db:          db,
		redis:       redisClient,
		sessions:    sessions,
		stopMetrics: stopMetrics,
	}

	return server, nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	s.stopMetrics()
	s.sessions.Close()

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
