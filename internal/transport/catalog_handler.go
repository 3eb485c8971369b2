package transport

import (
	"errors"
	"net/http"

	"trailhaven/internal/middleware"
	"trailhaven/internal/repository"
	"trailhaven/internal/search"
	"trailhaven/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogHandler serves the read-only page data: home, search, property
// detail and the filter facets
type CatalogHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

func NewCatalogHandler(catalog service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/home", h.Home)
	r.Get("/api/search", h.Search)

	r.Route("/api/properties", func(r chi.Router) {
		r.Get("/", h.ListProperties)
		r.Get("/{slug}", h.GetProperty)
		r.Get("/{slug}/reviews", h.ListReviews)
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Get("/{slug}/properties", h.ListCategoryProperties)
	})

	r.Get("/api/locations", h.ListLocations)
	r.Get("/api/locations/counts", h.ListLocationCounts)
	r.Get("/api/amenities", h.ListAmenities)
}

func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.HomePage(r.Context())
	if err != nil {
		h.fail(w, err, "failed to load home page")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// Search handles the search page. Bad price bounds are a 400.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	criteria, err := search.ParseCriteria(r.URL.Query())
	if err != nil {
		h.logger.Debug("Invalid search query", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.catalog.SearchPage(r.Context(), criteria)
	if err != nil {
		h.fail(w, err, "failed to search properties")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := h.catalog.GetProperties(r.Context())
	if err != nil {
		h.fail(w, err, "failed to load properties")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, properties)
}

// GetProperty returns the property detail. Every failure is reported to the
// client as not found; only the log tells a missing row from a store error.
func (h *CatalogHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	property, err := h.catalog.GetPropertyBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			h.logger.Debug("Property not found", zap.String("slug", slug))
		} else {
			h.logger.Error("Failed to load property", zap.String("slug", slug), zap.Error(err))
		}
		middleware.RespondWithError(w, http.StatusNotFound, "property not found")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, property)
}

func (h *CatalogHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(chi.URLParam(r, "slug"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid property ID")
		return
	}

	reviews, err := h.catalog.GetPropertyReviews(r.Context(), propertyID)
	if err != nil {
		h.fail(w, err, "failed to load reviews")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, reviews)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.GetCategories(r.Context())
	if err != nil {
		h.fail(w, err, "failed to load categories")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) ListCategoryProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := h.catalog.GetPropertiesByCategory(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		h.fail(w, err, "failed to load properties")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, properties)
}

func (h *CatalogHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.catalog.GetLocations(r.Context())
	if err != nil {
		h.fail(w, err, "failed to load locations")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, locations)
}

func (h *CatalogHandler) ListLocationCounts(w http.ResponseWriter, r *http.Request) {
	locations, err := h.catalog.GetLocationsWithCounts(r.Context())
	if err != nil {
		h.fail(w, err, "failed to load locations")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, locations)
}

// ListAmenities always succeeds, see CatalogService.GetAmenities
func (h *CatalogHandler) ListAmenities(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.GetAmenities(r.Context()))
}

func (h *CatalogHandler) fail(w http.ResponseWriter, err error, message string) {
	h.logger.Error(message, zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, message)
}
