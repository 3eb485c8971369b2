package transport

import (
	"errors"
	"net/http"

	"trailhaven/internal/domain"
	"trailhaven/internal/middleware"
	"trailhaven/internal/repository"
	"trailhaven/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBookingRequest represents the booking request payload
type CreateBookingRequest struct {
	PropertyID  string   `json:"property_id" validate:"required,uuid"`
	BookingDate string   `json:"booking_date" validate:"required,datetime=2006-01-02"`
	Slot        string   `json:"slot" validate:"max=64"`
	Quantity    int      `json:"quantity" validate:"required,gte=1"`
	TotalPrice  *float64 `json:"total_price" validate:"omitempty,gte=0"`
	Status      string   `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
}

// BookingHandler handles booking creation
type BookingHandler struct {
	bookings service.BookingService
	logger   *zap.Logger
}

func NewBookingHandler(bookings service.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, logger: logger}
}

// RegisterRoutes registers the booking routes. optionalAuth attaches the
// caller when a valid token is present.
func (h *BookingHandler) RegisterRoutes(r chi.Router, optionalAuth func(http.Handler) http.Handler) {
	r.With(optionalAuth).Post("/api/bookings", h.Create)
}

// Create inserts a booking and returns the stored row
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Booking validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bookingReq := service.BookingRequest{
		PropertyID:  uuid.MustParse(req.PropertyID),
		BookingDate: req.BookingDate,
		Slot:        req.Slot,
		Quantity:    req.Quantity,
		TotalPrice:  req.TotalPrice,
		Status:      domain.BookingStatus(req.Status),
	}
	if userIDStr, ok := middleware.GetUserID(r.Context()); ok {
		if userID, err := uuid.Parse(userIDStr); err == nil {
			bookingReq.UserID = &userID
		}
	}

	booking, err := h.bookings.CreateBooking(r.Context(), bookingReq)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPropertyNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "property not found")
		case errors.Is(err, service.ErrPriceMismatch):
			middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrInvalidQuantity),
			errors.Is(err, service.ErrInvalidBookingDate),
			errors.Is(err, service.ErrInvalidStatus):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to create booking", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create booking")
		}
		return
	}

	h.logger.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("property_id", booking.PropertyID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, booking)
}
