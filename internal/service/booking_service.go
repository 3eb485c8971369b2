package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"trailhaven/internal/domain"
	"trailhaven/internal/metrics"
	"trailhaven/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrInvalidBookingDate = errors.New("booking date must be a YYYY-MM-DD date")
	ErrInvalidStatus      = errors.New("unknown booking status")
	ErrPriceMismatch      = errors.New("total price does not match price times quantity")
)

// priceTolerance absorbs float rounding in client supplied totals
const priceTolerance = 0.005

// BookingRequest carries a booking as submitted. TotalPrice and Status are
// optional.
type BookingRequest struct {
	UserID      *uuid.UUID
	PropertyID  uuid.UUID
	BookingDate string
	Slot        string
	Quantity    int
	TotalPrice  *float64
	Status      domain.BookingStatus
}

// BookingService creates bookings. Bookings are never updated.
type BookingService interface {
	CreateBooking(ctx context.Context, req BookingRequest) (*domain.Booking, error)
}

type bookingService struct {
	bookings   repository.BookingRepository
	properties repository.PropertyRepository
}

// NewBookingService creates a new instance of BookingService
func NewBookingService(bookings repository.BookingRepository, properties repository.PropertyRepository) BookingService {
	return &bookingService{bookings: bookings, properties: properties}
}

// CreateBooking inserts one booking. The total is the property price times
// the quantity; a supplied total that disagrees is rejected.
func (s *bookingService) CreateBooking(ctx context.Context, req BookingRequest) (*domain.Booking, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if _, err := time.Parse(domain.BookingDateLayout, req.BookingDate); err != nil {
		return nil, ErrInvalidBookingDate
	}

	status := req.Status
	if status == "" {
		status = domain.BookingPending
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	property, err := s.properties.FindByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	total := roundCents(property.Price * float64(req.Quantity))
	if req.TotalPrice != nil && math.Abs(*req.TotalPrice-total) > priceTolerance {
		return nil, ErrPriceMismatch
	}

	booking := &domain.Booking{
		ID:          uuid.New(),
		UserID:      req.UserID,
		PropertyID:  req.PropertyID,
		BookingDate: req.BookingDate,
		Slot:        req.Slot,
		Quantity:    req.Quantity,
		TotalPrice:  total,
		Status:      status,
		CreatedAt:   time.Now(),
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	metrics.ObserveBooking(string(booking.Status))
	return booking, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
