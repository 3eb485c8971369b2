package repository

import (
	"context"
	"database/sql"
	"fmt"

	"trailhaven/internal/domain"
)

// BookingRepository inserts bookings. There is no update or cancel path.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
}

type bookingRepository struct {
	db *sql.DB
}

// NewBookingRepository creates a new instance of BookingRepository
func NewBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// Create inserts one booking and refreshes booking with the stored row
func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, property_id, booking_date, slot, quantity, total_price, status, created_at)
		VALUES ($1, $2, $3, $4::date, NULLIF($5, ''), $6, $7, $8, $9)
		RETURNING id, user_id, property_id, to_char(booking_date, 'YYYY-MM-DD'),
		          COALESCE(slot, ''), quantity, total_price, status, created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		booking.ID,
		booking.UserID,
		booking.PropertyID,
		booking.BookingDate,
		booking.Slot,
		booking.Quantity,
		booking.TotalPrice,
		booking.Status,
		booking.CreatedAt,
	).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.PropertyID,
		&booking.BookingDate,
		&booking.Slot,
		&booking.Quantity,
		&booking.TotalPrice,
		&booking.Status,
		&booking.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}
