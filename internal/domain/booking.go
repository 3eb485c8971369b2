package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Valid reports whether s is one of the known booking statuses
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// BookingDateLayout is the wire and storage format of Booking.BookingDate
const BookingDateLayout = "2006-01-02"

// Booking rows are only ever inserted
type Booking struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	UserID      *uuid.UUID    `json:"user_id,omitempty" db:"user_id"`
	PropertyID  uuid.UUID     `json:"property_id" db:"property_id"`
	BookingDate string        `json:"booking_date" db:"booking_date"`
	Slot        string        `json:"slot,omitempty" db:"slot"`
	Quantity    int           `json:"quantity" db:"quantity"`
	TotalPrice  float64       `json:"total_price" db:"total_price"`
	Status      BookingStatus `json:"status" db:"status"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}
