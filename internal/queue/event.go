// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/iliyamo/hotel-room-booking/internal/model"
)

// BookingCreatedEvent is published when a booking is successfully written.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingCreatedEvent struct {
	BookingID   string  `json:"booking_id"`
	UserID      string  `json:"user_id"`
	HotelID     string  `json:"hotel_id"`
	RoomID      string  `json:"room_id"`
	BookingDate string  `json:"booking_date"` // YYYY-MM-DD
	Price       float64 `json:"price"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"` // RFC 3339, UTC
}

// NewBookingCreatedEvent builds the event payload from a stored booking.
func NewBookingCreatedEvent(b *model.Booking) BookingCreatedEvent {
	return BookingCreatedEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		HotelID:     b.HotelID,
		RoomID:      b.RoomID,
		BookingDate: b.Date.Format("2006-01-02"),
		Price:       b.Price,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
	}
}
