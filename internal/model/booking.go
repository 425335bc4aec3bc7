package model

import "time"

// Booking statuses.  A booking is either counting against its room's
// capacity (active) or released (cancel).  These two values are the
// canonical vocabulary used everywhere in the service, including the
// availability queries on the public room endpoints.
const (
	BookingStatusActive = "active"
	BookingStatusCancel = "cancel"
)

// Booking represents one room reserved by one user for one calendar
// date.  Multi-date reservations are stored as one row per date so that
// capacity can be counted per (room, date) pair.
//
// Fields:
//  ID        – UUID primary key.
//  UserID    – user who made the booking.
//  HotelID   – hotel the room belongs to.
//  RoomID    – room being booked.
//  Date      – calendar day being reserved (no time component, UTC).
//  Price     – price for the night; must be positive.
//  Note      – optional free-text note from the guest.
//  Status    – BookingStatusActive or BookingStatusCancel.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Booking struct {
	ID        string    `json:"id"`             // bookings.id
	UserID    string    `json:"user_id"`        // bookings.user_id
	HotelID   string    `json:"hotel_id"`       // bookings.hotel_id
	RoomID    string    `json:"room_id"`        // bookings.room_id
	Date      time.Time `json:"date"`           // bookings.booking_date
	Price     float64   `json:"price"`          // bookings.price
	Note      *string   `json:"note,omitempty"` // bookings.note (nullable)
	Status    string    `json:"status"`         // bookings.status
	CreatedAt time.Time `json:"created_at"`     // bookings.created_at
	UpdatedAt time.Time `json:"updated_at"`     // bookings.updated_at
}

// ValidBookingStatus reports whether s is one of the two canonical
// booking statuses.
func ValidBookingStatus(s string) bool {
	return s == BookingStatusActive || s == BookingStatusCancel
}

// DateOnly normalizes t to midnight UTC so that bookings for the same
// calendar day always compare equal regardless of the wall-clock time
// they were parsed with.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
