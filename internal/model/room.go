package model

import "time"

// Room represents a bookable room type within a hotel.  TotalRooms is
// the inventory for that type: the maximum number of concurrently
// active bookings permitted on any single calendar date.  A room with
// TotalRooms unset (zero) cannot be booked because availability cannot
// be computed for it.
//
// Fields:
//  ID            – UUID primary key.
//  HotelID       – hotel this room belongs to.
//  Name          – room name or type (e.g. "Deluxe Double").
//  Description   – optional description of the room.
//  TotalRooms    – capacity per calendar date.
//  PricePerNight – default nightly price.
//  IsActive      – whether the room is open for booking.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Room struct {
	ID            string    `json:"id"`                    // rooms.id
	HotelID       string    `json:"hotel_id"`              // rooms.hotel_id
	Name          string    `json:"name"`                  // rooms.name
	Description   *string   `json:"description,omitempty"` // rooms.description (nullable)
	TotalRooms    int       `json:"total_rooms"`           // rooms.total_rooms
	PricePerNight float64   `json:"price_per_night"`       // rooms.price_per_night
	IsActive      bool      `json:"is_active"`             // rooms.is_active
	CreatedAt     time.Time `json:"created_at"`            // rooms.created_at
	UpdatedAt     time.Time `json:"updated_at"`            // rooms.updated_at
}

// RoomCapacity is the slice of room state the availability engine needs:
// just the configured inventory.  It is returned by the room directory
// lookup so the engine never depends on the full catalog row.
type RoomCapacity struct {
	RoomID     string
	TotalRooms int
}
