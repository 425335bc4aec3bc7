package model

import "time"

// Hotel represents a property that owns bookable rooms.  City and
// country are stored as plain columns; the catalog intentionally has no
// separate country/city tables.
type Hotel struct {
	ID        string    `json:"id"`                // hotels.id
	Name      string    `json:"name"`              // hotels.name
	City      string    `json:"city"`              // hotels.city
	Country   string    `json:"country"`           // hotels.country
	Address   *string   `json:"address,omitempty"` // hotels.address (nullable)
	Stars     *uint8    `json:"stars,omitempty"`   // hotels.stars (nullable, 1..5)
	IsActive  bool      `json:"is_active"`         // hotels.is_active
	CreatedAt time.Time `json:"created_at"`        // hotels.created_at
	UpdatedAt time.Time `json:"updated_at"`        // hotels.updated_at
}
