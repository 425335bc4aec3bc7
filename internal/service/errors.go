package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrCapacityUnknown is returned when a room exists but has no
// configured inventory (total_rooms unset or zero).  Availability can
// not be computed for such a room; the condition is deliberately kept
// distinct from "fully booked" and is never treated as zero or
// infinite capacity.
var ErrCapacityUnknown = errors.New("room capacity not configured")

// ValidationError reports a malformed input field.  It is returned
// before any store interaction so a failed validation never touches
// the database.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// DateConflict describes one calendar date on which a booking request
// could not be satisfied, along with the capacity figures at decision
// time so callers can explain the conflict without a follow-up query.
type DateConflict struct {
	Date            time.Time `json:"date"`
	TotalRooms      int       `json:"total_rooms"`
	CurrentBookings int       `json:"current_bookings"`
}

// FullyBookedError is returned when an availability check fails.  For
// single-date requests Conflicts holds one entry; for batch requests it
// lists every date that failed validation.
type FullyBookedError struct {
	RoomID    string
	Conflicts []DateConflict
}

func (e *FullyBookedError) Error() string {
	dates := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		dates = append(dates, c.Date.Format("2006-01-02"))
	}
	return fmt.Sprintf("room %s fully booked on %s", e.RoomID, strings.Join(dates, ", "))
}
