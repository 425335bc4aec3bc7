// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// availability engine and handlers to distinguish between different
// failure scenarios. For example, ErrRoomNotFound indicates that a
// referenced room does not exist, while ErrCapacityExceeded signals
// that a capacity-gated insert lost to a concurrent booking and the
// room is full for the requested date.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned by UserRepo.Create when the normalized
// email already has an account.
var ErrEmailExists = errors.New("email already exists")

// ErrHotelNotFound is returned when a hotel ID does not resolve.
var ErrHotelNotFound = errors.New("hotel not found")

// ErrRoomNotFound is returned when a room ID does not resolve.
var ErrRoomNotFound = errors.New("room not found")

// ErrBookingNotFound is returned when a booking ID does not resolve.
var ErrBookingNotFound = errors.New("booking not found")

// ErrCapacityExceeded is returned by the capacity-gated insert when the
// locked active-booking count for a (room, date) pair has already
// reached the room's inventory. It is the transactional backstop for
// the engine's read-only availability check: two concurrent creates
// serialize on the row locks and the loser receives this error.
var ErrCapacityExceeded = errors.New("room capacity exceeded")
