// Package service implements the booking availability engine: per-date
// room availability computation, capacity enforcement and the
// all-or-nothing multi-date booking protocol.  The engine is pure
// domain logic; persistence is reached only through the RoomDirectory
// and BookingStore interfaces so the capacity-gating strategy stays an
// implementation detail of the store.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/hotel-room-booking/internal/model"
	"github.com/iliyamo/hotel-room-booking/internal/repository"
)

// maxBatchDates caps the number of dates accepted by a single
// multi-date booking request.
const maxBatchDates = 30

// RoomDirectory supplies room inventory for availability decisions.
type RoomDirectory interface {
	// GetRoomCapacity returns the configured inventory of a room.
	// Implementations return repository.ErrRoomNotFound when the ID
	// does not resolve.  A zero TotalRooms is returned as-is.
	GetRoomCapacity(ctx context.Context, roomID string) (model.RoomCapacity, error)
}

// BookingStore is the persisted collection of booking records.  The
// two capacity-gated inserts must be atomic: the active count and the
// insert happen under one transaction so that concurrent creates for
// the same (room, date) pair serialize, and the loser receives
// repository.ErrCapacityExceeded.  InsertManyIfAvailable additionally
// guarantees zero rows are written when any record is rejected.
type BookingStore interface {
	CountActive(ctx context.Context, roomID string, date time.Time, excludeID string) (int, error)
	InsertIfAvailable(ctx context.Context, b *model.Booking, capacity int) error
	InsertManyIfAvailable(ctx context.Context, bs []*model.Booking, capacity int) error
	UpdateFields(ctx context.Context, id string, f repository.BookingUpdate) (*model.Booking, error)
	Delete(ctx context.Context, id string) (*model.Booking, error)
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindFiltered(ctx context.Context, f repository.BookingFilter, page, limit int) ([]model.Booking, int64, error)
	FindByDateRange(ctx context.Context, start, end time.Time, page, limit int) ([]model.Booking, int64, error)
}

// AvailabilityResult is the outcome of a read-only availability check.
type AvailabilityResult struct {
	IsAvailable     bool `json:"isAvailable"`
	TotalRooms      int  `json:"totalRooms"`
	CurrentBookings int  `json:"currentBookings"`
	AvailableRooms  int  `json:"availableRooms"`
}

// CreateBookingInput carries the fields of a booking creation request.
type CreateBookingInput struct {
	UserID  string
	HotelID string
	RoomID  string
	Date    time.Time
	Price   float64
	Note    *string
}

// CreateBatchInput carries the fields of a multi-date booking request.
type CreateBatchInput struct {
	UserID  string
	HotelID string
	RoomID  string
	Dates   []time.Time
	Price   float64
	Note    *string
}

// BatchResult is returned by a successful multi-date booking.
type BatchResult struct {
	Bookings []model.Booking `json:"bookings"`
	Count    int             `json:"count"`
	Dates    []time.Time     `json:"dates"`
}

// UpdateBookingInput carries the partial fields of a booking update.
// Nil pointers mean "leave unchanged".
type UpdateBookingInput struct {
	RoomID *string
	Date   *time.Time
	Price  *float64
	Note   *string
	Status *string
}

// BookingService is the availability engine.  It enforces the one
// invariant of the system: for every (room, date) pair the number of
// active bookings never exceeds the room's total_rooms inventory.
type BookingService struct {
	rooms RoomDirectory
	store BookingStore
	now   func() time.Time // injectable clock for date validation
}

// NewBookingService constructs the engine.  Both dependencies must be
// non-nil.
func NewBookingService(rooms RoomDirectory, store BookingStore) *BookingService {
	if rooms == nil || store == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{rooms: rooms, store: store, now: time.Now}
}

// today returns the current calendar day at midnight UTC.
func (s *BookingService) today() time.Time {
	return model.DateOnly(s.now())
}

// CheckAvailability counts active bookings for the room on the given
// calendar date and compares them against the room's inventory.  When
// excludeID is non-empty that booking is omitted from the count, so an
// update re-check does not block on the booking's own row.  The check
// is read-only and has no side effects.
func (s *BookingService) CheckAvailability(ctx context.Context, roomID string, date time.Time, excludeID string) (AvailabilityResult, error) {
	inv, err := s.rooms.GetRoomCapacity(ctx, roomID)
	if err != nil {
		return AvailabilityResult{}, err
	}
	if inv.TotalRooms <= 0 {
		return AvailabilityResult{}, ErrCapacityUnknown
	}
	count, err := s.store.CountActive(ctx, roomID, model.DateOnly(date), excludeID)
	if err != nil {
		return AvailabilityResult{}, err
	}
	avail := inv.TotalRooms - count
	return AvailabilityResult{
		IsAvailable:     avail > 0,
		TotalRooms:      inv.TotalRooms,
		CurrentBookings: count,
		AvailableRooms:  avail,
	}, nil
}

// CreateBooking validates the request, checks availability and inserts
// one active booking row.  The final insert is capacity-gated inside
// the store transaction, so even a request that passed the read-only
// check fails cleanly with FullyBookedError when a concurrent create
// takes the last slot first.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*model.Booking, error) {
	if in.Price <= 0 {
		return nil, &ValidationError{Field: "price", Reason: "must be greater than zero"}
	}
	date := model.DateOnly(in.Date)
	if date.Before(s.today()) {
		return nil, &ValidationError{Field: "date", Reason: "must not be in the past"}
	}
	res, err := s.CheckAvailability(ctx, in.RoomID, date, "")
	if err != nil {
		return nil, err
	}
	if !res.IsAvailable {
		return nil, &FullyBookedError{
			RoomID: in.RoomID,
			Conflicts: []DateConflict{
				{Date: date, TotalRooms: res.TotalRooms, CurrentBookings: res.CurrentBookings},
			},
		}
	}
	b := &model.Booking{
		UserID:  in.UserID,
		HotelID: in.HotelID,
		RoomID:  in.RoomID,
		Date:    date,
		Price:   in.Price,
		Note:    in.Note,
		Status:  model.BookingStatusActive,
	}
	if err := s.store.InsertIfAvailable(ctx, b, res.TotalRooms); err != nil {
		if errors.Is(err, repository.ErrCapacityExceeded) {
			return nil, s.fullyBooked(ctx, in.RoomID, res.TotalRooms, []time.Time{date})
		}
		return nil, err
	}
	return b, nil
}

// CreateMultipleBookings creates one booking per requested date with
// all-or-nothing semantics.  Phase one re-checks every date read-only
// and aborts the whole request when any date is unavailable, reporting
// every conflicting date with its capacity figures.  Only when all
// dates pass does phase two insert the rows, in one store transaction
// that re-gates each date against capacity, so a concurrent create can
// never produce a partial batch.
func (s *BookingService) CreateMultipleBookings(ctx context.Context, in CreateBatchInput) (*BatchResult, error) {
	if in.Price <= 0 {
		return nil, &ValidationError{Field: "price", Reason: "must be greater than zero"}
	}
	if len(in.Dates) == 0 {
		return nil, &ValidationError{Field: "dates", Reason: "must not be empty"}
	}
	if len(in.Dates) > maxBatchDates {
		return nil, &ValidationError{Field: "dates", Reason: "at most 30 dates per request"}
	}
	today := s.today()
	dates := make([]time.Time, 0, len(in.Dates))
	seen := make(map[time.Time]struct{}, len(in.Dates))
	for _, d := range in.Dates {
		day := model.DateOnly(d)
		if day.Before(today) {
			return nil, &ValidationError{Field: "dates", Reason: "must not contain past dates"}
		}
		if _, ok := seen[day]; ok {
			return nil, &ValidationError{Field: "dates", Reason: "must not contain duplicate dates"}
		}
		seen[day] = struct{}{}
		dates = append(dates, day)
	}

	// Validation phase: every date is checked independently and all
	// conflicts are collected before failing, so the caller sees the
	// full list of dates that blocked the request.
	var totalRooms int
	conflicts := make([]DateConflict, 0)
	for _, day := range dates {
		res, err := s.CheckAvailability(ctx, in.RoomID, day, "")
		if err != nil {
			return nil, err
		}
		totalRooms = res.TotalRooms
		if !res.IsAvailable {
			conflicts = append(conflicts, DateConflict{
				Date:            day,
				TotalRooms:      res.TotalRooms,
				CurrentBookings: res.CurrentBookings,
			})
		}
	}
	if len(conflicts) > 0 {
		return nil, &FullyBookedError{RoomID: in.RoomID, Conflicts: conflicts}
	}

	// Insert phase: one transaction, zero rows on any rejection.
	records := make([]*model.Booking, 0, len(dates))
	for _, day := range dates {
		records = append(records, &model.Booking{
			UserID:  in.UserID,
			HotelID: in.HotelID,
			RoomID:  in.RoomID,
			Date:    day,
			Price:   in.Price,
			Note:    in.Note,
			Status:  model.BookingStatusActive,
		})
	}
	if err := s.store.InsertManyIfAvailable(ctx, records, totalRooms); err != nil {
		if errors.Is(err, repository.ErrCapacityExceeded) {
			return nil, s.fullyBooked(ctx, in.RoomID, totalRooms, dates)
		}
		return nil, err
	}
	out := &BatchResult{
		Bookings: make([]model.Booking, 0, len(records)),
		Count:    len(records),
		Dates:    dates,
	}
	for _, b := range records {
		out.Bookings = append(out.Bookings, *b)
	}
	return out, nil
}

// fullyBooked rebuilds conflict details after a capacity-gated insert
// lost to a concurrent booking.  The counts are re-read so the error
// reflects the state that caused the rejection; if the re-read fails
// the conflict is reported at capacity.
func (s *BookingService) fullyBooked(ctx context.Context, roomID string, totalRooms int, dates []time.Time) error {
	conflicts := make([]DateConflict, 0, len(dates))
	for _, day := range dates {
		count, err := s.store.CountActive(ctx, roomID, day, "")
		if err != nil {
			count = totalRooms
		}
		if count >= totalRooms {
			conflicts = append(conflicts, DateConflict{
				Date:            day,
				TotalRooms:      totalRooms,
				CurrentBookings: count,
			})
		}
	}
	if len(conflicts) == 0 {
		// The racing booking was released between rejection and the
		// re-read; still report the requested dates as the conflict.
		for _, day := range dates {
			conflicts = append(conflicts, DateConflict{Date: day, TotalRooms: totalRooms, CurrentBookings: totalRooms})
		}
	}
	return &FullyBookedError{RoomID: roomID, Conflicts: conflicts}
}

// UpdateBooking applies a partial update.  When the room or the date is
// being changed, availability is re-checked against the effective
// (room, date) target with the booking's own row excluded from the
// count, so moving a booking within the same room/date never blocks on
// itself.  Updating price, note or status alone does not trigger a
// re-check.
func (s *BookingService) UpdateBooking(ctx context.Context, id string, in UpdateBookingInput) (*model.Booking, error) {
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status != nil && !model.ValidBookingStatus(*in.Status) {
		return nil, &ValidationError{Field: "status", Reason: "must be 'active' or 'cancel'"}
	}
	if in.Price != nil && *in.Price <= 0 {
		return nil, &ValidationError{Field: "price", Reason: "must be greater than zero"}
	}
	var newDate *time.Time
	if in.Date != nil {
		day := model.DateOnly(*in.Date)
		if day.Before(s.today()) {
			return nil, &ValidationError{Field: "date", Reason: "must not be in the past"}
		}
		newDate = &day
	}
	if in.RoomID != nil || newDate != nil {
		effRoom := b.RoomID
		if in.RoomID != nil {
			effRoom = *in.RoomID
		}
		effDate := b.Date
		if newDate != nil {
			effDate = *newDate
		}
		res, err := s.CheckAvailability(ctx, effRoom, effDate, b.ID)
		if err != nil {
			return nil, err
		}
		if !res.IsAvailable {
			return nil, &FullyBookedError{
				RoomID: effRoom,
				Conflicts: []DateConflict{
					{Date: effDate, TotalRooms: res.TotalRooms, CurrentBookings: res.CurrentBookings},
				},
			}
		}
	}
	return s.store.UpdateFields(ctx, id, repository.BookingUpdate{
		RoomID: in.RoomID,
		Date:   newDate,
		Price:  in.Price,
		Note:   in.Note,
		Status: in.Status,
	})
}

// CancelBooking soft-deletes a booking by setting its status to
// cancel, freeing one capacity slot for its (room, date) pair.  The
// operation is idempotent: cancelling an already-cancelled booking
// returns it unchanged and does not error.
func (s *BookingService) CancelBooking(ctx context.Context, id string) (*model.Booking, error) {
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == model.BookingStatusCancel {
		return b, nil
	}
	status := model.BookingStatusCancel
	return s.store.UpdateFields(ctx, id, repository.BookingUpdate{Status: &status})
}

// DeleteBooking hard-deletes the row and returns the removed record.
// No inventory recount is needed: the deletion simply frees a slot for
// future availability checks.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) (*model.Booking, error) {
	return s.store.Delete(ctx, id)
}

// GetBookingByID loads one booking.
func (s *BookingService) GetBookingByID(ctx context.Context, id string) (*model.Booking, error) {
	return s.store.FindByID(ctx, id)
}

// ListBookings returns a page of bookings matching the filter, newest
// first, with the total match count.
func (s *BookingService) ListBookings(ctx context.Context, f repository.BookingFilter, page, limit int) ([]model.Booking, int64, error) {
	return s.store.FindFiltered(ctx, f, page, limit)
}

// ListBookingsByUser returns a page of one user's bookings.
func (s *BookingService) ListBookingsByUser(ctx context.Context, userID string, page, limit int) ([]model.Booking, int64, error) {
	return s.store.FindFiltered(ctx, repository.BookingFilter{UserID: userID}, page, limit)
}

// ListBookingsByDateRange returns a page of bookings whose date falls
// inside [start, end], ordered by date.
func (s *BookingService) ListBookingsByDateRange(ctx context.Context, start, end time.Time, page, limit int) ([]model.Booking, int64, error) {
	from, to := model.DateOnly(start), model.DateOnly(end)
	if to.Before(from) {
		return nil, 0, &ValidationError{Field: "end", Reason: "must not precede start"}
	}
	return s.store.FindByDateRange(ctx, from, to, page, limit)
}
