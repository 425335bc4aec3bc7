package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-booking/internal/model"
	"github.com/iliyamo/hotel-room-booking/internal/repository"
)

// fakeRooms is an in-memory RoomDirectory.
type fakeRooms struct {
	caps map[string]int
}

func (f *fakeRooms) GetRoomCapacity(_ context.Context, roomID string) (model.RoomCapacity, error) {
	c, ok := f.caps[roomID]
	if !ok {
		return model.RoomCapacity{}, repository.ErrRoomNotFound
	}
	return model.RoomCapacity{RoomID: roomID, TotalRooms: c}, nil
}

// fakeStore is an in-memory BookingStore with the same capacity-gating
// contract as the MySQL implementation.  failInsert, when set, forces
// the next insert to fail so the lost-race path can be exercised.
type fakeStore struct {
	bookings   map[string]*model.Booking
	seq        int
	failInsert error
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: map[string]*model.Booking{}}
}

func (f *fakeStore) CountActive(_ context.Context, roomID string, date time.Time, excludeID string) (int, error) {
	n := 0
	for _, b := range f.bookings {
		if b.RoomID == roomID && b.Date.Equal(date) && b.Status == model.BookingStatusActive && b.ID != excludeID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) put(b *model.Booking) {
	f.seq++
	cp := *b
	cp.ID = fmt.Sprintf("booking-%d", f.seq)
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	f.bookings[cp.ID] = &cp
	*b = cp
}

func (f *fakeStore) InsertIfAvailable(ctx context.Context, b *model.Booking, capacity int) error {
	if f.failInsert != nil {
		err := f.failInsert
		f.failInsert = nil
		return err
	}
	n, _ := f.CountActive(ctx, b.RoomID, b.Date, "")
	if n >= capacity {
		return repository.ErrCapacityExceeded
	}
	f.put(b)
	return nil
}

func (f *fakeStore) InsertManyIfAvailable(ctx context.Context, bs []*model.Booking, capacity int) error {
	if f.failInsert != nil {
		err := f.failInsert
		f.failInsert = nil
		return err
	}
	// Gate every record first so a rejection writes nothing.
	pending := map[time.Time]int{}
	for _, b := range bs {
		n, _ := f.CountActive(ctx, b.RoomID, b.Date, "")
		if n+pending[b.Date] >= capacity {
			return repository.ErrCapacityExceeded
		}
		pending[b.Date]++
	}
	for _, b := range bs {
		f.put(b)
	}
	return nil
}

func (f *fakeStore) UpdateFields(_ context.Context, id string, u repository.BookingUpdate) (*model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	if u.RoomID != nil {
		b.RoomID = *u.RoomID
	}
	if u.Date != nil {
		b.Date = *u.Date
	}
	if u.Price != nil {
		b.Price = *u.Price
	}
	if u.Note != nil {
		b.Note = u.Note
	}
	if u.Status != nil {
		b.Status = *u.Status
	}
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	return &cp, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) (*model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	delete(f.bookings, id)
	return b, nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) FindFiltered(_ context.Context, flt repository.BookingFilter, page, limit int) ([]model.Booking, int64, error) {
	var out []model.Booking
	for _, b := range f.bookings {
		if flt.UserID != "" && b.UserID != flt.UserID {
			continue
		}
		if flt.RoomID != "" && b.RoomID != flt.RoomID {
			continue
		}
		if flt.Status != "" && b.Status != flt.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) FindByDateRange(_ context.Context, start, end time.Time, page, limit int) ([]model.Booking, int64, error) {
	var out []model.Booking
	for _, b := range f.bookings {
		if !b.Date.Before(start) && !b.Date.After(end) {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

var testToday = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestService(caps map[string]int) (*BookingService, *fakeStore) {
	store := newFakeStore()
	svc := NewBookingService(&fakeRooms{caps: caps}, store)
	svc.now = func() time.Time { return testToday.Add(10 * time.Hour) }
	return svc, store
}

func day(offset int) time.Time {
	return testToday.AddDate(0, 0, offset)
}

func createInput(roomID string, d time.Time) CreateBookingInput {
	return CreateBookingInput{
		UserID:  "user-1",
		HotelID: "hotel-1",
		RoomID:  roomID,
		Date:    d,
		Price:   120,
	}
}

func TestCheckAvailability(t *testing.T) {
	svc, _ := newTestService(map[string]int{"room-a": 2})
	ctx := context.Background()

	res, err := svc.CheckAvailability(ctx, "room-a", day(1), "")
	require.NoError(t, err)
	assert.True(t, res.IsAvailable)
	assert.Equal(t, 2, res.TotalRooms)
	assert.Equal(t, 0, res.CurrentBookings)
	assert.Equal(t, 2, res.AvailableRooms)

	_, err = svc.CheckAvailability(ctx, "missing", day(1), "")
	assert.ErrorIs(t, err, repository.ErrRoomNotFound)
}

func TestCheckAvailabilityCapacityUnknown(t *testing.T) {
	svc, _ := newTestService(map[string]int{"room-zero": 0})

	_, err := svc.CheckAvailability(context.Background(), "room-zero", day(1), "")
	assert.ErrorIs(t, err, ErrCapacityUnknown)
}

func TestCreateBookingEnforcesCapacity(t *testing.T) {
	svc, _ := newTestService(map[string]int{"room-a": 2})
	ctx := context.Background()

	b1, err := svc.CreateBooking(ctx, createInput("room-a", day(1)))
	require.NoError(t, err)
	assert.NotEmpty(t, b1.ID)
	assert.Equal(t, model.BookingStatusActive, b1.Status)

	_, err = svc.CreateBooking(ctx, createInput("room-a", day(1)))
	require.NoError(t, err)

	// Third booking on the same date must be rejected with the full
	// capacity picture.
	_, err = svc.CreateBooking(ctx, createInput("room-a", day(1)))
	var fb *FullyBookedError
	require.ErrorAs(t, err, &fb)
	assert.Equal(t, "room-a", fb.RoomID)
	require.Len(t, fb.Conflicts, 1)
	assert.True(t, fb.Conflicts[0].Date.Equal(day(1)))
	assert.Equal(t, 2, fb.Conflicts[0].TotalRooms)
	assert.Equal(t, 2, fb.Conflicts[0].CurrentBookings)

	// A different date is unaffected.
	_, err = svc.CreateBooking(ctx, createInput("room-a", day(2)))
	assert.NoError(t, err)
}

func TestCreateBookingSingleRoomBoundary(t *testing.T) {
	svc, _ := newTestService(map[string]int{"room-s": 1})
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, createInput("room-s", day(3)))
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, createInput("room-s", day(3)))
	var fb *FullyBookedError
	require.ErrorAs(t, err, &fb)
	assert.Equal(t, 1, fb.Conflicts[0].TotalRooms)
	assert.Equal(t, 1, fb.Conflicts[0].CurrentBookings)
}

func TestCreateBookingValidation(t *testing.T) {
	svc, _ := newTestService(map[string]int{"room-a": 2})
	ctx := context.Background()

	in := createInput("room-a", day(1))
	in.Price = 0
	_, err := svc.CreateBooking(ctx, in)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "price", ve.Field)

	_, err = svc.CreateBooking(ctx, createInput("room-a", day(-1)))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "date", ve.Field)

	// Booking for today is allowed even later in the day.
	_, err = svc.CreateBooking(ctx, createInput("room-a", day(0)))
	assert.NoError(t, err)
}

func TestCreateBookingLostRace(t *testing.T) {
	svc, store := newTestService(map[string]int{"room-a": 1})
	ctx := context.Background()

	// The read-only check passes but the gated insert loses to a
	// concurrent writer.
	store.failInsert = repository.ErrCapacityExceeded
	_, err := svc.CreateBooking(ctx, createInput("room-a", day(1)))
	var fb *FullyBookedError
	require.ErrorAs(t, err, &fb)
	require.Len(t, fb.Conflicts, 1)
	assert.True(t, fb.Conflicts[0].Date.Equal(day(1)))
}

func TestCreateMultipleBookingsAllOrNothing(t *testing.T) {
	svc, store := newTestService(map[string]int{"room-a": 1})
	ctx := context.Background()

	// Occupy one of the requested dates.
	_, err := svc.CreateBooking(ctx, createInput("room-a", day(2)))
	require.NoError(t, err)

	_, err = svc.CreateMultipleBookings(ctx, CreateBatchInput{
		UserID:  "user-2",
		HotelID: "hotel-1",
		RoomID:  "room-a",
		Dates:   []time.Time{day(1), day(2), day(3)},
		Price:   90,
	})
	var fb *FullyBookedError
	require.ErrorAs(t, err, &fb)
	// Only the occupied date is reported.
	require.Len(t, fb.Conflicts, 1)
	assert.True(t, fb.Conflicts[0].Date.Equal(day(2)))

	// Nothing was written for the batch.
	assert.Len(t, store.bookings, 1)
}

func TestCreateMultipleBookingsSuccess(t *testing.T) {
	svc, store := newTestService(map[string]int{"room-a": 2})
	ctx := context.Background()

	res, err := svc.CreateMultipleBookings(ctx, CreateBatchInput{
		UserID:  "user-1",
		HotelID: "hotel-1",
		RoomID:  "room-a",
		Dates:   []time.Time{day(1), day(2), day(3)},
		Price:   90,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
	assert.Len(t, res.Bookings, 3)
	assert.Len(t, store.bookings, 3)
	for _, b := range res.Bookings {
		assert.NotEmpty(t, b.ID)
		assert.Equal(t, model.BookingStatusActive, b.Status)
	}
}

func TestCreateMultipleBookingsValidation(t *testing.T) {
	svc, _ := newTestService(map[string]int{"room-a": 2})
	ctx := context.Background()
	base := CreateBatchInput{UserID: "u", HotelID: "h", RoomID: "room-a", Price: 50}

	var ve *ValidationError

	in := base
	_, err := svc.CreateMultipleBookings(ctx, in)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "dates", ve.Field)

	in = base
	in.Dates = []time.Time{day(1), day(1)}
	_, err = svc.CreateMultipleBookings(ctx, in)
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Reason, "duplicate")

	in = base
	in.Dates = []time.Time{day(1), day(-2)}
	_, err = svc.CreateMultipleBookings(ctx, in)
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Reason, "past")

	in = base
	for i := 0; i < 31; i++ {
		in.Dates = append(in.Dates, day(i+1))
	}
	_, err = svc.CreateMultipleBookings(ctx, in)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "dates", ve.Field)
}

func TestCreateMultipleBookingsLostRace(t *testing.T) {
	svc, store := newTestService(map[string]int{"room-a": 1})
	ctx := context.Background()

	store.failInsert = repository.ErrCapacityExceeded
	_, err := svc.CreateMultipleBookings(ctx, CreateBatchInput{
		UserID: "u", HotelID: "h", RoomID: "room-a",
		Dates: []time.Time{day(1)}, Price: 50,
	})
	var fb *FullyBookedError
	require.ErrorAs(t, err, &fb)
	assert.Empty(t, store.bookings)
}

func TestUpdateBookingExcludesOwnRow(t *testing.T) {
	svc, _ := newTestService(map[string]int{"room-a": 1})
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, createInput("room-a", day(1)))
	require.NoError(t, err)

	// Re-saving the same room/date must not collide with itself.
	price := 150.0
	d := day(1)
	got, err := svc.UpdateBooking(ctx, b.ID, UpdateBookingInput{Date: &d, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 150.0, got.Price)

	// Moving to a fully booked date fails.
	_, err = svc.CreateBooking(ctx, createInput("room-a", day(5)))
	require.NoError(t, err)
	d5 := day(5)
	_, err = svc.UpdateBooking(ctx, b.ID, UpdateBookingInput{Date: &d5})
	var fb *FullyBookedError
	require.ErrorAs(t, err, &fb)
	assert.True(t, fb.Conflicts[0].Date.Equal(day(5)))
}

func TestUpdateBookingValidation(t *testing.T) {
	svc, _ := newTestService(map[string]int{"room-a": 2})
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, createInput("room-a", day(1)))
	require.NoError(t, err)

	var ve *ValidationError

	bad := "pending"
	_, err = svc.UpdateBooking(ctx, b.ID, UpdateBookingInput{Status: &bad})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "status", ve.Field)

	neg := -1.0
	_, err = svc.UpdateBooking(ctx, b.ID, UpdateBookingInput{Price: &neg})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "price", ve.Field)

	past := day(-3)
	_, err = svc.UpdateBooking(ctx, b.ID, UpdateBookingInput{Date: &past})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "date", ve.Field)

	_, err = svc.UpdateBooking(ctx, "nope", UpdateBookingInput{})
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}

func TestUpdateBookingNoRecheckWithoutMove(t *testing.T) {
	svc, _ := newTestService(map[string]int{"room-a": 1})
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, createInput("room-a", day(1)))
	require.NoError(t, err)

	// The room is now full, but a note-only update needs no slot.
	note := "late arrival"
	got, err := svc.UpdateBooking(ctx, b.ID, UpdateBookingInput{Note: &note})
	require.NoError(t, err)
	require.NotNil(t, got.Note)
	assert.Equal(t, "late arrival", *got.Note)
}

func TestCancelBookingFreesSlot(t *testing.T) {
	svc, _ := newTestService(map[string]int{"room-a": 1})
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, createInput("room-a", day(1)))
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, createInput("room-a", day(1)))
	var fb *FullyBookedError
	require.ErrorAs(t, err, &fb)

	got, err := svc.CancelBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancel, got.Status)

	// Cancelling again is a no-op, not an error.
	again, err := svc.CancelBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancel, again.Status)

	// The slot is free for a new booking.
	_, err = svc.CreateBooking(ctx, createInput("room-a", day(1)))
	assert.NoError(t, err)
}

func TestDeleteBookingFreesSlot(t *testing.T) {
	svc, store := newTestService(map[string]int{"room-a": 1})
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, createInput("room-a", day(1)))
	require.NoError(t, err)

	removed, err := svc.DeleteBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, removed.ID)
	assert.Empty(t, store.bookings)

	_, err = svc.DeleteBooking(ctx, b.ID)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)

	_, err = svc.CreateBooking(ctx, createInput("room-a", day(1)))
	assert.NoError(t, err)
}

func TestListBookingsByDateRange(t *testing.T) {
	svc, _ := newTestService(map[string]int{"room-a": 5})
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := svc.CreateBooking(ctx, createInput("room-a", day(i)))
		require.NoError(t, err)
	}

	items, total, err := svc.ListBookingsByDateRange(ctx, day(1), day(2), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	_, _, err = svc.ListBookingsByDateRange(ctx, day(2), day(1), 1, 10)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "end", ve.Field)
}

func TestFullyBookedErrorMessage(t *testing.T) {
	err := &FullyBookedError{
		RoomID: "room-a",
		Conflicts: []DateConflict{
			{Date: day(1), TotalRooms: 2, CurrentBookings: 2},
			{Date: day(2), TotalRooms: 2, CurrentBookings: 2},
		},
	}
	msg := err.Error()
	assert.Contains(t, msg, "room-a")
	assert.Contains(t, msg, day(1).Format("2006-01-02"))
	assert.Contains(t, msg, day(2).Format("2006-01-02"))

	var target *FullyBookedError
	assert.True(t, errors.As(error(err), &target))
}
