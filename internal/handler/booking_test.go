package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-booking/internal/model"
	"github.com/iliyamo/hotel-room-booking/internal/repository"
	"github.com/iliyamo/hotel-room-booking/internal/service"
)

// stubRooms and stubStore back the engine with in-memory state so the
// HTTP surface can be exercised without MySQL.

type stubRooms struct {
	caps map[string]int
}

func (s *stubRooms) GetRoomCapacity(_ context.Context, roomID string) (model.RoomCapacity, error) {
	c, ok := s.caps[roomID]
	if !ok {
		return model.RoomCapacity{}, repository.ErrRoomNotFound
	}
	return model.RoomCapacity{RoomID: roomID, TotalRooms: c}, nil
}

type stubStore struct {
	bookings map[string]*model.Booking
}

func (s *stubStore) CountActive(_ context.Context, roomID string, date time.Time, excludeID string) (int, error) {
	n := 0
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.Date.Equal(date) && b.Status == model.BookingStatusActive && b.ID != excludeID {
			n++
		}
	}
	return n, nil
}

func (s *stubStore) InsertIfAvailable(ctx context.Context, b *model.Booking, capacity int) error {
	n, _ := s.CountActive(ctx, b.RoomID, b.Date, "")
	if n >= capacity {
		return repository.ErrCapacityExceeded
	}
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	s.bookings[cp.ID] = &cp
	return nil
}

func (s *stubStore) InsertManyIfAvailable(ctx context.Context, bs []*model.Booking, capacity int) error {
	for _, b := range bs {
		if err := s.InsertIfAvailable(ctx, b, capacity); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubStore) UpdateFields(_ context.Context, id string, u repository.BookingUpdate) (*model.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	if u.Status != nil {
		b.Status = *u.Status
	}
	if u.Price != nil {
		b.Price = *u.Price
	}
	if u.Note != nil {
		b.Note = u.Note
	}
	if u.RoomID != nil {
		b.RoomID = *u.RoomID
	}
	if u.Date != nil {
		b.Date = *u.Date
	}
	cp := *b
	return &cp, nil
}

func (s *stubStore) Delete(_ context.Context, id string) (*model.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	delete(s.bookings, id)
	return b, nil
}

func (s *stubStore) FindByID(_ context.Context, id string) (*model.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *stubStore) FindFiltered(_ context.Context, f repository.BookingFilter, page, limit int) ([]model.Booking, int64, error) {
	var out []model.Booking
	for _, b := range s.bookings {
		if f.UserID != "" && b.UserID != f.UserID {
			continue
		}
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (s *stubStore) FindByDateRange(_ context.Context, start, end time.Time, page, limit int) ([]model.Booking, int64, error) {
	var out []model.Booking
	for _, b := range s.bookings {
		if !b.Date.Before(start) && !b.Date.After(end) {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

func newTestHandler(caps map[string]int) (*BookingHandler, *stubStore) {
	store := &stubStore{bookings: map[string]*model.Booking{}}
	svc := service.NewBookingService(&stubRooms{caps: caps}, store)
	return NewBookingHandler(svc), store
}

func seedBooking(store *stubStore, userID, roomID string, date time.Time) *model.Booking {
	b := &model.Booking{
		ID:      uuid.NewString(),
		UserID:  userID,
		HotelID: uuid.NewString(),
		RoomID:  roomID,
		Date:    model.DateOnly(date),
		Price:   100,
		Status:  model.BookingStatusActive,
	}
	store.bookings[b.ID] = b
	return b
}

// ctxFor builds an echo context with the identity the JWT middleware
// would have attached.
func ctxFor(method, target, body, userID, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
		c.Set("role", role)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	roomID := uuid.NewString()
	h, store := newTestHandler(map[string]int{roomID: 2})
	seedBooking(store, uuid.NewString(), roomID, time.Now().UTC())

	today := time.Now().UTC().Format("2006-01-02")
	c, rec := ctxFor(http.MethodGet, "/v1/rooms/"+roomID+"/availability?date="+today, "", "", "")
	c.SetParamNames("id")
	c.SetParamValues(roomID)

	require.NoError(t, h.CheckAvailability(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["isAvailable"])
	assert.Equal(t, float64(2), data["totalRooms"])
	assert.Equal(t, float64(1), data["currentBookings"])
	assert.Equal(t, float64(1), data["availableRooms"])
}

func TestCheckAvailabilityBadInput(t *testing.T) {
	h, _ := newTestHandler(map[string]int{})

	c, rec := ctxFor(http.MethodGet, "/v1/rooms/not-a-uuid/availability?date=2025-06-01", "", "", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	require.NoError(t, h.CheckAvailability(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	roomID := uuid.NewString()
	c, rec = ctxFor(http.MethodGet, "/v1/rooms/"+roomID+"/availability?date=junk", "", "", "")
	c.SetParamNames("id")
	c.SetParamValues(roomID)
	require.NoError(t, h.CheckAvailability(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckAvailabilityUnknownRoom(t *testing.T) {
	h, _ := newTestHandler(map[string]int{})
	roomID := uuid.NewString()

	c, rec := ctxFor(http.MethodGet, "/v1/rooms/"+roomID+"/availability?date=2030-01-01", "", "", "")
	c.SetParamNames("id")
	c.SetParamValues(roomID)
	require.NoError(t, h.CheckAvailability(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckAvailabilityUnconfiguredCapacity(t *testing.T) {
	roomID := uuid.NewString()
	h, _ := newTestHandler(map[string]int{roomID: 0})

	c, rec := ctxFor(http.MethodGet, "/v1/rooms/"+roomID+"/availability?date=2030-01-01", "", "", "")
	c.SetParamNames("id")
	c.SetParamValues(roomID)
	require.NoError(t, h.CheckAvailability(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetBookingOwnership(t *testing.T) {
	roomID := uuid.NewString()
	h, store := newTestHandler(map[string]int{roomID: 2})
	owner := uuid.NewString()
	b := seedBooking(store, owner, roomID, time.Now().UTC())

	// Owner reads their booking.
	c, rec := ctxFor(http.MethodGet, "/v1/bookings/"+b.ID, "", owner, model.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues(b.ID)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Another customer is rejected.
	c, rec = ctxFor(http.MethodGet, "/v1/bookings/"+b.ID, "", uuid.NewString(), model.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues(b.ID)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admin reads anything.
	c, rec = ctxFor(http.MethodGet, "/v1/bookings/"+b.ID, "", uuid.NewString(), model.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues(b.ID)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCancelBookingEndpoint(t *testing.T) {
	roomID := uuid.NewString()
	h, store := newTestHandler(map[string]int{roomID: 1})
	owner := uuid.NewString()
	b := seedBooking(store, owner, roomID, time.Now().UTC())

	c, rec := ctxFor(http.MethodPost, "/v1/bookings/"+b.ID+"/cancel", "", owner, model.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues(b.ID)
	require.NoError(t, h.Cancel(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, model.BookingStatusCancel, data["status"])

	// Second cancel is idempotent.
	c, rec = ctxFor(http.MethodPost, "/v1/bookings/"+b.ID+"/cancel", "", owner, model.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues(b.ID)
	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateBookingRejectsBadStatus(t *testing.T) {
	roomID := uuid.NewString()
	h, store := newTestHandler(map[string]int{roomID: 1})
	owner := uuid.NewString()
	b := seedBooking(store, owner, roomID, time.Now().UTC())

	c, rec := ctxFor(http.MethodPatch, "/v1/bookings/"+b.ID, `{"status":"pending"}`, owner, model.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues(b.ID)
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateBookingForbiddenForStranger(t *testing.T) {
	roomID := uuid.NewString()
	h, store := newTestHandler(map[string]int{roomID: 1})
	b := seedBooking(store, uuid.NewString(), roomID, time.Now().UTC())

	c, rec := ctxFor(http.MethodPatch, "/v1/bookings/"+b.ID, `{"price":200}`, uuid.NewString(), model.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues(b.ID)
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteBookingNotFound(t *testing.T) {
	h, _ := newTestHandler(map[string]int{})
	id := uuid.NewString()

	c, rec := ctxFor(http.MethodDelete, "/v1/bookings/"+id, "", uuid.NewString(), model.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFullyBookedConflictPayload(t *testing.T) {
	roomID := uuid.NewString()
	h, store := newTestHandler(map[string]int{roomID: 1})
	owner := uuid.NewString()
	today := model.DateOnly(time.Now().UTC())
	seedBooking(store, owner, roomID, today)
	other := seedBooking(store, uuid.NewString(), roomID, today.AddDate(0, 0, 1))

	// Moving the other booking onto the full date yields a 409 with the
	// conflict details.
	body := `{"date":"` + today.Format("2006-01-02") + `"}`
	c, rec := ctxFor(http.MethodPatch, "/v1/bookings/"+other.ID, body, other.UserID, model.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues(other.ID)
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusConflict, rec.Code)

	resp := decodeBody(t, rec)
	assert.Equal(t, false, resp["success"])
	details := resp["details"].(map[string]any)
	assert.Equal(t, roomID, details["room_id"])
	conflicts := details["conflicts"].([]any)
	require.Len(t, conflicts, 1)
	first := conflicts[0].(map[string]any)
	assert.Equal(t, today.Format("2006-01-02"), first["date"])
	assert.Equal(t, float64(1), first["totalRooms"])
	assert.Equal(t, float64(1), first["currentBookings"])
}
