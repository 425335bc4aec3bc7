package handler

import (
	"net/http" // HTTP status codes
	"time"     // date parsing for query parameters

	"github.com/go-playground/validator/v10" // request body validation
	"github.com/google/uuid"                 // UUID validation for path parameters
	"github.com/labstack/echo/v4"            // Echo web framework

	"github.com/iliyamo/hotel-room-booking/internal/model"
	"github.com/iliyamo/hotel-room-booking/internal/queue"
	"github.com/iliyamo/hotel-room-booking/internal/repository"
	"github.com/iliyamo/hotel-room-booking/internal/service"
	"github.com/iliyamo/hotel-room-booking/internal/utils"
)

// BookingHandler exposes the availability engine over HTTP.  All
// methods assume that JWT authentication and role validation has
// already been performed by middleware; customers may only touch their
// own bookings while admins see everything.
type BookingHandler struct {
	Svc      *service.BookingService
	Validate *validator.Validate
}

// NewBookingHandler constructs a BookingHandler.  The service must be
// non-nil.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc, Validate: validator.New()}
}

// ----- DTOs -----

type createBookingReq struct {
	HotelID string  `json:"hotel_id" validate:"required,uuid4"`
	RoomID  string  `json:"room_id" validate:"required,uuid4"`
	Date    string  `json:"date" validate:"required,datetime=2006-01-02"`
	Price   float64 `json:"price" validate:"required,gt=0"`
	Note    *string `json:"note" validate:"omitempty,max=500"`
}

type createBatchReq struct {
	HotelID string   `json:"hotel_id" validate:"required,uuid4"`
	RoomID  string   `json:"room_id" validate:"required,uuid4"`
	Dates   []string `json:"dates" validate:"required,min=1,max=30,dive,datetime=2006-01-02"`
	Price   float64  `json:"price" validate:"required,gt=0"`
	Note    *string  `json:"note" validate:"omitempty,max=500"`
}

type updateBookingReq struct {
	RoomID *string  `json:"room_id" validate:"omitempty,uuid4"`
	Date   *string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Price  *float64 `json:"price" validate:"omitempty,gt=0"`
	Note   *string  `json:"note" validate:"omitempty,max=500"`
	Status *string  `json:"status" validate:"omitempty,oneof=active cancel"`
}

// bookingID validates the :id path parameter as a UUID.
func bookingID(c echo.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// CheckAvailability handles GET /v1/rooms/:id/availability.  The date
// query parameter is required; exclude_booking_id is optional and is
// used when re-checking during an update.  The check is read-only.
func (h *BookingHandler) CheckAvailability(c echo.Context) error {
	roomID, ok := bookingID(c)
	if !ok {
		return respondError(c, http.StatusBadRequest, "invalid room id")
	}
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "date must be a valid YYYY-MM-DD date")
	}
	excludeID := c.QueryParam("exclude_booking_id")
	if excludeID != "" {
		if _, err := uuid.Parse(excludeID); err != nil {
			return respondError(c, http.StatusBadRequest, "invalid exclude_booking_id")
		}
	}
	res, err := h.Svc.CheckAvailability(c.Request().Context(), roomID, date, excludeID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, http.StatusOK, res)
}

// Create handles POST /v1/bookings.  The booking is created for the
// authenticated user; the engine enforces the capacity invariant.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "unauthorized")
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(&req); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	date, _ := parseDate(req.Date) // format guaranteed by the datetime tag
	b, err := h.Svc.CreateBooking(c.Request().Context(), service.CreateBookingInput{
		UserID:  userID,
		HotelID: req.HotelID,
		RoomID:  req.RoomID,
		Date:    date,
		Price:   req.Price,
		Note:    req.Note,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	// Publish the booking event; a broker outage must never fail the
	// request, so the error is ignored after being logged downstream.
	_ = queue.PublishBookingCreated(c.Request().Context(), queue.NewBookingCreatedEvent(b))
	return respondOK(c, http.StatusCreated, b)
}

// CreateBatch handles POST /v1/bookings/batch.  Either every requested
// date is booked or none are; a conflict response lists all dates that
// blocked the request.
func (h *BookingHandler) CreateBatch(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "unauthorized")
	}
	var req createBatchReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(&req); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	dates := make([]time.Time, 0, len(req.Dates))
	for _, s := range req.Dates {
		d, _ := parseDate(s)
		dates = append(dates, d)
	}
	res, err := h.Svc.CreateMultipleBookings(c.Request().Context(), service.CreateBatchInput{
		UserID:  userID,
		HotelID: req.HotelID,
		RoomID:  req.RoomID,
		Dates:   dates,
		Price:   req.Price,
		Note:    req.Note,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	for i := range res.Bookings {
		_ = queue.PublishBookingCreated(c.Request().Context(), queue.NewBookingCreatedEvent(&res.Bookings[i]))
	}
	return respondOK(c, http.StatusCreated, res)
}

// Get handles GET /v1/bookings/:id.  Customers may only read their own
// bookings.
func (h *BookingHandler) Get(c echo.Context) error {
	id, ok := bookingID(c)
	if !ok {
		return respondError(c, http.StatusBadRequest, "invalid booking id")
	}
	b, err := h.Svc.GetBookingByID(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	if userID, _ := currentUserID(c); !isAdmin(c) && b.UserID != userID {
		return respondError(c, http.StatusForbidden, "forbidden")
	}
	return respondOK(c, http.StatusOK, b)
}

// List handles GET /v1/bookings.  Admins may filter by user, hotel,
// room, status and date; customers always see only their own bookings.
func (h *BookingHandler) List(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "unauthorized")
	}
	f := repository.BookingFilter{
		HotelID: c.QueryParam("hotel_id"),
		RoomID:  c.QueryParam("room_id"),
		Status:  c.QueryParam("status"),
	}
	if f.Status != "" && !model.ValidBookingStatus(f.Status) {
		return respondError(c, http.StatusBadRequest, "status must be 'active' or 'cancel'")
	}
	if ds := c.QueryParam("date"); ds != "" {
		d, err := parseDate(ds)
		if err != nil {
			return respondError(c, http.StatusBadRequest, "date must be a valid YYYY-MM-DD date")
		}
		f.Date = &d
	}
	if isAdmin(c) {
		f.UserID = c.QueryParam("user_id")
	} else {
		f.UserID = userID
	}
	p := utils.GetPagination(c)
	items, total, err := h.Svc.ListBookings(c.Request().Context(), f, p.Page, p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondList(c, items, utils.NewPageMeta(p, total))
}

// ListMine handles GET /v1/bookings/my and returns the authenticated
// user's bookings newest first.
func (h *BookingHandler) ListMine(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "unauthorized")
	}
	p := utils.GetPagination(c)
	items, total, err := h.Svc.ListBookingsByUser(c.Request().Context(), userID, p.Page, p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondList(c, items, utils.NewPageMeta(p, total))
}

// ListRange handles GET /v1/bookings/range?start=...&end=... (admin
// only, enforced by route middleware).  Results are ordered by booking
// date.
func (h *BookingHandler) ListRange(c echo.Context) error {
	start, err := parseDate(c.QueryParam("start"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "start must be a valid YYYY-MM-DD date")
	}
	end, err := parseDate(c.QueryParam("end"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "end must be a valid YYYY-MM-DD date")
	}
	p := utils.GetPagination(c)
	items, total, err := h.Svc.ListBookingsByDateRange(c.Request().Context(), start, end, p.Page, p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondList(c, items, utils.NewPageMeta(p, total))
}

// Update handles PATCH /v1/bookings/:id.  Changing the room or the
// date triggers an availability re-check that excludes the booking's
// own row.
func (h *BookingHandler) Update(c echo.Context) error {
	id, ok := bookingID(c)
	if !ok {
		return respondError(c, http.StatusBadRequest, "invalid booking id")
	}
	if err := h.authorizeOwner(c, id); err != nil {
		return respondServiceError(c, err)
	}
	var req updateBookingReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(&req); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	in := service.UpdateBookingInput{
		RoomID: req.RoomID,
		Price:  req.Price,
		Note:   req.Note,
		Status: req.Status,
	}
	if req.Date != nil {
		d, _ := parseDate(*req.Date)
		in.Date = &d
	}
	b, err := h.Svc.UpdateBooking(c.Request().Context(), id, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, http.StatusOK, b)
}

// Cancel handles POST /v1/bookings/:id/cancel.  Cancellation is a soft
// delete and is idempotent.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, ok := bookingID(c)
	if !ok {
		return respondError(c, http.StatusBadRequest, "invalid booking id")
	}
	if err := h.authorizeOwner(c, id); err != nil {
		return respondServiceError(c, err)
	}
	b, err := h.Svc.CancelBooking(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, http.StatusOK, b)
}

// Delete handles DELETE /v1/bookings/:id (admin only, enforced by
// route middleware).  The row is removed and returned.
func (h *BookingHandler) Delete(c echo.Context) error {
	id, ok := bookingID(c)
	if !ok {
		return respondError(c, http.StatusBadRequest, "invalid booking id")
	}
	b, err := h.Svc.DeleteBooking(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, http.StatusOK, b)
}

// authorizeOwner loads the booking and verifies the caller owns it or
// is an admin.  Returns repository sentinel errors so the caller can
// funnel them through respondServiceError.
func (h *BookingHandler) authorizeOwner(c echo.Context, id string) error {
	if isAdmin(c) {
		return nil
	}
	userID, ok := currentUserID(c)
	if !ok {
		return repository.ErrForbidden
	}
	b, err := h.Svc.GetBookingByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return repository.ErrForbidden
	}
	return nil
}
