package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-booking/internal/model"
	"github.com/iliyamo/hotel-room-booking/internal/repository"
	"github.com/iliyamo/hotel-room-booking/internal/utils"
)

// HotelHandler serves the hotel/room catalog: public browsing and
// search plus admin management of hotels and room inventory.
type HotelHandler struct {
	Hotels   *repository.HotelRepo
	Rooms    *repository.RoomRepo
	Validate *validator.Validate
}

// NewHotelHandler constructs a HotelHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewHotelHandler(hotels *repository.HotelRepo, rooms *repository.RoomRepo) *HotelHandler {
	if hotels == nil || rooms == nil {
		panic("nil repository passed to NewHotelHandler")
	}
	return &HotelHandler{Hotels: hotels, Rooms: rooms, Validate: validator.New()}
}

// ----- DTOs -----

type createHotelReq struct {
	Name    string  `json:"name" validate:"required,max=200"`
	City    string  `json:"city" validate:"required,max=100"`
	Country string  `json:"country" validate:"required,max=100"`
	Address *string `json:"address" validate:"omitempty,max=300"`
	Stars   *uint8  `json:"stars" validate:"omitempty,min=1,max=5"`
}

type createRoomReq struct {
	Name          string  `json:"name" validate:"required,max=200"`
	Description   *string `json:"description" validate:"omitempty,max=1000"`
	TotalRooms    int     `json:"total_rooms" validate:"required,gt=0"`
	PricePerNight float64 `json:"price_per_night" validate:"required,gt=0"`
}

type updateInventoryReq struct {
	TotalRooms int `json:"total_rooms" validate:"required,gt=0"`
}

// Search handles GET /v1/hotels.  Supports name/city/country substring
// filters and pagination; only active hotels are returned.
func (h *HotelHandler) Search(c echo.Context) error {
	p := utils.GetPagination(c)
	q := repository.HotelSearchQuery{
		Name:    c.QueryParam("name"),
		City:    c.QueryParam("city"),
		Country: c.QueryParam("country"),
		Page:    p.Page,
		Limit:   p.Limit,
	}
	items, total, err := h.Hotels.Search(c.Request().Context(), q)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondList(c, items, utils.NewPageMeta(p, total))
}

// Get handles GET /v1/hotels/:id.
func (h *HotelHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid hotel id")
	}
	hotel, err := h.Hotels.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, http.StatusOK, hotel)
}

// ListRooms handles GET /v1/hotels/:id/rooms and returns the hotel's
// bookable rooms.
func (h *HotelHandler) ListRooms(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid hotel id")
	}
	if _, err := h.Hotels.GetByID(c.Request().Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	rooms, err := h.Rooms.ListByHotel(c.Request().Context(), id, true)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, http.StatusOK, rooms)
}

// GetRoom handles GET /v1/rooms/:id.
func (h *HotelHandler) GetRoom(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid room id")
	}
	room, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, http.StatusOK, room)
}

// Create handles POST /v1/hotels (admin only, enforced by route
// middleware).
func (h *HotelHandler) Create(c echo.Context) error {
	var req createHotelReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(&req); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	hotel := &model.Hotel{
		Name:     req.Name,
		City:     req.City,
		Country:  req.Country,
		Address:  req.Address,
		Stars:    req.Stars,
		IsActive: true,
	}
	if err := h.Hotels.Create(c.Request().Context(), hotel); err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, http.StatusCreated, hotel)
}

// CreateRoom handles POST /v1/hotels/:id/rooms (admin only).  The
// total_rooms value is the room's per-date inventory and must be
// positive so availability is computable from day one.
func (h *HotelHandler) CreateRoom(c echo.Context) error {
	hotelID := c.Param("id")
	if _, err := uuid.Parse(hotelID); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid hotel id")
	}
	if _, err := h.Hotels.GetByID(c.Request().Context(), hotelID); err != nil {
		return respondServiceError(c, err)
	}
	var req createRoomReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(&req); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	room := &model.Room{
		HotelID:       hotelID,
		Name:          req.Name,
		Description:   req.Description,
		TotalRooms:    req.TotalRooms,
		PricePerNight: req.PricePerNight,
		IsActive:      true,
	}
	if err := h.Rooms.Create(c.Request().Context(), room); err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, http.StatusCreated, room)
}

// UpdateInventory handles PATCH /v1/rooms/:id/inventory (admin only).
// Shrinking inventory never touches existing bookings; future
// availability checks simply count against the new capacity.
func (h *HotelHandler) UpdateInventory(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid room id")
	}
	var req updateInventoryReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if err := h.Validate.Struct(&req); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	room, err := h.Rooms.UpdateInventory(c.Request().Context(), id, req.TotalRooms)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, http.StatusOK, room)
}
