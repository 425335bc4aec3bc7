package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-booking/internal/repository"
	"github.com/iliyamo/hotel-room-booking/internal/service"
	"github.com/iliyamo/hotel-room-booking/internal/utils"
)

// Every response carries a `success` flag plus either a `data` payload
// or an `error`/`message` pair; list responses additionally carry a
// `pagination` block.  These helpers keep the envelope consistent
// across handlers.

func respondOK(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func respondList(c echo.Context, data any, meta utils.PageMeta) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": data, "pagination": meta})
}

func respondError(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// respondServiceError maps engine and repository errors onto the HTTP
// surface.  Fully-booked conflicts carry the capacity figures and the
// complete list of conflicting dates so clients can explain the
// rejection without a follow-up query.
func respondServiceError(c echo.Context, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"error":   "validation failed",
			"message": ve.Error(),
			"field":   ve.Field,
		})
	}
	var fb *service.FullyBookedError
	if errors.As(err, &fb) {
		conflicts := make([]echo.Map, 0, len(fb.Conflicts))
		for _, cf := range fb.Conflicts {
			conflicts = append(conflicts, echo.Map{
				"date":            cf.Date.Format("2006-01-02"),
				"totalRooms":      cf.TotalRooms,
				"currentBookings": cf.CurrentBookings,
			})
		}
		return c.JSON(http.StatusConflict, echo.Map{
			"success": false,
			"error":   "room fully booked",
			"message": fb.Error(),
			"details": echo.Map{"room_id": fb.RoomID, "conflicts": conflicts},
		})
	}
	switch {
	case errors.Is(err, repository.ErrRoomNotFound):
		return respondError(c, http.StatusNotFound, "room not found")
	case errors.Is(err, repository.ErrBookingNotFound):
		return respondError(c, http.StatusNotFound, "booking not found")
	case errors.Is(err, repository.ErrHotelNotFound):
		return respondError(c, http.StatusNotFound, "hotel not found")
	case errors.Is(err, service.ErrCapacityUnknown):
		return respondError(c, http.StatusUnprocessableEntity, "room capacity not configured")
	case errors.Is(err, repository.ErrForbidden):
		return respondError(c, http.StatusForbidden, "forbidden")
	}
	return respondError(c, http.StatusInternalServerError, "internal error")
}

// currentUserID extracts the authenticated user's UUID placed in the
// context by the JWTAuth middleware.
func currentUserID(c echo.Context) (string, bool) {
	v, ok := c.Get("user_id").(string)
	return v, ok && v != ""
}

// isAdmin reports whether the request carries the ADMIN role.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "ADMIN"
}

// parseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
