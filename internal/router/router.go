// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-booking/internal/handler"
	"github.com/iliyamo/hotel-room-booking/internal/middleware"
	"github.com/iliyamo/hotel-room-booking/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes.  Unauthenticated
// operations live under /v1/auth; the protected identity endpoint lives
// under /v1 behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotation.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a bearer token (revoke all sessions) or a
	// refresh_token body (revoke one session); no JWT middleware needed.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))
	auth.GET("/me", a.Me)
}

// RegisterBooking registers the booking engine routes.  The availability
// probe is public so guests can check a room before registering; every
// write and read of booking records requires a session.  rateLimit may be
// nil when Redis is unavailable.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	e.GET("/v1/rooms/:id/availability", b.CheckAvailability)

	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))
	if rateLimit != nil {
		g.Use(rateLimit)
	}

	g.POST("/bookings", b.Create)
	g.POST("/bookings/batch", b.CreateBatch)
	g.GET("/bookings", b.List)
	g.GET("/bookings/my", b.ListMine)
	g.GET("/bookings/:id", b.Get)
	g.PATCH("/bookings/:id", b.Update)
	g.POST("/bookings/:id/cancel", b.Cancel)

	// Admin-only maintenance operations.
	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.DELETE("/bookings/:id", b.Delete)
	admin.GET("/bookings/range", b.ListRange)
}

// RegisterCatalog registers the hotel/room catalog.  Browsing is public
// and cacheable; creating hotels and rooms and adjusting inventory is
// restricted to admins.  cache may be nil when Redis is unavailable.
func RegisterCatalog(e *echo.Echo, h *handler.HotelHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	pub := e.Group("/v1")
	if cache != nil {
		pub.Use(cache)
	}
	pub.GET("/hotels", h.Search)
	pub.GET("/hotels/:id", h.Get)
	pub.GET("/hotels/:id/rooms", h.ListRooms)
	pub.GET("/rooms/:id", h.GetRoom)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/hotels", h.Create)
	admin.POST("/hotels/:id/rooms", h.CreateRoom)
	admin.PATCH("/rooms/:id/inventory", h.UpdateInventory)
}
