package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-booking/internal/config"
	"github.com/iliyamo/hotel-room-booking/internal/database"
	"github.com/iliyamo/hotel-room-booking/internal/handler"
	"github.com/iliyamo/hotel-room-booking/internal/middleware"
	"github.com/iliyamo/hotel-room-booking/internal/queue"
	"github.com/iliyamo/hotel-room-booking/internal/repository"
	"github.com/iliyamo/hotel-room-booking/internal/router"
	"github.com/iliyamo/hotel-room-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	hotels := repository.NewHotelRepo(db)
	rooms := repository.NewRoomRepo(db)
	bookings := repository.NewBookingRepo(db)

	svc := service.NewBookingService(rooms, bookings)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	bookingH := handler.NewBookingHandler(svc)
	hotelH := handler.NewHotelHandler(hotels, rooms)

	// Redis is optional infrastructure: without it the server runs with
	// caching and rate limiting disabled.
	var cacheMW, rateMW echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		cacheMW = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
		rateMW = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	} else {
		log.Println("redis unavailable: response cache and rate limiting disabled")
	}

	// Background consumer logs booking events from RabbitMQ; it runs its
	// own reconnect loop and never takes the server down.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterCatalog(e, hotelH, cfg.JWTSecret, cacheMW)
	router.RegisterBooking(e, bookingH, cfg.JWTSecret, rateMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
