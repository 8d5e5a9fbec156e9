package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/showtix/concert-reservation/internal/config"
	"github.com/showtix/concert-reservation/internal/database"
	"github.com/showtix/concert-reservation/internal/handler"
	"github.com/showtix/concert-reservation/internal/queue"
	"github.com/showtix/concert-reservation/internal/repository"
	"github.com/showtix/concert-reservation/internal/router"
	"github.com/showtix/concert-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	concerts := repository.NewConcertRepo(db)
	reservations := repository.NewReservationRepo(db)

	svc := service.NewReservationService(reservations, nil, queue.PublishReservationEvent)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Deps{
		Cfg:          cfg,
		Redis:        rdb,
		Auth:         &handler.AuthHandler{Cfg: cfg, Users: users, Tokens: tokens},
		Concerts:     handler.NewConcertHandler(concerts),
		Reservations: handler.NewReservationHandler(svc),
	})

	// Drains reservation events into the audit log.  Runs until the
	// process exits; reconnects on broker failure.
	go queue.StartReservationConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
