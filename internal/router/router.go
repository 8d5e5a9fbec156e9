// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/showtix/concert-reservation/internal/config"
	"github.com/showtix/concert-reservation/internal/handler"
	"github.com/showtix/concert-reservation/internal/middleware"
	"github.com/showtix/concert-reservation/internal/model"
)

// Deps carries everything route registration needs.
type Deps struct {
	Cfg          config.Config
	Redis        *redis.Client // nil disables rate limiting and caching
	Auth         *handler.AuthHandler
	Concerts     *handler.ConcertHandler
	Reservations *handler.ReservationHandler
}

// Register sets up every route.  A bearer token guards the mutating
// concert routes; the reservation admin routes additionally require the
// admin role.  Public concert reads go through the response cache.
func Register(e *echo.Echo, d Deps) {
	e.Use(middleware.NewTokenBucket(d.Cfg.RateLimit, d.Redis))

	e.GET("/healthz", handler.Health)

	// Auth.  /users/register is an alias kept for older clients.
	e.POST("/auth/register", d.Auth.Register)
	e.POST("/users/register", d.Auth.Register)
	e.POST("/auth/login", d.Auth.Login)
	e.POST("/auth/refresh", d.Auth.Refresh)
	e.POST("/auth/logout", d.Auth.Logout, middleware.OptionalJWTAuth(d.Cfg.JWTSecret))
	e.GET("/auth/me", d.Auth.Me, middleware.JWTAuth(d.Cfg.JWTSecret))

	// Public concert catalog, cached.
	cached := middleware.NewRedisCache(d.Cfg.Cache, d.Redis)
	e.GET("/concerts", d.Concerts.List, cached)
	e.GET("/concerts/:id", d.Concerts.Get, cached)

	// Concert management requires a valid token (any role).
	manage := e.Group("/concerts", middleware.JWTAuth(d.Cfg.JWTSecret))
	manage.POST("", d.Concerts.Create)
	manage.PATCH("/:id", d.Concerts.Update)
	manage.DELETE("/:id", d.Concerts.Delete)

	// Reservations.
	e.POST("/reservations", d.Reservations.Reserve)
	e.DELETE("/reservations/:userId/:concertId", d.Reservations.Cancel)
	e.GET("/reservations/user/:userId", d.Reservations.UserHistory)
	e.GET("/reservations/count/:concertId", d.Reservations.Count)

	admin := e.Group("/reservations/admin",
		middleware.JWTAuth(d.Cfg.JWTSecret),
		middleware.RequireRole(model.RoleAdmin))
	admin.GET("/all", d.Reservations.AllHistory)
	admin.GET("/stats", d.Reservations.Stats)
}
