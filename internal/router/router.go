// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/ivancurkovic15/personal-trainer-booking/internal/handler"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/middleware"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/model"
)

// requestValidator adapts go-playground/validator to echo's Validator
// interface so handlers can call c.Validate on bound request structs.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Booking      *handler.BookingHandler
	AdminSession *handler.AdminSessionHandler
	AdminPackage *handler.AdminPackageHandler
	Reminder     *handler.AdminReminderHandler
}

// Register mounts all routes on the Echo instance. Public routes carry no
// auth; /v1 routes require a valid access token; /v1/admin additionally
// requires the ADMIN role. The rate limiter guards everything under /v1.
func Register(e *echo.Echo, h Handlers, jwtSecret string, limiter echo.MiddlewareFunc) {
	e.Validator = &requestValidator{validate: validator.New()}

	e.GET("/healthz", handler.Health)

	pub := e.Group("/v1/auth", limiter)
	pub.POST("/register", h.Auth.Register)
	pub.POST("/login", h.Auth.Login)
	pub.POST("/refresh", h.Auth.Refresh)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), limiter)
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleClient))
	auth.POST("/auth/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me)
	auth.GET("/sessions", h.Booking.ListUpcoming)
	auth.POST("/sessions/:id/bookings", h.Booking.CreateBooking)
	auth.GET("/my-bookings", h.Booking.ListMyBookings)
	auth.DELETE("/bookings/:id", h.Booking.CancelBooking)

	admin := auth.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/sessions", h.AdminSession.CreateSession)
	admin.GET("/sessions", h.AdminSession.ListSessions)
	admin.GET("/sessions/:id/bookings", h.AdminSession.ListSessionBookings)
	admin.DELETE("/sessions/:id", h.AdminSession.DeleteSession)
	admin.DELETE("/bookings/:id", h.Booking.CancelBooking)
	admin.POST("/clients/:id/package", h.AdminPackage.GrantPackage)
	admin.DELETE("/clients/:id/package", h.AdminPackage.ResetPackage)
	admin.POST("/reminders/run", h.Reminder.TriggerScan)
}
