package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ivancurkovic15/personal-trainer-booking/internal/clock"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/notify"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/repository"
)

// AdminPackageHandler serves the admin's package management endpoints.
// Packages are sold out of band; the admin credits them here after
// payment clears.
type AdminPackageHandler struct {
	Users    *repository.UserRepo
	Notifier notify.Notifier

	PackageSessions uint8
	PackageDays     uint16
	NotifyTimeout   time.Duration
}

func NewAdminPackageHandler(users *repository.UserRepo, notifier notify.Notifier, packageSessions uint8, packageDays uint16, notifyTimeout time.Duration) *AdminPackageHandler {
	if users == nil || notifier == nil {
		panic("nil dependency passed to NewAdminPackageHandler")
	}
	return &AdminPackageHandler{
		Users:           users,
		Notifier:        notifier,
		PackageSessions: packageSessions,
		PackageDays:     packageDays,
		NotifyTimeout:   notifyTimeout,
	}
}

type grantPackageRequest struct {
	Sessions uint8 `json:"sessions" validate:"omitempty,min=1,max=8"`
}

// GrantPackage credits a client with package sessions under a fresh
// package reference. The expiry is overwritten to now plus the validity
// window, never extended from the previous value.
func (h *AdminPackageHandler) GrantPackage(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req grantPackageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	sessions := req.Sessions
	if sessions == 0 {
		sessions = h.PackageSessions
	}

	ctx := c.Request().Context()
	expiry := clock.PackageExpiry(time.Now().UTC(), h.PackageDays)
	state, err := h.Users.GrantPackage(ctx, userID, sessions, expiry)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		c.Logger().Errorf("grant package: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grant failed"})
	}

	go h.notifyGranted(userID, sessions, expiry)

	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "package": state})
}

// ResetPackage clears a client's package state entirely.
func (h *AdminPackageHandler) ResetPackage(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	state, err := h.Users.ResetPackage(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		c.Logger().Errorf("reset package: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "package": state})
}

func (h *AdminPackageHandler) notifyGranted(userID uint64, sessions uint8, expiry time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), h.NotifyTimeout)
	defer cancel()

	rec, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return
	}
	_ = h.Notifier.Notify(ctx, rec.Email, notify.KindPackageGranted, map[string]string{
		notify.DataName:     rec.FullName,
		notify.DataSessions: strconv.Itoa(int(sessions)),
		notify.DataExpiry:   expiry.UTC().Format("2006-01-02"),
	})
}
