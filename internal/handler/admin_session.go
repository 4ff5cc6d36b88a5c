package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ivancurkovic15/personal-trainer-booking/internal/clock"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/model"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/notify"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/repository"
)

// AdminSessionHandler serves the admin's session management endpoints.
type AdminSessionHandler struct {
	Sessions *repository.SessionRepo
	Bookings *repository.BookingRepo
	Notifier notify.Notifier

	SessionPriceCents uint32
	PackagePriceCents uint32
	PackageDays       uint16
	NotifyTimeout     time.Duration
}

func NewAdminSessionHandler(sessions *repository.SessionRepo, bookings *repository.BookingRepo, notifier notify.Notifier, sessionPriceCents, packagePriceCents uint32, packageDays uint16, notifyTimeout time.Duration) *AdminSessionHandler {
	if sessions == nil || bookings == nil || notifier == nil {
		panic("nil dependency passed to NewAdminSessionHandler")
	}
	return &AdminSessionHandler{
		Sessions:          sessions,
		Bookings:          bookings,
		Notifier:          notifier,
		SessionPriceCents: sessionPriceCents,
		PackagePriceCents: packagePriceCents,
		PackageDays:       packageDays,
		NotifyTimeout:     notifyTimeout,
	}
}

type createSessionRequest struct {
	SessionDate string `json:"session_date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"start_time" validate:"required"`
	Category    string `json:"category" validate:"required"`
	MaxCapacity uint8  `json:"max_capacity" validate:"required,min=1,max=4"`
}

// CreateSession schedules a new training slot. Date and time must combine
// into a future instant, the category must belong to the closed set, and
// capacity is bounded 1..4. Prices are stamped from configuration so a
// later price change never rewrites existing sessions.
func (h *AdminSessionHandler) CreateSession(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if !model.ValidCategory(req.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	}
	start, err := clock.Combine(req.SessionDate, req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date or time"})
	}
	if !start.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session must start in the future"})
	}

	s := &model.Session{
		AdminID:           adminID,
		SessionDate:       req.SessionDate,
		StartTime:         req.StartTime,
		Category:          req.Category,
		MaxCapacity:       req.MaxCapacity,
		IsActive:          true,
		PriceCents:        h.SessionPriceCents,
		PackagePriceCents: h.PackagePriceCents,
		PackageDays:       h.PackageDays,
	}
	if err := h.Sessions.Create(c.Request().Context(), s); err != nil {
		if errors.Is(err, repository.ErrDuplicateSession) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a session already exists at this date and time"})
		}
		c.Logger().Errorf("create session: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create session"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":           s.ID,
		"session_date": s.SessionDate,
		"start_time":   s.StartTime,
		"category":     s.Category,
		"max_capacity": s.MaxCapacity,
		"price_cents":  s.PriceCents,
	})
}

// ListSessions returns every session, active or not, for the admin view.
func (h *AdminSessionHandler) ListSessions(c echo.Context) error {
	sessions, err := h.Sessions.ListAll(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list all sessions: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "listing failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": sessions})
}

// ListSessionBookings returns every booking of one session.
func (h *AdminSessionHandler) ListSessionBookings(c echo.Context) error {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	details, err := h.Bookings.ListBySession(c.Request().Context(), sessionID)
	if err != nil {
		c.Logger().Errorf("list session bookings: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "listing failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": details})
}

// DeleteSession removes a session and cascades to its bookings. The
// affected clients are collected inside the transaction and notified
// after commit, one failure never blocking the rest.
func (h *AdminSessionHandler) DeleteSession(c echo.Context) error {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	ctx := c.Request().Context()
	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		c.Logger().Errorf("begin tx: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deletion failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := h.Sessions.GetForUpdateTx(ctx, tx, sessionID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		c.Logger().Errorf("lock session: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deletion failed"})
	}

	affected, err := h.Bookings.ConfirmedBySessionTx(ctx, tx, sessionID)
	if err != nil {
		c.Logger().Errorf("collect bookings: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deletion failed"})
	}
	removed, err := h.Bookings.DeleteBySessionTx(ctx, tx, sessionID)
	if err != nil {
		c.Logger().Errorf("cascade delete bookings: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deletion failed"})
	}
	if err := h.Sessions.DeleteTx(ctx, tx, sessionID); err != nil {
		c.Logger().Errorf("delete session: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deletion failed"})
	}
	if err := tx.Commit(); err != nil {
		c.Logger().Errorf("commit deletion: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deletion failed"})
	}
	committed = true

	go h.notifySessionCancelled(affected)

	return c.JSON(http.StatusOK, echo.Map{
		"message":          "session deleted",
		"bookings_removed": removed,
	})
}

// notifySessionCancelled emails every affected client after the cascade
// commits. One undeliverable recipient must not starve the rest, so each
// failure is logged and the loop continues.
func (h *AdminSessionHandler) notifySessionCancelled(affected []model.ReminderItem) {
	for _, it := range affected {
		ctx, cancel := context.WithTimeout(context.Background(), h.NotifyTimeout)
		err := h.Notifier.Notify(ctx, it.Email, notify.KindSessionCancelled, map[string]string{
			notify.DataName:     it.FullName,
			notify.DataDate:     it.SessionDate,
			notify.DataTime:     it.StartTime,
			notify.DataCategory: it.Category,
		})
		cancel()
		if err != nil {
			log.Printf("session-delete: cancellation notice to %s for booking %d failed: %v", it.Email, it.BookingID, err)
		}
	}
}
