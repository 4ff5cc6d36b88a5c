package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ivancurkovic15/personal-trainer-booking/internal/clock"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/model"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/notify"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/policy"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/repository"
)

// BookingHandler serves the client-facing booking flows: browsing open
// sessions, creating bookings and cancelling them.
type BookingHandler struct {
	Sessions *repository.SessionRepo
	Bookings *repository.BookingRepo
	Users    *repository.UserRepo
	Notifier notify.Notifier

	AdminEmail    string
	PackageDays   uint16
	NotifyTimeout time.Duration
}

func NewBookingHandler(sessions *repository.SessionRepo, bookings *repository.BookingRepo, users *repository.UserRepo, notifier notify.Notifier, adminEmail string, packageDays uint16, notifyTimeout time.Duration) *BookingHandler {
	if sessions == nil || bookings == nil || users == nil || notifier == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{
		Sessions:      sessions,
		Bookings:      bookings,
		Users:         users,
		Notifier:      notifier,
		AdminEmail:    adminEmail,
		PackageDays:   packageDays,
		NotifyTimeout: notifyTimeout,
	}
}

type sessionView struct {
	ID                uint64 `json:"id"`
	SessionDate       string `json:"session_date"`
	StartTime         string `json:"start_time"`
	Category          string `json:"category"`
	MaxCapacity       uint8  `json:"max_capacity"`
	SeatsLeft         uint8  `json:"seats_left"`
	PriceCents        uint32 `json:"price_cents"`
	PackagePriceCents uint32 `json:"package_price_cents"`
}

// ListUpcoming returns active future sessions with remaining seats.
// Seats shown here are advisory; the booking transaction recounts under
// the session row lock.
func (h *BookingHandler) ListUpcoming(c echo.Context) error {
	ctx := c.Request().Context()
	sessions, err := h.Sessions.ListUpcoming(ctx, time.Now().UTC())
	if err != nil {
		c.Logger().Errorf("list sessions: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "listing failed"})
	}
	occupied, err := h.Bookings.OccupiedBySessions(ctx)
	if err != nil {
		c.Logger().Errorf("occupied counts: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "listing failed"})
	}

	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		left := int(s.MaxCapacity) - int(occupied[s.ID])
		if left < 0 {
			left = 0
		}
		views = append(views, sessionView{
			ID:                s.ID,
			SessionDate:       s.SessionDate,
			StartTime:         s.StartTime,
			Category:          s.Category,
			MaxCapacity:       s.MaxCapacity,
			SeatsLeft:         uint8(left),
			PriceCents:        s.PriceCents,
			PackagePriceCents: s.PackagePriceCents,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": views})
}

type createBookingRequest struct {
	GroupSize  uint8  `json:"group_size" validate:"required,min=1,max=4"`
	Notes      string `json:"notes" validate:"max=500"`
	UsePackage bool   `json:"use_package"`
}

// CreateBooking reserves seats in a session. Capacity is validated under
// the session row lock in the same transaction as the insert, so two
// concurrent requests for the last seats cannot both succeed. Package
// accounting happens in the same transaction; notifications go out only
// after commit and never affect the response.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()

	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		c.Logger().Errorf("begin tx: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	s, err := h.Sessions.GetForUpdateTx(ctx, tx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		c.Logger().Errorf("lock session: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	start, err := clock.Combine(s.SessionDate, s.StartTime)
	if err != nil {
		c.Logger().Errorf("session %d has malformed schedule: %v", s.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}
	if !start.After(now) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "session already started"})
	}

	occupied, err := h.Bookings.OccupiedTx(ctx, tx, s.ID)
	if err != nil {
		c.Logger().Errorf("occupied count: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}
	if err := policy.CanBook(s, occupied, req.GroupSize); err != nil {
		switch {
		case errors.Is(err, policy.ErrCapacityExceeded):
			left := int(s.MaxCapacity) - int(occupied)
			if left < 0 {
				left = 0
			}
			return c.JSON(http.StatusConflict, echo.Map{"error": "not enough seats", "seats_left": left})
		case errors.Is(err, policy.ErrSessionInactive):
			return c.JSON(http.StatusConflict, echo.Map{"error": "session is not open for booking"})
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
	}

	b := &model.Booking{
		SessionID:      s.ID,
		UserID:         userID,
		GroupSize:      req.GroupSize,
		Status:         model.BookingConfirmed,
		Notes:          req.Notes,
		CancelDeadline: clock.CancellationDeadline(start),
	}
	if req.UsePackage {
		days := s.PackageDays
		if days == 0 {
			days = h.PackageDays
		}
		ref, ordinal, err := h.Users.ApplyPackageBookingTx(ctx, tx, userID, clock.PackageExpiry(now, days))
		if err != nil {
			c.Logger().Errorf("package booking: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
		}
		b.PackageRef = &ref
		b.PackageOrdinal = &ordinal
	}

	if err := h.Bookings.CreateTx(ctx, tx, b); err != nil {
		c.Logger().Errorf("insert booking: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}
	if err := tx.Commit(); err != nil {
		c.Logger().Errorf("commit booking: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}
	committed = true

	h.notifyBooked(userID, b, s)

	return c.JSON(http.StatusCreated, echo.Map{
		"id":              b.ID,
		"session_id":      b.SessionID,
		"group_size":      b.GroupSize,
		"status":          b.Status,
		"package_ref":     b.PackageRef,
		"package_ordinal": b.PackageOrdinal,
		"cancel_deadline": b.CancelDeadline.UTC().Format(time.RFC3339),
	})
}

// ListMyBookings returns the caller's bookings with session details.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Errorf("list bookings: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "listing failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": details})
}

// CancelBooking hard-deletes a booking. Clients may cancel their own
// bookings strictly before the 24 hour deadline; admins may cancel any
// booking at any time. Package bookings return one session to the
// client's counter.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role := getRole(c)
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx := c.Request().Context()
	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		c.Logger().Errorf("begin tx: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := h.Bookings.GetTx(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		c.Logger().Errorf("load booking: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
	}
	if role != model.RoleAdmin && b.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	}
	if err := policy.CanCancel(b.CancelDeadline, role, time.Now().UTC()); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":    "cancellation window closed",
			"deadline": b.CancelDeadline.UTC().Format(time.RFC3339),
		})
	}

	if b.IsPackage() {
		if err := h.Users.ApplyPackageCancellationTx(ctx, tx, b.UserID); err != nil {
			c.Logger().Errorf("package cancellation: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
		}
	}
	if err := h.Bookings.DeleteTx(ctx, tx, b.ID); err != nil {
		c.Logger().Errorf("delete booking: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
	}
	if err := tx.Commit(); err != nil {
		c.Logger().Errorf("commit cancellation: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
	}
	committed = true

	h.notifyCancelled(b)

	return c.JSON(http.StatusOK, echo.Map{"message": "booking cancelled", "id": b.ID})
}

// notifyBooked emails the client a confirmation and the studio admin a
// booking-received note. Runs in the background after commit; failures
// are logged and dropped.
func (h *BookingHandler) notifyBooked(userID uint64, b *model.Booking, s *model.Session) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.NotifyTimeout)
		defer cancel()

		rec, err := h.Users.GetByID(ctx, userID)
		if err != nil {
			return
		}
		data := map[string]string{
			notify.DataName:      rec.FullName,
			notify.DataDate:      s.SessionDate,
			notify.DataTime:      s.StartTime,
			notify.DataCategory:  s.Category,
			notify.DataGroupSize: strconv.Itoa(int(b.GroupSize)),
		}
		_ = h.Notifier.Notify(ctx, rec.Email, notify.KindBookingConfirmed, data)

		ownerEmail := h.AdminEmail
		if owner, err := h.Users.GetByID(ctx, s.AdminID); err == nil {
			ownerEmail = owner.Email
		}
		if ownerEmail != "" {
			_ = h.Notifier.Notify(ctx, ownerEmail, notify.KindBookingReceived, data)
		}
	}()
}

func (h *BookingHandler) notifyCancelled(b *model.Booking) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.NotifyTimeout)
		defer cancel()

		rec, err := h.Users.GetByID(ctx, b.UserID)
		if err != nil {
			return
		}
		s, err := h.Sessions.GetByID(ctx, b.SessionID)
		if err != nil {
			return
		}
		_ = h.Notifier.Notify(ctx, rec.Email, notify.KindBookingCancelled, map[string]string{
			notify.DataName:     rec.FullName,
			notify.DataDate:     s.SessionDate,
			notify.DataTime:     s.StartTime,
			notify.DataCategory: s.Category,
		})
	}()
}
