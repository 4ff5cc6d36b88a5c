package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ivancurkovic15/personal-trainer-booking/internal/scheduler"
)

// AdminReminderHandler exposes a manual trigger for the reminder scan,
// useful for operational catch-up after downtime.
type AdminReminderHandler struct {
	Reminder *scheduler.Reminder
}

func NewAdminReminderHandler(r *scheduler.Reminder) *AdminReminderHandler {
	if r == nil {
		panic("nil reminder passed to NewAdminReminderHandler")
	}
	return &AdminReminderHandler{Reminder: r}
}

// TriggerScan runs one reminder sweep immediately and reports how many
// reminders were dispatched. The sweep uses the same claim logic as the
// background loop, so a concurrent tick cannot double-send.
func (h *AdminReminderHandler) TriggerScan(c echo.Context) error {
	sent, err := h.Reminder.RunOnce(c.Request().Context(), time.Now().UTC())
	if err != nil {
		c.Logger().Errorf("manual reminder scan: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scan failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reminders_sent": sent})
}
