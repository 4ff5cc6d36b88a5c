// Package clock holds the time arithmetic shared by the booking flow and
// the reminder scheduler: combining a session's date and "HH:MM" pair into
// an absolute UTC instant, deriving the 24-hour cancellation deadline, the
// sliding reminder window and package expiry.  Everything here is pure;
// callers pass "now" explicitly.
package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimeFormat indicates a time-of-day string that is not two
// colon-separated integers within range ("HH:MM").
var ErrInvalidTimeFormat = errors.New("invalid time format, expected HH:MM")

// Fixed offsets.  The reminder window is 15 minutes wide,
// [now+2h-8m, now+2h+7m], so a session starting at T is matched by scans
// from T-2h07m through T-1h52m and a 15-minute polling cadence with some
// scheduler jitter cannot skip a session between ticks.
const (
	CancellationNotice = 24 * time.Hour
	ReminderLead       = 2 * time.Hour
	reminderEarly      = 8 * time.Minute
	reminderLate       = 7 * time.Minute
)

const dateLayout = "2006-01-02"

// Combine merges a calendar date ("2006-01-02") and a time-of-day string
// ("HH:MM") into a single UTC instant.  It returns ErrInvalidTimeFormat
// when the time string does not parse as two in-range integers, and a
// plain error when the date is malformed.
func Combine(date, timeOfDay string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	hour, minute, err := parseHHMM(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), nil
}

// CancellationDeadline is the latest instant a client may cancel a booking:
// exactly 24 hours before the session starts.
func CancellationDeadline(start time.Time) time.Time {
	return start.Add(-CancellationNotice)
}

// ReminderWindow returns the closed interval of session start times for
// which a "starts in 2 hours" notification is due at the given instant.
func ReminderWindow(now time.Time) (from, to time.Time) {
	target := now.UTC().Add(ReminderLead)
	return target.Add(-reminderEarly), target.Add(reminderLate)
}

// PackageExpiry returns the expiry instant of a package bought or exercised
// at now, valid for the given number of days.
func PackageExpiry(now time.Time, days uint16) time.Time {
	return now.UTC().Add(time.Duration(days) * 24 * time.Hour)
}

func parseHHMM(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidTimeFormat
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, ErrInvalidTimeFormat
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, ErrInvalidTimeFormat
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidTimeFormat
	}
	return hour, minute, nil
}
