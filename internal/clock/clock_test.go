package clock

import (
	"errors"
	"testing"
	"time"
)

func TestCombine(t *testing.T) {
	got, err := Combine("2026-03-15", "09:30")
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	want := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCombineRejectsBadTime(t *testing.T) {
	for _, s := range []string{"", "09", "9h30", "09:30:00", "24:00", "12:60", "-1:15", "ab:cd"} {
		if _, err := Combine("2026-03-15", s); !errors.Is(err, ErrInvalidTimeFormat) {
			t.Fatalf("time %q: expected ErrInvalidTimeFormat, got %v", s, err)
		}
	}
}

func TestCombineRejectsBadDate(t *testing.T) {
	if _, err := Combine("15/03/2026", "09:30"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestCancellationDeadline(t *testing.T) {
	start := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	got := CancellationDeadline(start)
	if want := start.Add(-24 * time.Hour); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestReminderWindowBounds(t *testing.T) {
	now := time.Date(2026, 3, 15, 7, 0, 0, 0, time.UTC)
	from, to := ReminderWindow(now)
	if want := now.Add(2*time.Hour - 8*time.Minute); !from.Equal(want) {
		t.Fatalf("window start: expected %v, got %v", want, from)
	}
	if want := now.Add(2*time.Hour + 7*time.Minute); !to.Equal(want) {
		t.Fatalf("window end: expected %v, got %v", want, to)
	}
	// Window must be at least as wide as the 15-minute polling cadence.
	if to.Sub(from) < 15*time.Minute {
		t.Fatalf("window narrower than polling cadence: %v", to.Sub(from))
	}
}

// A session starting at T is picked up by scans anywhere in
// [T-2h07m, T-1h52m] and by no scan outside that range.
func TestReminderWindowCoversSession(t *testing.T) {
	start := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	inside := []time.Duration{-2*time.Hour - 7*time.Minute, -2 * time.Hour, -time.Hour - 52*time.Minute}
	outside := []time.Duration{-2*time.Hour - 8*time.Minute, -time.Hour - 51*time.Minute, -30 * time.Minute}
	for _, off := range inside {
		from, to := ReminderWindow(start.Add(off))
		if start.Before(from) || start.After(to) {
			t.Fatalf("offset %v: session start should be inside [%v, %v]", off, from, to)
		}
	}
	for _, off := range outside {
		from, to := ReminderWindow(start.Add(off))
		if !start.Before(from) && !start.After(to) {
			t.Fatalf("offset %v: session start should be outside [%v, %v]", off, from, to)
		}
	}
}

func TestPackageExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	got := PackageExpiry(now, 90)
	if want := now.Add(90 * 24 * time.Hour); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
