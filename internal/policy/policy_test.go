package policy

import (
	"errors"
	"testing"
	"time"

	"github.com/ivancurkovic15/personal-trainer-booking/internal/model"
)

func activeSession(capacity uint8) *model.Session {
	return &model.Session{
		ID:          1,
		SessionDate: "2026-03-15",
		StartTime:   "09:00",
		Category:    model.CategoryStrength,
		MaxCapacity: capacity,
		IsActive:    true,
	}
}

func TestCanBookWithinCapacity(t *testing.T) {
	s := activeSession(4)
	if err := CanBook(s, 0, 4); err != nil {
		t.Fatalf("empty session, group 4: %v", err)
	}
	if err := CanBook(s, 2, 2); err != nil {
		t.Fatalf("2 occupied, group 2: %v", err)
	}
}

// Capacity 4 with 3 occupied: group 2 must fail, group 1 must succeed, and
// a full session rejects any further booking.
func TestCanBookLastSeat(t *testing.T) {
	s := activeSession(4)
	if err := CanBook(s, 3, 2); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if err := CanBook(s, 3, 1); err != nil {
		t.Fatalf("last seat should be bookable: %v", err)
	}
	for gs := uint8(1); gs <= 4; gs++ {
		if err := CanBook(s, 4, gs); !errors.Is(err, ErrCapacityExceeded) {
			t.Fatalf("full session, group %d: expected ErrCapacityExceeded, got %v", gs, err)
		}
	}
}

func TestCanBookInactiveSession(t *testing.T) {
	s := activeSession(4)
	s.IsActive = false
	if err := CanBook(s, 0, 1); !errors.Is(err, ErrSessionInactive) {
		t.Fatalf("expected ErrSessionInactive, got %v", err)
	}
}

func TestCanBookGroupSizeBounds(t *testing.T) {
	s := activeSession(4)
	if err := CanBook(s, 0, 0); !errors.Is(err, ErrInvalidGroupSize) {
		t.Fatalf("group 0: expected ErrInvalidGroupSize, got %v", err)
	}
	if err := CanBook(s, 0, 5); !errors.Is(err, ErrInvalidGroupSize) {
		t.Fatalf("group 5: expected ErrInvalidGroupSize, got %v", err)
	}
}

func TestCanCancelBoundary(t *testing.T) {
	deadline := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	if err := CanCancel(deadline, model.RoleClient, deadline.Add(-time.Second)); err != nil {
		t.Fatalf("one second before deadline: %v", err)
	}
	if err := CanCancel(deadline, model.RoleClient, deadline); !errors.Is(err, ErrCancellationWindowClosed) {
		t.Fatalf("exactly at deadline: expected ErrCancellationWindowClosed, got %v", err)
	}
	if err := CanCancel(deadline, model.RoleClient, deadline.Add(time.Second)); !errors.Is(err, ErrCancellationWindowClosed) {
		t.Fatalf("one second past deadline: expected ErrCancellationWindowClosed, got %v", err)
	}
}

func TestAdminCancelsAnyTime(t *testing.T) {
	deadline := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for _, now := range []time.Time{deadline.Add(-time.Hour), deadline, deadline.Add(48 * time.Hour)} {
		if err := CanCancel(deadline, model.RoleAdmin, now); err != nil {
			t.Fatalf("admin at %v: %v", now, err)
		}
	}
}
