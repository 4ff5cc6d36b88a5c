package handler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ivancurkovic15/personal-trainer-booking/internal/model"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/notify"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	fails map[string]error // recipient -> forced error
}

func (n *recordingNotifier) Notify(_ context.Context, recipient string, kind notify.Kind, _ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, recipient+":"+string(kind))
	if err, ok := n.fails[recipient]; ok {
		return err
	}
	return nil
}

func cancelledBookings(n int) []model.ReminderItem {
	items := make([]model.ReminderItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, model.ReminderItem{
			BookingID:   uint64(i),
			SessionID:   9,
			Email:       fmt.Sprintf("client%d@example.com", i),
			FullName:    fmt.Sprintf("Client %d", i),
			SessionDate: "2026-03-15",
			StartTime:   "18:00",
			Category:    model.CategoryHIIT,
		})
	}
	return items
}

// Deleting a session with N confirmed bookings attempts exactly N
// cancellation notices.
func TestNotifySessionCancelledAttemptsAll(t *testing.T) {
	n := &recordingNotifier{}
	h := &AdminSessionHandler{Notifier: n, NotifyTimeout: time.Second}

	h.notifySessionCancelled(cancelledBookings(3))

	if len(n.calls) != 3 {
		t.Fatalf("expected 3 notification attempts, got %d: %v", len(n.calls), n.calls)
	}
	for i, call := range n.calls {
		want := fmt.Sprintf("client%d@example.com:%s", i+1, notify.KindSessionCancelled)
		if call != want {
			t.Fatalf("attempt %d: expected %q, got %q", i+1, want, call)
		}
	}
}

// One undeliverable recipient must not stop the fan-out: every remaining
// client is still attempted.
func TestNotifySessionCancelledIsolatesFailures(t *testing.T) {
	n := &recordingNotifier{fails: map[string]error{
		"client2@example.com": errors.New("mailbox unreachable"),
	}}
	h := &AdminSessionHandler{Notifier: n, NotifyTimeout: time.Second}

	h.notifySessionCancelled(cancelledBookings(4))

	if len(n.calls) != 4 {
		t.Fatalf("a failed recipient stopped the fan-out: %d of 4 attempted", len(n.calls))
	}
}
