package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ivancurkovic15/personal-trainer-booking/internal/clock"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/model"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/notify"
)

// fakeStore holds sessions keyed by start instant and tracks claims the
// way the DB marker does: the first claim wins, repeats return false.
type fakeStore struct {
	mu      sync.Mutex
	items   map[uint64]time.Time // bookingID -> session start
	claimed map[uint64]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[uint64]time.Time{}, claimed: map[uint64]bool{}}
}

func (f *fakeStore) add(bookingID uint64, start time.Time) {
	f.items[bookingID] = start
}

func (f *fakeStore) RemindersDue(_ context.Context, from, to time.Time) ([]model.ReminderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []model.ReminderItem
	for id, start := range f.items {
		if f.claimed[id] || start.Before(from) || start.After(to) {
			continue
		}
		due = append(due, model.ReminderItem{
			BookingID:   id,
			SessionID:   id,
			Email:       "client@example.com",
			FullName:    "Client",
			SessionDate: start.Format("2006-01-02"),
			StartTime:   start.Format("15:04"),
			Category:    model.CategoryStrength,
		})
	}
	return due, nil
}

func (f *fakeStore) ClaimReminder(_ context.Context, bookingID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimed[bookingID] {
		return false, nil
	}
	f.claimed[bookingID] = true
	return true, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []string
	fails map[string]error // recipient -> forced error
}

func (n *recordingNotifier) Notify(_ context.Context, recipient string, kind notify.Kind, _ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err, ok := n.fails[recipient]; ok {
		return err
	}
	n.sent = append(n.sent, recipient+":"+string(kind))
	return nil
}

func newReminder(store ReminderStore, n notify.Notifier) *Reminder {
	return NewReminder(store, n, 15*time.Minute, 5*time.Second)
}

func TestRunOnceFiresInsideWindow(t *testing.T) {
	start := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.add(1, start)
	n := &recordingNotifier{}
	r := newReminder(store, n)

	sent, err := r.RunOnce(context.Background(), start.Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if sent != 1 {
		t.Fatalf("expected 1 reminder, got %d", sent)
	}
	if len(n.sent) != 1 || n.sent[0] != "client@example.com:"+string(notify.KindSessionReminder) {
		t.Fatalf("unexpected dispatches: %v", n.sent)
	}
}

func TestRunOnceSkipsOutsideWindow(t *testing.T) {
	start := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.add(1, start)
	n := &recordingNotifier{}
	r := newReminder(store, n)

	for _, off := range []time.Duration{-3 * time.Hour, -time.Hour - 51*time.Minute, -30 * time.Minute} {
		sent, err := r.RunOnce(context.Background(), start.Add(off))
		if err != nil {
			t.Fatalf("RunOnce at offset %v: %v", off, err)
		}
		if sent != 0 {
			t.Fatalf("offset %v: expected 0 reminders, got %d", off, sent)
		}
	}
}

// Two scans inside the same window dispatch at most one reminder per
// booking: the second scan loses the claim.
func TestRunOnceIdempotent(t *testing.T) {
	start := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.add(1, start)
	store.add(2, start)
	n := &recordingNotifier{}
	r := newReminder(store, n)

	first, err := r.RunOnce(context.Background(), start.Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("first RunOnce: %v", err)
	}
	second, err := r.RunOnce(context.Background(), start.Add(-2*time.Hour+5*time.Minute))
	if err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if first != 2 || second != 0 {
		t.Fatalf("expected 2 then 0 reminders, got %d then %d", first, second)
	}
	if len(n.sent) != 2 {
		t.Fatalf("expected 2 total dispatches, got %d", len(n.sent))
	}
}

// One failing dispatch must not abort the scan for other bookings, and a
// failed booking is not retried on the next scan (claim already spent).
func TestRunOnceIsolatesFailures(t *testing.T) {
	start := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.add(1, start)
	store.add(2, start)
	n := &recordingNotifier{fails: map[string]error{}}

	// Fail every dispatch once by failing the shared recipient, then
	// clear the failure before the second scan.
	n.fails["client@example.com"] = errors.New("smtp down")
	r := newReminder(store, n)

	sent, err := r.RunOnce(context.Background(), start.Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if sent != 0 {
		t.Fatalf("expected 0 successful reminders, got %d", sent)
	}

	delete(n.fails, "client@example.com")
	sent, err = r.RunOnce(context.Background(), start.Add(-2*time.Hour+5*time.Minute))
	if err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if sent != 0 {
		t.Fatalf("claimed bookings must not be retried, got %d dispatches", sent)
	}
}

// Mixed outcome within one scan: booking 1 delivers, booking 2's
// recipient fails.
func TestRunOncePartialFailure(t *testing.T) {
	start := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.add(1, start)
	mixed := &mixedStore{fakeStore: store}
	mixed.add(2, start)
	n := &recordingNotifier{fails: map[string]error{"down@example.com": errors.New("smtp down")}}
	r := newReminder(mixed, n)

	sent, err := r.RunOnce(context.Background(), start.Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if sent != 1 {
		t.Fatalf("expected 1 successful reminder out of 2, got %d", sent)
	}
}

// mixedStore routes booking 2 to a failing recipient.
type mixedStore struct {
	*fakeStore
}

func (m *mixedStore) RemindersDue(ctx context.Context, from, to time.Time) ([]model.ReminderItem, error) {
	items, err := m.fakeStore.RemindersDue(ctx, from, to)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].BookingID == 2 {
			items[i].Email = "down@example.com"
		}
	}
	return items, nil
}

// The fake window logic must agree with the clock package.
func TestFakeStoreMatchesClockWindow(t *testing.T) {
	start := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	now := start.Add(-2 * time.Hour)
	from, to := clock.ReminderWindow(now)
	if start.Before(from) || start.After(to) {
		t.Fatalf("session at -2h must be inside [%v, %v]", from, to)
	}
}
