// Package scheduler runs the recurring reminder scan: every tick it looks
// for active sessions starting roughly two hours from now and sends each
// confirmed booking's client a reminder, exactly once per booking. The
// scan claims a persisted per-booking marker before dispatch, so
// overlapping windows, manual triggers and restarts cannot double-send.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/ivancurkovic15/personal-trainer-booking/internal/clock"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/model"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/notify"
)

// ReminderStore is the slice of the booking repository the scheduler
// needs. Declared here so tests can substitute fakes.
type ReminderStore interface {
	// RemindersDue lists confirmed, not-yet-reminded bookings of active
	// sessions starting within [from, to].
	RemindersDue(ctx context.Context, from, to time.Time) ([]model.ReminderItem, error)
	// ClaimReminder marks a booking's reminder as sent iff it was unsent,
	// reporting whether this caller won the claim.
	ClaimReminder(ctx context.Context, bookingID uint64) (bool, error)
}

// Reminder is the scheduler instance. Run it in its own goroutine; it
// holds no locks shared with request handling.
type Reminder struct {
	store         ReminderStore
	notifier      notify.Notifier
	interval      time.Duration
	notifyTimeout time.Duration
}

// NewReminder builds a scheduler scanning on the given interval with a
// per-dispatch timeout.
func NewReminder(store ReminderStore, notifier notify.Notifier, interval, notifyTimeout time.Duration) *Reminder {
	return &Reminder{
		store:         store,
		notifier:      notifier,
		interval:      interval,
		notifyTimeout: notifyTimeout,
	}
}

// Run ticks on the configured cadence until the context is cancelled.
// Each tick is independent; a failing tick is logged and the next one
// proceeds normally.
func (r *Reminder) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	log.Printf("reminder-scheduler: started, interval=%s", r.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("reminder-scheduler: stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx, time.Now()); err != nil {
				log.Printf("reminder-scheduler: tick failed: %v", err)
			}
		}
	}
}

// RunOnce performs a single scan at the given instant and returns the
// number of reminders dispatched. It is called by the ticker and by the
// manual admin trigger; calling it any number of times inside the same
// window sends at most one reminder per booking. Item-level failures
// such as a lost claim or a dispatch error are isolated: the scan
// continues and completes for all other bookings.
func (r *Reminder) RunOnce(ctx context.Context, now time.Time) (int, error) {
	from, to := clock.ReminderWindow(now)
	items, err := r.store.RemindersDue(ctx, from, to)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, it := range items {
		claimed, err := r.store.ClaimReminder(ctx, it.BookingID)
		if err != nil {
			log.Printf("reminder-scheduler: claim failed for booking %d: %v", it.BookingID, err)
			continue
		}
		if !claimed {
			// Another tick (or the manual trigger) got there first.
			continue
		}
		if err := r.dispatch(ctx, it); err != nil {
			// Claimed but not delivered: logged, not retried. The marker
			// stays set, keeping the at-most-once guarantee.
			log.Printf("reminder-scheduler: dispatch failed for booking %d: %v", it.BookingID, err)
			continue
		}
		sent++
	}
	if len(items) > 0 {
		log.Printf("reminder-scheduler: scan [%s, %s] matched %d booking(s), sent %d",
			from.Format(time.RFC3339), to.Format(time.RFC3339), len(items), sent)
	}
	return sent, nil
}

func (r *Reminder) dispatch(ctx context.Context, it model.ReminderItem) error {
	cctx, cancel := context.WithTimeout(ctx, r.notifyTimeout)
	defer cancel()
	return r.notifier.Notify(cctx, it.Email, notify.KindSessionReminder, map[string]string{
		notify.DataName:     it.FullName,
		notify.DataDate:     it.SessionDate,
		notify.DataTime:     it.StartTime,
		notify.DataCategory: it.Category,
	})
}
