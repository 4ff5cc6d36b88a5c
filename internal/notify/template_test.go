package notify

import (
	"strings"
	"testing"
)

func TestRenderKnownKinds(t *testing.T) {
	data := map[string]string{
		DataName:      "Ana",
		DataDate:      "2026-09-10",
		DataTime:      "18:00",
		DataCategory:  "HIIT",
		DataGroupSize: "2",
		DataSessions:  "8",
		DataExpiry:    "2026-12-09",
	}
	kinds := []Kind{
		KindBookingConfirmed,
		KindBookingReceived,
		KindBookingCancelled,
		KindSessionCancelled,
		KindSessionReminder,
		KindPackageGranted,
	}
	for _, k := range kinds {
		subject, html := Render(k, data)
		if subject == "" {
			t.Errorf("%s: empty subject", k)
		}
		if html == "" {
			t.Errorf("%s: empty body", k)
		}
		if k != KindBookingReceived && !strings.Contains(html, "Ana") {
			t.Errorf("%s: body does not address the client: %q", k, html)
		}
	}
}

func TestRenderReminderMentionsTime(t *testing.T) {
	_, html := Render(KindSessionReminder, map[string]string{
		DataName:     "Marko",
		DataTime:     "07:30",
		DataCategory: "STRENGTH",
	})
	if !strings.Contains(html, "07:30") {
		t.Fatalf("reminder body missing start time: %q", html)
	}
}

func TestRenderUnknownKindFallsBack(t *testing.T) {
	subject, html := Render(Kind("no.such.kind"), nil)
	if subject == "" || html == "" {
		t.Fatal("fallback template must still render")
	}
}
