package notify

import (
	"context"
	"time"
)

// SendRequest is one email handed to an external provider.
type SendRequest struct {
	To      string
	Subject string
	HTML    string
}

// SendResult reports the provider's acceptance of a send.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers a single email through an external provider. The queue
// consumer is its only caller.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
