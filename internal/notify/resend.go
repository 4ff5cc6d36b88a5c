package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendSender delivers email via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender builds a sender with the given API key and default
// from address.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

// Send delivers one email and returns the provider's message ID.
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{req.To},
		Subject: req.Subject,
		Html:    req.HTML,
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}
	return SendResult{MessageID: sent.Id, SentAt: time.Now().UTC()}, nil
}

// NoopSender logs sends without delivering anything. It is used in dev
// and tests, and whenever no Resend API key is configured.
type NoopSender struct{}

// NewNoopSender returns a NoopSender.
func NewNoopSender() *NoopSender { return &NoopSender{} }

// Send logs the email and reports success.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	log.Printf("noop-sender: to=%s subject=%q", req.To, req.Subject)
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now().UTC(),
	}, nil
}
