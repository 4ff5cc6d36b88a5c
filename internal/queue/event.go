// Package queue defines message payloads exchanged over the message broker
// and the background consumer that delivers them as email.
package queue

// NotificationQueueName is the durable queue carrying outbound emails.
const NotificationQueueName = "notify.email"

// NotificationEvent is one outbound email, published by booking flows and
// the reminder scheduler and consumed by the email consumer. It carries
// the template kind and its context data instead of a rendered body so
// delivery concerns stay out of the request path.
type NotificationEvent struct {
	ID         string            `json:"id"` // UUID, for log correlation
	Recipient  string            `json:"recipient"`
	Kind       string            `json:"kind"`
	Data       map[string]string `json:"data"`
	EnqueuedAt string            `json:"enqueued_at"` // RFC3339 UTC
}
