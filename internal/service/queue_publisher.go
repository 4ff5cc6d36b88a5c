// Package queue_publisher publishes notification events to RabbitMQ.
// Publishing is fire-and-forget from the caller's perspective: errors are
// logged and returned so callers can ignore them without interrupting the
// request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ivancurkovic15/personal-trainer-booking/internal/notify"
	q "github.com/ivancurkovic15/personal-trainer-booking/internal/queue"
)

// Publisher implements notify.Notifier by turning each notification into
// a persistent NotificationEvent on the notify.email queue.
type Publisher struct{}

// NewPublisher returns a queue-backed Notifier.
func NewPublisher() *Publisher { return &Publisher{} }

// Notify builds and publishes one notification event. A broker failure is
// logged and returned; it never panics.
func (p *Publisher) Notify(ctx context.Context, recipient string, kind notify.Kind, data map[string]string) error {
	ev := q.NotificationEvent{
		ID:         uuid.NewString(),
		Recipient:  recipient,
		Kind:       string(kind),
		Data:       data,
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return publish(ctx, ev)
}

func publish(ctx context.Context, ev q.NotificationEvent) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(q.NotificationQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.NotificationQueueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
