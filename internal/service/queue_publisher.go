// Package service publishes domain events to RabbitMQ.  Publishing is best
// effort: failures are logged and returned, and callers never fail a request
// because of them.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	q "github.com/iliyamo/marketplace-api/internal/queue"
)

// Publisher sends events to their durable queue.  A nil *Publisher is valid
// and drops every event, which is how publishing is disabled.
type Publisher struct {
	url string
	log *logrus.Entry
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url, log: logrus.WithField("component", "event-publisher")}
}

// PublishOrderPlaced publishes to the order.placed queue.
func (p *Publisher) PublishOrderPlaced(ctx context.Context, ev q.OrderPlacedEvent) error {
	return p.publish(ctx, q.OrderPlacedQueue, ev)
}

// PublishPaymentMade publishes to the payment.made queue.
func (p *Publisher) PublishPaymentMade(ctx context.Context, ev q.PaymentMadeEvent) error {
	return p.publish(ctx, q.PaymentMadeQueue, ev)
}

// publish dials a fresh connection per message.
func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", queue, err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.WithError(err).Warn("dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.WithError(err).Warn("channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.log.WithError(err).WithField("queue", queue).Warn("queue declare failed")
		return err
	}

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.log.WithError(err).WithField("queue", queue).Warn("publish failed")
		return err
	}
	return nil
}
