package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Consumer drains the order and payment queues and appends one line per
// event to <LogDir>/orders.log.
type Consumer struct {
	URL    string
	LogDir string

	mu sync.Mutex // serialises writes to the log file
}

func NewConsumer(url, logDir string) *Consumer {
	return &Consumer{URL: url, LogDir: logDir}
}

// Run dials the broker and consumes until ctx is cancelled, reconnecting
// with exponential backoff (capped at 30s) whenever the connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	log := logrus.WithField("component", "event-consumer")
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.WithError(err).Warnf("dial failed, retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).Warn("consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logrus.WithError(err).Warn("event-consumer: set QoS failed")
	}

	orders, err := declareAndConsume(ch, OrderPlacedQueue)
	if err != nil {
		return err
	}
	payments, err := declareAndConsume(ch, PaymentMadeQueue)
	if err != nil {
		return err
	}

	for {
		var (
			d     amqp.Delivery
			ok    bool
			queue string
		)
		select {
		case <-ctx.Done():
			return nil
		case d, ok = <-orders:
			queue = OrderPlacedQueue
		case d, ok = <-payments:
			queue = PaymentMadeQueue
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := c.Handle(queue, d.Body); err != nil {
			logrus.WithError(err).WithField("queue", queue).Error("event-consumer: handle message failed")
			_ = d.Nack(false, false) // drop poison messages instead of redelivering them forever
			continue
		}
		_ = d.Ack(false)
	}
}

func declareAndConsume(ch *amqp.Channel, name string) (<-chan amqp.Delivery, error) {
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("queue declare %s: %w", name, err)
	}
	msgs, err := ch.Consume(name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("queue consume %s: %w", name, err)
	}
	return msgs, nil
}

// Handle decodes one message from queue and appends its log line.
func (c *Consumer) Handle(queue string, body []byte) error {
	line, err := FormatEvent(queue, body)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.LogDir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.LogDir, "orders.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatEvent renders a message as a single human readable log line.
func FormatEvent(queue string, body []byte) (string, error) {
	switch queue {
	case OrderPlacedQueue:
		var ev OrderPlacedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal %s: %w", queue, err)
		}
		return fmt.Sprintf("[%s] Order placed | order_id=%s | buyer_id=%s | seller_id=%s | products=[%s]\n",
			ev.PlacedAt, ev.OrderID, ev.BuyerID, ev.SellerID, strings.Join(ev.ProductIDs, ",")), nil
	case PaymentMadeQueue:
		var ev PaymentMadeEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal %s: %w", queue, err)
		}
		return fmt.Sprintf("[%s] Payment made | payment_id=%s | order_id=%s | amount=%.2f | method=%q\n",
			ev.PaidAt, ev.PaymentID, ev.OrderID, ev.Amount, ev.Method), nil
	}
	return "", fmt.Errorf("unknown queue %q", queue)
}
