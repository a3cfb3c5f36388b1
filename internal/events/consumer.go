package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Aldiyar2201/Visitor_Manager/internal/realtime"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const maxDialDelay = 60 * time.Second

// DialWithRetry connects to RabbitMQ with exponential backoff, respecting
// context cancellation for graceful shutdown.
func DialWithRetry(ctx context.Context, url string, attempts int, baseDelay time.Duration) (*amqp.Connection, error) {
	var lastErr error

	for i := 1; i <= attempts; i++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			if i > 1 {
				logrus.WithField("attempt", i).Info("RabbitMQ connected")
			}
			return conn, nil
		}
		lastErr = err

		sleep := baseDelay << uint(i-1)
		if sleep > maxDialDelay {
			sleep = maxDialDelay
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"attempt": i,
			"sleep":   sleep.String(),
		}).Warn("RabbitMQ dial failed")

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("dial cancelled: %v", ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %v", attempts, lastErr)
}

// Consumer reads notification events off the exchange and feeds them into
// the realtime sync channel.
type Consumer struct {
	conn     *amqp.Connection
	exchange string
	queue    string
	channel  *realtime.Channel
}

func NewConsumer(conn *amqp.Connection, exchange, queue string, channel *realtime.Channel) *Consumer {
	return &Consumer{conn: conn, exchange: exchange, queue: queue, channel: channel}
}

// Run consumes until the context is cancelled or the connection dies.
func (c *Consumer) Run(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %v", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(c.exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %v", err)
	}
	q, err := ch.QueueDeclare(c.queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %v", err)
	}
	for _, key := range []string{"notification.*", "escalation.*"} {
		if err := ch.QueueBind(q.Name, key, c.exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind %s: %v", key, err)
		}
	}

	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %v", err)
	}

	logrus.WithField("queue", q.Name).Info("Event consumer started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var ev Event
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		logrus.WithError(err).Warn("Discarding malformed event")
		d.Nack(false, false) // do not requeue garbage
		return
	}

	c.channel.OnServerEvent(ctx, ev.Notification)
	d.Ack(false)
}
