// internal/queue/consumer.go
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var errDeliveriesClosed = errors.New("deliveries channel closed")

const (
	prefetch   = 20
	maxBackoff = 30 * time.Second
)

// EmailHandler sends one job. Returning an error rejects the delivery
// without requeueing.
type EmailHandler func(ctx context.Context, job EmailJob) error

type Consumer struct {
	url     string
	handler EmailHandler
	logger  *zap.Logger
}

func NewConsumer(url string, handler EmailHandler, logger *zap.Logger) *Consumer {
	return &Consumer{url: url, handler: handler, logger: logger}
}

// Run consumes until ctx is cancelled, redialing with exponential backoff
// whenever the connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return nil
		}

		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("email consumer: failed to dial broker",
				zap.Error(err),
				zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if err == nil {
			return nil
		}

		c.logger.Warn("email consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

// consumeLoop returns nil only when ctx is done.
func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetch, 0, false); err != nil {
		c.logger.Warn("email consumer: set QoS failed", zap.Error(err))
	}
	if err := declare(ch); err != nil {
		return err
	}

	msgs, err := ch.Consume(EmailQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	c.logger.Info("email consumer started", zap.String("queue", EmailQueueName))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errDeliveriesClosed
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	if err := c.process(ctx, d.Body); err != nil {
		c.logger.Error("email consumer: handle message failed", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) process(ctx context.Context, body []byte) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if job.To == "" {
		return fmt.Errorf("email job for user %d has no recipient", job.UserID)
	}
	return c.handler(ctx, job)
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
