package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"food-delivery/internal/logger"

	"github.com/rabbitmq/amqp091-go"
)

const handlerTimeout = 30 * time.Second

// ErrMalformedMessage marks a body that cannot be decoded. Such deliveries are dropped.
var ErrMalformedMessage = errors.New("malformed message")

// MessageHandler processes one delivery body. The context carries the
// publisher's request id.
type MessageHandler func(ctx context.Context, body []byte) error

// Consumer reads one queue with manual acknowledgements
type Consumer struct {
	conn     *Connection
	logger   *logger.Logger
	queue    string
	tag      string
	prefetch int
}

// NewConsumer creates a consumer of queue registered under tag
func NewConsumer(conn *Connection, log *logger.Logger, queue, tag string, prefetch int) *Consumer {
	return &Consumer{
		conn:     conn,
		logger:   log,
		queue:    queue,
		tag:      tag,
		prefetch: prefetch,
	}
}

// StartConsuming hands every delivery to handler until ctx is done. A closed
// delivery channel triggers a reconnect and a fresh subscription.
func (c *Consumer) StartConsuming(ctx context.Context, handler MessageHandler) error {
	for {
		deliveries, err := c.subscribe(ctx)
		if err != nil {
			return err
		}

		if err := c.drain(ctx, deliveries, handler); err != nil {
			return err
		}

		c.logger.Warn("consumer_channel_closed", "Delivery channel closed, resubscribing", "", map[string]interface{}{
			"queue": c.queue,
		})
		if err := c.conn.Reconnect(ctx); err != nil {
			return fmt.Errorf("failed to reconnect after channel closed: %w", err)
		}
	}
}

func (c *Consumer) subscribe(ctx context.Context) (<-chan amqp091.Delivery, error) {
	if c.conn.IsClosed() {
		if err := c.conn.Reconnect(ctx); err != nil {
			return nil, fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	ch := c.conn.Channel()
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := ch.Consume(c.queue, c.tag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer on %s: %w", c.queue, err)
	}

	c.logger.Info("consumer_started", fmt.Sprintf("Consuming from queue %s", c.queue), "", map[string]interface{}{
		"queue":    c.queue,
		"consumer": c.tag,
		"prefetch": c.prefetch,
	})
	return deliveries, nil
}

// drain returns nil when deliveries is closed and ctx.Err() when ctx is done
func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp091.Delivery, handler MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer_stopped", "Consumer stopped by context", "", nil)
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, d, handler)
		}
	}
}

// handle runs handler for d and settles it: ack on success, drop a malformed
// body, requeue anything else.
func (c *Consumer) handle(ctx context.Context, d amqp091.Delivery, handler MessageHandler) {
	requestID := d.CorrelationId
	fields := map[string]interface{}{
		"queue":        c.queue,
		"routing_key":  d.RoutingKey,
		"delivery_tag": d.DeliveryTag,
	}

	hctx, cancel := context.WithTimeout(logger.WithRequestID(ctx, requestID), handlerTimeout)
	defer cancel()

	start := time.Now()
	err := handler(hctx, d.Body)
	fields["duration_ms"] = time.Since(start).Milliseconds()

	if err == nil {
		c.logger.Debug("message_processed", "Processed message", requestID, fields)
		if ackErr := d.Ack(false); ackErr != nil {
			c.logger.Error("message_ack_failed", "Failed to ack message", requestID, ackErr, nil)
		}
		return
	}

	requeue := !errors.Is(err, ErrMalformedMessage)
	fields["requeue"] = requeue
	c.logger.Error("message_processing_failed", "Failed to process message", requestID, err, fields)
	if nackErr := d.Nack(false, requeue); nackErr != nil {
		c.logger.Error("message_nack_failed", "Failed to nack message", requestID, nackErr, nil)
	}
}

// ParseMessage decodes a JSON body into v, wrapping failures in ErrMalformedMessage
func ParseMessage(body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return nil
}

// Close cancels the subscription and closes the connection
func (c *Consumer) Close() error {
	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}
	if err := c.conn.Channel().Cancel(c.tag, false); err != nil {
		c.logger.Error("consumer_cancel_failed", "Failed to cancel consumer", "", err, nil)
	}
	return c.conn.Close()
}
