package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"food-delivery/internal/config"
	"food-delivery/internal/logger"

	"github.com/rabbitmq/amqp091-go"
)

// Topology names shared by the publisher and the notification subscriber
const (
	OrderNotificationsQueue = "order_notifications"
	OrderPlacedBindingKey   = "orders.placed.*"
)

const connectAttempts = 5

// Connection wraps RabbitMQ connection with reconnection logic.
// conn and channel are swapped under mu when reconnecting.
type Connection struct {
	mu       sync.RWMutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	logger   *logger.Logger
	url      string
	exchange string
}

// New connects to RabbitMQ and declares the order topology
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Connection, error) {
	conn := &Connection{
		logger:   log,
		url:      cfg.RabbitMQURL(),
		exchange: cfg.RabbitMQ.Exchange,
	}

	if err := conn.connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}

	return conn, nil
}

// Exchange returns the topic exchange order events go to
func (c *Connection) Exchange() string {
	return c.exchange
}

// connect dials RabbitMQ and declares the topology, retrying with a growing
// delay. It gives up early when ctx is done.
func (c *Connection) connect(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("connect to RabbitMQ: %w", ctxErr)
		}
		if err = c.dial(); err == nil {
			return nil
		}
		if attempt == connectAttempts {
			break
		}

		wait := time.Duration(attempt) * 2 * time.Second
		c.logger.Error("rabbitmq_connection_failed",
			fmt.Sprintf("Failed to connect to RabbitMQ, retrying in %v", wait),
			"startup", err, map[string]interface{}{"attempt": attempt})

		select {
		case <-ctx.Done():
			return fmt.Errorf("connect to RabbitMQ: %w", ctx.Err())
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", connectAttempts, err)
}

// dial opens one connection and channel and installs them when the topology is in place
func (c *Connection) dial() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if err := setupTopology(ch, c.exchange); err != nil {
		c.logger.Error("rabbitmq_setup_failed", "Failed to set up topology", "startup", err, nil)
		ch.Close()
		conn.Close()
		return err
	}

	c.mu.Lock()
	c.conn, c.channel = conn, ch
	c.mu.Unlock()
	return nil
}

// setupTopology declares the order exchange and the notification queue
func setupTopology(ch *amqp091.Channel, exchange string) error {
	err := ch.ExchangeDeclare(
		exchange,   // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", exchange, err)
	}

	_, err = ch.QueueDeclare(
		OrderNotificationsQueue, // name
		true,                    // durable
		false,                   // delete when unused
		false,                   // exclusive
		false,                   // no-wait
		amqp091.Table{
			"x-message-ttl": 300000, // 5 minutes TTL
		},
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", OrderNotificationsQueue, err)
	}

	err = ch.QueueBind(
		OrderNotificationsQueue, // queue name
		OrderPlacedBindingKey,   // routing key
		exchange,                // exchange
		false,                   // no-wait
		nil,                     // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue %s with routing key %s: %w", OrderNotificationsQueue, OrderPlacedBindingKey, err)
	}

	return nil
}

// Channel returns the current channel
func (c *Connection) Channel() *amqp091.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// Close closes the connection
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// IsClosed checks if the connection is closed
func (c *Connection) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn == nil || c.conn.IsClosed()
}

// Reconnect drops the current connection and dials again until it succeeds,
// the attempts run out or ctx is done.
func (c *Connection) Reconnect(ctx context.Context) error {
	c.Close()
	return c.connect(ctx)
}
