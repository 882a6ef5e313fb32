package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"food-delivery/internal/logger"
	"food-delivery/internal/models"

	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// ErrNotConnected is returned while the broker connection is down. A
// background reconnect is in progress when it is seen.
var ErrNotConnected = errors.New("not connected to RabbitMQ")

// Publisher sends order events to the orders exchange. Publishing never
// waits for a reconnect: a lost connection is re-dialled in the background.
type Publisher struct {
	conn   *Connection
	logger *logger.Logger

	mu           sync.Mutex
	reconnecting bool
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewPublisher creates a new message publisher
func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Publisher{
		conn:   conn,
		logger: log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// PublishOrderPlaced announces a committed order on the orders exchange
func (p *Publisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return p.publishMessage(ctx, p.conn.Exchange(), event.RoutingKey(), event)
}

func (p *Publisher) publishMessage(ctx context.Context, exchange, routingKey string, message interface{}) error {
	requestID := logger.RequestIDFromContext(ctx)

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if p.conn.IsClosed() {
		p.reconnectInBackground(requestID)
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.conn.Channel().PublishWithContext(ctx, exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:   "application/json",
		Body:          body,
		DeliveryMode:  amqp091.Persistent,
		Timestamp:     time.Now(),
		CorrelationId: requestID,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message to %s: %w", exchange, err)
	}

	p.logger.Debug("message_published",
		fmt.Sprintf("Published message to exchange %s", exchange),
		requestID, map[string]interface{}{
			"exchange":     exchange,
			"routing_key":  routingKey,
			"message_size": len(body),
		})

	return nil
}

// reconnectInBackground starts at most one reconnect. It is a no-op after Close.
func (p *Publisher) reconnectInBackground(requestID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.reconnecting || p.ctx.Err() != nil {
		return
	}
	p.reconnecting = true

	p.logger.Warn("rabbitmq_reconnecting", "Connection lost, reconnecting in the background", requestID, nil)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		err := p.conn.Reconnect(p.ctx)

		p.mu.Lock()
		p.reconnecting = false
		p.mu.Unlock()

		if err != nil {
			p.logger.Error("rabbitmq_reconnect_failed", "Failed to reconnect to RabbitMQ", requestID, err, nil)
			return
		}
		p.logger.Info("rabbitmq_reconnected", "Reconnected to RabbitMQ", requestID, nil)
	}()
}

// Close stops any reconnect in progress and closes the connection
func (p *Publisher) Close() error {
	p.mu.Lock()
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
	return p.conn.Close()
}

// NopPublisher drops every event. It stands in when RabbitMQ is disabled.
type NopPublisher struct{}

// PublishOrderPlaced does nothing
func (NopPublisher) PublishOrderPlaced(context.Context, *models.OrderPlacedEvent) error {
	return nil
}
