package notification

import (
	"context"
	"errors"
	"fmt"
	"io"

	"food-delivery/internal/logger"
	"food-delivery/internal/messaging"
	"food-delivery/internal/models"
)

// Subscriber prints a line for every order-placed event
type Subscriber struct {
	consumer *messaging.Consumer
	logger   *logger.Logger
	out      io.Writer
}

// NewSubscriber creates a new notification subscriber writing to out
func NewSubscriber(consumer *messaging.Consumer, log *logger.Logger, out io.Writer) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
		out:      out,
	}
}

// Start consumes events until ctx is cancelled
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()

	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.handleNotification)
	if errors.Is(err, context.Canceled) {
		return s.gracefulShutdown(requestID)
	}
	return err
}

func (s *Subscriber) handleNotification(ctx context.Context, body []byte) error {
	requestID := logger.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = logger.GenerateRequestID()
	}

	var event models.OrderPlacedEvent
	if err := messaging.ParseMessage(body, &event); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse order placed event", requestID, err, nil)
		return fmt.Errorf("failed to parse notification: %w", err)
	}

	if _, err := fmt.Fprintln(s.out, formatNotification(&event)); err != nil {
		return fmt.Errorf("failed to print notification: %w", err)
	}

	s.logger.Info("notification_displayed", "Notification displayed to user", requestID, map[string]interface{}{
		"order_id":      event.OrderID,
		"restaurant_id": event.RestaurantID,
		"total_amount":  event.TotalAmount.String(),
	})
	return nil
}

// formatNotification creates a human-readable notification message
func formatNotification(event *models.OrderPlacedEvent) string {
	items := "items"
	if event.ItemCount == 1 {
		items = "item"
	}

	return fmt.Sprintf(
		"📦 [%s] Order #%d placed by customer %d at restaurant %d: %d %s, total %s (%s)",
		event.PlacedAt.Format("2006-01-02 15:04:05"),
		event.OrderID,
		event.CustomerID,
		event.RestaurantID,
		event.ItemCount,
		items,
		event.TotalAmount.StringFixed(2),
		event.Status,
	)
}

func (s *Subscriber) gracefulShutdown(requestID string) error {
	s.logger.Info("graceful_shutdown", "Starting graceful shutdown", requestID, nil)

	if err := s.consumer.Close(); err != nil {
		s.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, err, nil)
	}

	s.logger.Info("graceful_shutdown", "Graceful shutdown completed", requestID, nil)
	return nil
}
