package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderPlacedEvent is published after an order commits
type OrderPlacedEvent struct {
	OrderID      int64           `json:"order_id"`
	CustomerID   int64           `json:"customer_id"`
	RestaurantID int64           `json:"restaurant_id"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       OrderStatus     `json:"status"`
	ItemCount    int             `json:"item_count"`
	PlacedAt     time.Time       `json:"placed_at"`
}

// NewOrderPlacedEvent builds the event for a stored order and its lines
func NewOrderPlacedEvent(order *Order, lines []PricedLine) *OrderPlacedEvent {
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}

	placedAt := order.CreatedAt
	if placedAt.IsZero() {
		placedAt = time.Now().UTC()
	}

	return &OrderPlacedEvent{
		OrderID:      order.ID,
		CustomerID:   order.CustomerID,
		RestaurantID: order.RestaurantID,
		TotalAmount:  order.TotalAmount,
		Status:       order.Status,
		ItemCount:    count,
		PlacedAt:     placedAt,
	}
}

// RoutingKey returns the topic routing key for the event
func (e *OrderPlacedEvent) RoutingKey() string {
	return fmt.Sprintf("orders.placed.%d", e.RestaurantID)
}
