package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

// StatusPending is the status of every newly placed order
const StatusPending OrderStatus = "Pending"

// Order placement outcome
const OrderPlaced = "success"

// LinePriceMode decides what order_items.price_each stores
type LinePriceMode string

const (
	// LinePriceUnit stores the menu price of the item itself
	LinePriceUnit LinePriceMode = "unit"
	// LinePriceOrderTotal stores the whole order total on every line (legacy behaviour)
	LinePriceOrderTotal LinePriceMode = "order_total"
)

// ParseLinePriceMode validates a configured line price mode
func ParseLinePriceMode(s string) (LinePriceMode, error) {
	switch LinePriceMode(s) {
	case LinePriceUnit, LinePriceOrderTotal:
		return LinePriceMode(s), nil
	default:
		return "", fmt.Errorf("line price mode must be one of: unit, order_total; got %q", s)
	}
}

// PriceEach returns the value stored in price_each for line
func (m LinePriceMode) PriceEach(line PricedLine, orderTotal decimal.Decimal) decimal.Decimal {
	if m == LinePriceOrderTotal {
		return orderTotal
	}
	return line.UnitPrice
}

// LineItem is one {item_id, quantity} entry of a placement request
type LineItem struct {
	ItemID   int64 `json:"item_id"`
	Quantity *int  `json:"quantity,omitempty"`
}

// EffectiveQuantity returns the quantity to charge; absent means 1.
func (li LineItem) EffectiveQuantity() int {
	if li.Quantity == nil {
		return 1
	}
	return *li.Quantity
}

// PlaceOrderRequest is the body of POST /orders/add
type PlaceOrderRequest struct {
	CustomerID   int64      `json:"customer_id"`
	RestaurantID int64      `json:"restaurant_id"`
	Items        []LineItem `json:"items"`
}

// PlaceOrderResponse is returned after a successful placement
type PlaceOrderResponse struct {
	Status  string `json:"status"`
	OrderID int64  `json:"order_id"`
}

// Validate checks the required fields. Item ids are resolved later against the menu.
func (req *PlaceOrderRequest) Validate() error {
	if req.CustomerID == 0 {
		return ValidationError{Field: "customer_id", Message: "customer_id is required"}
	}
	if req.RestaurantID == 0 {
		return ValidationError{Field: "restaurant_id", Message: "restaurant_id is required"}
	}
	if len(req.Items) == 0 {
		return ValidationError{Field: "items", Message: "items cannot be empty"}
	}

	for i, item := range req.Items {
		if item.ItemID == 0 {
			return ValidationError{
				Field:   fmt.Sprintf("items[%d].item_id", i),
				Message: "item_id is required",
			}
		}
		if item.Quantity != nil && *item.Quantity <= 0 {
			return ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "quantity must be positive",
			}
		}
	}

	return nil
}

// PricedLine is a line item resolved against the current menu price
type PricedLine struct {
	ItemID    int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns unit price times quantity
func (l PricedLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderTotal sums the subtotals of all lines
func OrderTotal(lines []PricedLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Order is a row of the orders table
type Order struct {
	ID           int64           `json:"order_id" db:"order_id"`
	CustomerID   int64           `json:"customer_id" db:"customer_id"`
	RestaurantID int64           `json:"restaurant_id" db:"restaurant_id"`
	TotalAmount  decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status       OrderStatus     `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// OrderItem is a row of the order_items table
type OrderItem struct {
	ID        int64           `json:"order_item_id" db:"order_item_id"`
	OrderID   int64           `json:"order_id" db:"order_id"`
	ItemID    int64           `json:"item_id" db:"item_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	PriceEach decimal.Decimal `json:"price_each" db:"price_each"`
}

// OrderSummary is one row of GET /orders: an order joined with its customer and restaurant names
type OrderSummary struct {
	OrderID        int64           `json:"order_id" db:"order_id"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status         OrderStatus     `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	CustomerName   string          `json:"customer_name" db:"customer_name"`
	RestaurantName string          `json:"restaurant_name" db:"restaurant_name"`
}
