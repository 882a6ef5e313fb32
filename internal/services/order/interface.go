package order

import (
	"context"
	"errors"

	"food-delivery/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrItemNotFound is returned by Tx.ItemPrice when no menu item has the id
	ErrItemNotFound = errors.New("menu item not found")
	// ErrInvalidItem is the client-input error for an unresolvable item_id.
	// Its text is the exact detail clients receive.
	ErrInvalidItem = errors.New("Invalid item ID")
)

// Store is the relational store behind the order service
type Store interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	ListMenu(ctx context.Context, restaurantID int64) ([]models.MenuItem, error)
	// UpsertCustomer returns the id of the customer with c.Email, inserting c
	// first when no such customer exists.
	UpsertCustomer(ctx context.Context, c models.Customer) (id int64, created bool, err error)
	// InTx runs fn in one transaction. It commits when fn returns nil and
	// rolls back otherwise.
	InTx(ctx context.Context, fn func(tx Tx) error) error
	ListOrders(ctx context.Context) ([]models.OrderSummary, error)
	Ping(ctx context.Context) error
}

// Tx is the set of statements order placement runs inside a transaction
type Tx interface {
	ItemPrice(ctx context.Context, itemID int64) (decimal.Decimal, error)
	InsertOrder(ctx context.Context, o *models.Order) error
	InsertOrderItem(ctx context.Context, item *models.OrderItem) error
}

// EventPublisher announces committed orders
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
}
