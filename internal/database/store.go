package database

import (
	"context"
	"errors"
	"fmt"

	"food-delivery/internal/logger"
	"food-delivery/internal/models"
	"food-delivery/internal/services/order"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Store implements order.Store on PostgreSQL
type Store struct {
	db *DB
}

// NewStore creates a store over an open pool
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

var _ order.Store = (*Store)(nil)

// Migrate applies the embedded schema and seed files
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.RunMigrations(ctx, Migrations())
}

// Close closes the underlying pool
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// ListRestaurants returns every restaurant
func (s *Store) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	rows, err := s.db.Query(ctx, ListRestaurantsSQL)
	if err != nil {
		return nil, fmt.Errorf("query restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []models.Restaurant
	for rows.Next() {
		var r models.Restaurant
		if err := rows.Scan(&r.ID, &r.Name, &r.Cuisine, &r.Address, &r.Phone, &r.Rating); err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		restaurants = append(restaurants, r)
	}
	return restaurants, rows.Err()
}

// ListMenu returns the menu items of one restaurant
func (s *Store) ListMenu(ctx context.Context, restaurantID int64) ([]models.MenuItem, error) {
	rows, err := s.db.Query(ctx, ListMenuSQL, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("query menu: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var m models.MenuItem
		if err := rows.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Category, &m.Price, &m.IsAvailable); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// UpsertCustomer returns the existing customer with c.Email or inserts c.
// A concurrent insert of the same email loses the conflict and falls back to the lookup.
func (s *Store) UpsertCustomer(ctx context.Context, c models.Customer) (int64, bool, error) {
	id, err := s.customerIDByEmail(ctx, c.Email)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("look up customer: %w", err)
	}

	err = s.db.QueryRow(ctx, InsertCustomerSQL, c.Name, c.Email, c.Phone, c.Address).Scan(&id)
	switch {
	case err == nil:
		return id, true, nil
	case errors.Is(err, pgx.ErrNoRows):
		// ON CONFLICT DO NOTHING returns no row
		id, err = s.customerIDByEmail(ctx, c.Email)
		if err != nil {
			return 0, false, fmt.Errorf("look up conflicting customer: %w", err)
		}
		return id, false, nil
	default:
		return 0, false, fmt.Errorf("insert customer: %w", err)
	}
}

func (s *Store) customerIDByEmail(ctx context.Context, email string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, GetCustomerIDByEmailSQL, email).Scan(&id)
	return id, err
}

// InTx runs fn in a READ COMMITTED transaction
func (s *Store) InTx(ctx context.Context, fn func(tx order.Tx) error) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	if err := fn(&pgTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.db.logger.Error("db_rollback_failed", "Failed to roll back transaction",
				logger.RequestIDFromContext(ctx), rbErr, nil)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListOrders returns orders joined with customer and restaurant names, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.OrderSummary, error) {
	rows, err := s.db.Query(ctx, ListOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.OrderSummary
	for rows.Next() {
		var o models.OrderSummary
		if err := rows.Scan(&o.OrderID, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.CustomerName, &o.RestaurantName); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Ping checks that the database answers
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) ItemPrice(ctx context.Context, itemID int64) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := t.tx.QueryRow(ctx, GetItemPriceSQL, itemID).Scan(&price)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, order.ErrItemNotFound
	}
	return price, err
}

func (t *pgTx) InsertOrder(ctx context.Context, o *models.Order) error {
	return t.tx.QueryRow(ctx, InsertOrderSQL, o.CustomerID, o.RestaurantID, o.TotalAmount, o.Status).
		Scan(&o.ID, &o.CreatedAt)
}

func (t *pgTx) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	return t.tx.QueryRow(ctx, InsertOrderItemSQL, item.OrderID, item.ItemID, item.Quantity, item.PriceEach).
		Scan(&item.ID)
}
