// Package gormstore is the MySQL backend of the order service, built on gorm.
package gormstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"food-delivery/internal/config"
	"food-delivery/internal/logger"
	"food-delivery/internal/models"
	"food-delivery/internal/services/order"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Store implements order.Store on MySQL
type Store struct {
	db     *gorm.DB
	logger *logger.Logger
}

var _ order.Store = (*Store)(nil)

// Open connects to MySQL using the database section of cfg
func Open(cfg *config.Config, log *logger.Logger) (*Store, error) {
	gdb, err := gorm.Open(mysql.Open(cfg.MySQLDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}

	maxConns := cfg.Database.MaxConns
	if maxConns <= 0 {
		maxConns = 25
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(min(5, maxConns))

	log.Info("db_connected", "Connected to MySQL", "startup", map[string]interface{}{
		"host":      cfg.Database.Host,
		"database":  cfg.Database.Database,
		"max_conns": maxConns,
	})

	return &Store{db: gdb, logger: log}, nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates or updates the schema and inserts the sample catalog
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(
		&restaurantRow{},
		&menuItemRow{},
		&customerRow{},
		&orderRow{},
		&orderItemRow{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	restaurants, items := seedRestaurants(), seedMenuItems()
	if err := ignoreDuplicates(s.db.WithContext(ctx)).Create(&restaurants).Error; err != nil {
		return fmt.Errorf("seed restaurants: %w", err)
	}
	if err := ignoreDuplicates(s.db.WithContext(ctx)).Create(&items).Error; err != nil {
		return fmt.Errorf("seed menu items: %w", err)
	}

	s.logger.Info("migration_applied", "MySQL schema is up to date", "startup", nil)
	return nil
}

// ListRestaurants returns every restaurant
func (s *Store) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	var rows []restaurantRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query restaurants: %w", err)
	}

	restaurants := make([]models.Restaurant, 0, len(rows))
	for _, r := range rows {
		restaurants = append(restaurants, r.model())
	}
	return restaurants, nil
}

// ListMenu returns the menu items of one restaurant
func (s *Store) ListMenu(ctx context.Context, restaurantID int64) ([]models.MenuItem, error) {
	var rows []menuItemRow
	if err := menuQuery(s.db.WithContext(ctx), restaurantID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query menu: %w", err)
	}

	items := make([]models.MenuItem, 0, len(rows))
	for _, m := range rows {
		items = append(items, m.model())
	}
	return items, nil
}

// UpsertCustomer returns the existing customer with c.Email or inserts c.
// The insert ignores a duplicate email, so a lost race resolves through the lookup.
func (s *Store) UpsertCustomer(ctx context.Context, c models.Customer) (int64, bool, error) {
	id, err := s.customerIDByEmail(ctx, c.Email)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, fmt.Errorf("look up customer: %w", err)
	}

	row := newCustomerRow(c)
	res := ignoreDuplicates(s.db.WithContext(ctx)).Create(&row)
	if res.Error != nil {
		return 0, false, fmt.Errorf("insert customer: %w", res.Error)
	}
	if res.RowsAffected == 1 && row.CustomerID != 0 {
		return row.CustomerID, true, nil
	}

	id, err = s.customerIDByEmail(ctx, c.Email)
	if err != nil {
		return 0, false, fmt.Errorf("look up conflicting customer: %w", err)
	}
	return id, false, nil
}

func (s *Store) customerIDByEmail(ctx context.Context, email string) (int64, error) {
	var row customerRow
	err := customerByEmailQuery(s.db.WithContext(ctx), email).Take(&row).Error
	return row.CustomerID, err
}

// InTx runs fn in a READ COMMITTED transaction
func (s *Store) InTx(ctx context.Context, fn func(tx order.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// ListOrders returns orders joined with customer and restaurant names, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.OrderSummary, error) {
	var rows []orderSummaryRow
	err := ordersQuery(s.db.WithContext(ctx)).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	orders := make([]models.OrderSummary, 0, len(rows))
	for _, r := range rows {
		orders = append(orders, r.model())
	}
	return orders, nil
}

// ignoreDuplicates turns an insert into MySQL's ON DUPLICATE KEY UPDATE pk=pk
func ignoreDuplicates(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.OnConflict{DoNothing: true})
}

func menuQuery(db *gorm.DB, restaurantID int64) *gorm.DB {
	return db.Where("restaurant_id = ?", restaurantID)
}

func customerByEmailQuery(db *gorm.DB, email string) *gorm.DB {
	return db.Select("customer_id").Where("email = ?", email)
}

func itemPriceQuery(db *gorm.DB, itemID int64) *gorm.DB {
	return db.Select("price").Where("item_id = ?", itemID)
}

// ordersQuery joins orders with customer and restaurant names, newest first
func ordersQuery(db *gorm.DB) *gorm.DB {
	return db.
		Table("orders AS o").
		Select("o.order_id, o.total_amount, o.status, o.created_at, c.name AS customer_name, r.name AS restaurant_name").
		Joins("JOIN customers c ON o.customer_id = c.customer_id").
		Joins("JOIN restaurants r ON o.restaurant_id = r.restaurant_id").
		Order("o.order_id DESC")
}

// Ping checks that the database answers
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) ItemPrice(ctx context.Context, itemID int64) (decimal.Decimal, error) {
	var row menuItemRow
	err := itemPriceQuery(t.db.WithContext(ctx), itemID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, order.ErrItemNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return row.Price, nil
}

func (t *gormTx) InsertOrder(ctx context.Context, o *models.Order) error {
	row := newOrderRow(o)
	if err := t.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	o.ID = row.OrderID
	o.CreatedAt = row.CreatedAt
	return nil
}

func (t *gormTx) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	row := newOrderItemRow(item)
	if err := t.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	item.ID = row.OrderItemID
	return nil
}
