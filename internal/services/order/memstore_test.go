package order

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"food-delivery/internal/logger"
	"food-delivery/internal/models"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory Store. InTx restores the order tables when fn fails.
type memStore struct {
	mu sync.Mutex

	restaurants []models.Restaurant
	menu        []models.MenuItem
	customers   []models.Customer
	orders      []models.Order
	orderItems  []models.OrderItem

	nextCustomerID  int64
	nextOrderID     int64
	nextOrderItemID int64

	queryErr       error
	failItemInsert bool
}

func newMemStore() *memStore {
	return &memStore{nextCustomerID: 1, nextOrderID: 1, nextOrderItemID: 1}
}

func (s *memStore) addRestaurant(id int64, name string) {
	s.restaurants = append(s.restaurants, models.Restaurant{ID: id, Name: name})
}

func (s *memStore) addMenuItem(id, restaurantID int64, name, price string) {
	s.menu = append(s.menu, models.MenuItem{
		ID:           id,
		RestaurantID: restaurantID,
		Name:         name,
		Price:        decimal.RequireFromString(price),
		IsAvailable:  true,
	})
}

func (s *memStore) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return append([]models.Restaurant(nil), s.restaurants...), nil
}

func (s *memStore) ListMenu(ctx context.Context, restaurantID int64) ([]models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	var items []models.MenuItem
	for _, item := range s.menu {
		if item.RestaurantID == restaurantID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *memStore) UpsertCustomer(ctx context.Context, c models.Customer) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return 0, false, s.queryErr
	}
	for _, existing := range s.customers {
		if existing.Email == c.Email {
			return existing.ID, false, nil
		}
	}
	c.ID = s.nextCustomerID
	c.CreatedAt = time.Now().UTC()
	s.nextCustomerID++
	s.customers = append(s.customers, c)
	return c.ID, true, nil
}

func (s *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return s.queryErr
	}

	orders, items := len(s.orders), len(s.orderItems)
	nextOrder, nextItem := s.nextOrderID, s.nextOrderItemID

	if err := fn(&memTx{s: s}); err != nil {
		s.orders = s.orders[:orders]
		s.orderItems = s.orderItems[:items]
		s.nextOrderID, s.nextOrderItemID = nextOrder, nextItem
		return err
	}
	return nil
}

func (s *memStore) ListOrders(ctx context.Context) ([]models.OrderSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return nil, s.queryErr
	}

	customers := make(map[int64]string)
	for _, c := range s.customers {
		customers[c.ID] = c.Name
	}
	restaurants := make(map[int64]string)
	for _, r := range s.restaurants {
		restaurants[r.ID] = r.Name
	}

	var out []models.OrderSummary
	for _, o := range s.orders {
		customer, ok := customers[o.CustomerID]
		if !ok {
			continue
		}
		restaurant, ok := restaurants[o.RestaurantID]
		if !ok {
			continue
		}
		out = append(out, models.OrderSummary{
			OrderID:        o.ID,
			TotalAmount:    o.TotalAmount,
			Status:         o.Status,
			CreatedAt:      o.CreatedAt,
			CustomerName:   customer,
			RestaurantName: restaurant,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID > out[j].OrderID })
	return out, nil
}

func (s *memStore) Ping(ctx context.Context) error {
	return s.queryErr
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) orderItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orderItems)
}

type memTx struct {
	s *memStore
}

func (tx *memTx) ItemPrice(ctx context.Context, itemID int64) (decimal.Decimal, error) {
	for _, item := range tx.s.menu {
		if item.ID == itemID {
			return item.Price, nil
		}
	}
	return decimal.Zero, ErrItemNotFound
}

func (tx *memTx) InsertOrder(ctx context.Context, o *models.Order) error {
	o.ID = tx.s.nextOrderID
	o.CreatedAt = time.Now().UTC()
	tx.s.nextOrderID++
	tx.s.orders = append(tx.s.orders, *o)
	return nil
}

func (tx *memTx) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	if tx.s.failItemInsert {
		return errors.New("order_items: connection reset")
	}
	item.ID = tx.s.nextOrderItemID
	tx.s.nextOrderItemID++
	tx.s.orderItems = append(tx.s.orderItems, *item)
	return nil
}

// recordingPublisher remembers published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.OrderPlacedEvent
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, "order-service", slog.LevelDebug)
}

// seededStore holds two restaurants with two menu items each
func seededStore() *memStore {
	s := newMemStore()
	s.addRestaurant(1, "Pizza Place")
	s.addRestaurant(2, "Noodle Bar")
	s.addMenuItem(1, 1, "Margherita", "5.00")
	s.addMenuItem(2, 1, "Pepperoni", "9.99")
	s.addMenuItem(3, 2, "Ramen", "4.50")
	s.addMenuItem(4, 2, "Gyoza", "3.25")
	return s
}

func qty(n int) *int { return &n }
