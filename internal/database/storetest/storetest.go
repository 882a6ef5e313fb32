// Package storetest checks an order.Store against a live, migrated database.
// Store packages call Run from tests gated on a DSN environment variable.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"food-delivery/internal/models"
	"food-delivery/internal/services/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Run exercises s. The seed catalog must be loaded: restaurant 1 with item 1.
func Run(t *testing.T, s order.Store) {
	t.Run("MenuFiltersByRestaurant", func(t *testing.T) { menuFiltersByRestaurant(t, s) })
	t.Run("ConcurrentUpsertCustomer", func(t *testing.T) { concurrentUpsertCustomer(t, s) })
	t.Run("RollbackOnFailure", func(t *testing.T) { rollbackOnFailure(t, s) })
	t.Run("CommitAndList", func(t *testing.T) { commitAndList(t, s) })
	t.Run("UnknownItem", func(t *testing.T) { unknownItem(t, s) })
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newCustomer(t *testing.T, s order.Store) int64 {
	t.Helper()
	id, _, err := s.UpsertCustomer(testContext(t), models.Customer{
		Name:  "Store Test",
		Email: fmt.Sprintf("%s@example.test", uuid.NewString()),
	})
	if err != nil {
		t.Fatalf("UpsertCustomer() error = %v", err)
	}
	return id
}

func menuFiltersByRestaurant(t *testing.T, s order.Store) {
	items, err := s.ListMenu(testContext(t), 1)
	if err != nil {
		t.Fatalf("ListMenu(1) error = %v", err)
	}
	if len(items) == 0 {
		t.Fatal("ListMenu(1) is empty; is the seed loaded?")
	}
	for _, item := range items {
		if item.RestaurantID != 1 {
			t.Errorf("ListMenu(1) returned item %d of restaurant %d", item.ID, item.RestaurantID)
		}
	}
}

func concurrentUpsertCustomer(t *testing.T, s order.Store) {
	ctx := testContext(t)
	email := fmt.Sprintf("%s@example.test", uuid.NewString())

	const workers = 8
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		ids     = make([]int64, workers)
		created = make([]bool, workers)
		errs    = make([]error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			ids[i], created[i], errs[i] = s.UpsertCustomer(ctx, models.Customer{Name: "Race", Email: email})
		}(i)
	}
	close(start)
	wg.Wait()

	creations := 0
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: UpsertCustomer() error = %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("worker %d got id %d, worker 0 got %d", i, ids[i], ids[0])
		}
		if created[i] {
			creations++
		}
	}
	if creations != 1 {
		t.Errorf("%d workers report created, want exactly 1", creations)
	}

	id, created2, err := s.UpsertCustomer(ctx, models.Customer{Name: "Again", Email: email})
	if err != nil || created2 || id != ids[0] {
		t.Errorf("repeat UpsertCustomer() = %d, %v, %v; want %d, false, nil", id, created2, err, ids[0])
	}
}

func countOrders(t *testing.T, s order.Store) (int, map[int64]models.OrderSummary) {
	t.Helper()
	orders, err := s.ListOrders(testContext(t))
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	byID := make(map[int64]models.OrderSummary, len(orders))
	for _, o := range orders {
		byID[o.OrderID] = o
	}
	return len(orders), byID
}

func rollbackOnFailure(t *testing.T, s order.Store) {
	ctx := testContext(t)
	customerID := newCustomer(t, s)
	before, _ := countOrders(t, s)

	errAbort := errors.New("abort placement")
	var placed models.Order
	err := s.InTx(ctx, func(tx order.Tx) error {
		placed = models.Order{
			CustomerID:   customerID,
			RestaurantID: 1,
			TotalAmount:  decimal.RequireFromString("5.00"),
			Status:       models.StatusPending,
		}
		if err := tx.InsertOrder(ctx, &placed); err != nil {
			return err
		}
		if err := tx.InsertOrderItem(ctx, &models.OrderItem{
			OrderID:   placed.ID,
			ItemID:    1,
			Quantity:  1,
			PriceEach: decimal.RequireFromString("5.00"),
		}); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("InTx() error = %v, want the callback's error", err)
	}

	after, byID := countOrders(t, s)
	if after != before {
		t.Errorf("orders = %d after rollback, want %d", after, before)
	}
	if _, ok := byID[placed.ID]; placed.ID != 0 && ok {
		t.Errorf("rolled back order %d is listed", placed.ID)
	}
}

func commitAndList(t *testing.T, s order.Store) {
	ctx := testContext(t)
	customerID := newCustomer(t, s)

	var placed models.Order
	err := s.InTx(ctx, func(tx order.Tx) error {
		price, err := tx.ItemPrice(ctx, 1)
		if err != nil {
			return err
		}
		total := price.Mul(decimal.NewFromInt(2))
		placed = models.Order{CustomerID: customerID, RestaurantID: 1, TotalAmount: total, Status: models.StatusPending}
		if err := tx.InsertOrder(ctx, &placed); err != nil {
			return err
		}
		return tx.InsertOrderItem(ctx, &models.OrderItem{OrderID: placed.ID, ItemID: 1, Quantity: 2, PriceEach: price})
	})
	if err != nil {
		t.Fatalf("InTx() error = %v", err)
	}
	if placed.ID == 0 || placed.CreatedAt.IsZero() {
		t.Errorf("stored order = %+v, want generated id and created_at", placed)
	}

	orders, err := s.ListOrders(ctx)
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(orders) == 0 || orders[0].OrderID != placed.ID {
		t.Fatalf("newest order is not %d: %+v", placed.ID, orders)
	}
	got := orders[0]
	if got.CustomerName != "Store Test" || !got.TotalAmount.Equal(placed.TotalAmount) || got.Status != models.StatusPending {
		t.Errorf("listed order = %+v", got)
	}
	for i := 1; i < len(orders); i++ {
		if orders[i].OrderID >= orders[i-1].OrderID {
			t.Errorf("orders not newest first at %d: %d after %d", i, orders[i].OrderID, orders[i-1].OrderID)
		}
	}
}

func unknownItem(t *testing.T, s order.Store) {
	ctx := testContext(t)
	err := s.InTx(ctx, func(tx order.Tx) error {
		_, err := tx.ItemPrice(ctx, 987654321)
		return err
	})
	if !errors.Is(err, order.ErrItemNotFound) {
		t.Errorf("ItemPrice(unknown) error = %v, want ErrItemNotFound", err)
	}
}
