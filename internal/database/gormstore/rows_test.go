package gormstore

import (
	"testing"
	"time"

	"food-delivery/internal/models"

	"github.com/shopspring/decimal"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{restaurantRow{}.TableName(), "restaurants"},
		{menuItemRow{}.TableName(), "menu_items"},
		{customerRow{}.TableName(), "customers"},
		{orderRow{}.TableName(), "orders"},
		{orderItemRow{}.TableName(), "order_items"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("TableName() = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestRowConversions(t *testing.T) {
	phone := "555-0000"

	c := newCustomerRow(models.Customer{ID: 9, Name: "A", Email: "a@x.com", Phone: &phone})
	if c.CustomerID != 0 {
		t.Errorf("customer row keeps caller id %d; the store assigns it", c.CustomerID)
	}
	if c.Email != "a@x.com" || c.Phone == nil || *c.Phone != phone || c.Address != nil {
		t.Errorf("customer row = %+v", c)
	}

	total := decimal.RequireFromString("24.48")
	o := newOrderRow(&models.Order{CustomerID: 1, RestaurantID: 2, TotalAmount: total, Status: models.StatusPending})
	if o.Status != "Pending" || !o.TotalAmount.Equal(total) || o.CustomerID != 1 || o.RestaurantID != 2 {
		t.Errorf("order row = %+v", o)
	}

	item := newOrderItemRow(&models.OrderItem{OrderID: 3, ItemID: 4, Quantity: 2, PriceEach: decimal.RequireFromString("9.99")})
	if item.OrderID != 3 || item.ItemID != 4 || item.Quantity != 2 || item.PriceEach.String() != "9.99" {
		t.Errorf("order item row = %+v", item)
	}

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	summary := orderSummaryRow{
		OrderID:        5,
		TotalAmount:    total,
		Status:         "Pending",
		CreatedAt:      created,
		CustomerName:   "A",
		RestaurantName: "R",
	}.model()
	if summary.Status != models.StatusPending || !summary.CreatedAt.Equal(created) || summary.RestaurantName != "R" {
		t.Errorf("summary = %+v", summary)
	}
}

func TestSeedCatalog(t *testing.T) {
	restaurants := make(map[int64]bool)
	for _, r := range seedRestaurants() {
		restaurants[r.RestaurantID] = true
		if got := r.model(); got.ID != r.RestaurantID || !got.Rating.Valid {
			t.Errorf("restaurant %d model = %+v", r.RestaurantID, got)
		}
	}

	seen := make(map[int64]bool)
	for _, m := range seedMenuItems() {
		if seen[m.ItemID] {
			t.Errorf("duplicate menu item id %d", m.ItemID)
		}
		seen[m.ItemID] = true
		if !restaurants[m.RestaurantID] {
			t.Errorf("menu item %d references unknown restaurant %d", m.ItemID, m.RestaurantID)
		}
		if m.Price.IsNegative() {
			t.Errorf("menu item %d has negative price %s", m.ItemID, m.Price)
		}
	}
}
