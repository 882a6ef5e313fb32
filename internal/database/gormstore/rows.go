package gormstore

import (
	"time"

	"food-delivery/internal/models"

	"github.com/shopspring/decimal"
)

type restaurantRow struct {
	RestaurantID int64               `gorm:"column:restaurant_id;primaryKey;autoIncrement"`
	Name         string              `gorm:"size:100;not null"`
	Cuisine      *string             `gorm:"size:50"`
	Address      *string             `gorm:"size:255"`
	Phone        *string             `gorm:"size:20"`
	Rating       decimal.NullDecimal `gorm:"type:decimal(2,1)"`
}

func (restaurantRow) TableName() string { return "restaurants" }

func (r restaurantRow) model() models.Restaurant {
	return models.Restaurant{
		ID:      r.RestaurantID,
		Name:    r.Name,
		Cuisine: r.Cuisine,
		Address: r.Address,
		Phone:   r.Phone,
		Rating:  r.Rating,
	}
}

type menuItemRow struct {
	ItemID       int64           `gorm:"column:item_id;primaryKey;autoIncrement"`
	RestaurantID int64           `gorm:"not null;index"`
	Name         string          `gorm:"size:100;not null"`
	Description  *string         `gorm:"type:text"`
	Category     *string         `gorm:"size:50"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	IsAvailable  bool            `gorm:"not null"`
}

func (menuItemRow) TableName() string { return "menu_items" }

func (m menuItemRow) model() models.MenuItem {
	return models.MenuItem{
		ID:           m.ItemID,
		RestaurantID: m.RestaurantID,
		Name:         m.Name,
		Description:  m.Description,
		Category:     m.Category,
		Price:        m.Price,
		IsAvailable:  m.IsAvailable,
	}
}

type customerRow struct {
	CustomerID int64   `gorm:"column:customer_id;primaryKey;autoIncrement"`
	Name       string  `gorm:"size:100;not null"`
	Email      string  `gorm:"size:255;not null;uniqueIndex"`
	Phone      *string `gorm:"size:20"`
	Address    *string `gorm:"size:255"`
	CreatedAt  time.Time
}

func (customerRow) TableName() string { return "customers" }

func newCustomerRow(c models.Customer) customerRow {
	return customerRow{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
	}
}

type orderRow struct {
	OrderID      int64           `gorm:"column:order_id;primaryKey;autoIncrement"`
	CustomerID   int64           `gorm:"not null;index"`
	RestaurantID int64           `gorm:"not null;index"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status       string          `gorm:"size:20;not null;default:Pending"`
	CreatedAt    time.Time
}

func (orderRow) TableName() string { return "orders" }

func newOrderRow(o *models.Order) orderRow {
	return orderRow{
		CustomerID:   o.CustomerID,
		RestaurantID: o.RestaurantID,
		TotalAmount:  o.TotalAmount,
		Status:       string(o.Status),
	}
}

type orderItemRow struct {
	OrderItemID int64           `gorm:"column:order_item_id;primaryKey;autoIncrement"`
	OrderID     int64           `gorm:"not null;index"`
	ItemID      int64           `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	PriceEach   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (orderItemRow) TableName() string { return "order_items" }

func newOrderItemRow(item *models.OrderItem) orderItemRow {
	return orderItemRow{
		OrderID:   item.OrderID,
		ItemID:    item.ItemID,
		Quantity:  item.Quantity,
		PriceEach: item.PriceEach,
	}
}

type orderSummaryRow struct {
	OrderID        int64
	TotalAmount    decimal.Decimal
	Status         string
	CreatedAt      time.Time
	CustomerName   string
	RestaurantName string
}

func (r orderSummaryRow) model() models.OrderSummary {
	return models.OrderSummary{
		OrderID:        r.OrderID,
		TotalAmount:    r.TotalAmount,
		Status:         models.OrderStatus(r.Status),
		CreatedAt:      r.CreatedAt,
		CustomerName:   r.CustomerName,
		RestaurantName: r.RestaurantName,
	}
}
