package models

import "github.com/shopspring/decimal"

func init() {
	// Prices and totals render as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Restaurant is a row of the restaurants table
type Restaurant struct {
	ID      int64               `json:"restaurant_id" db:"restaurant_id"`
	Name    string              `json:"name" db:"name"`
	Cuisine *string             `json:"cuisine" db:"cuisine"`
	Address *string             `json:"address" db:"address"`
	Phone   *string             `json:"phone" db:"phone"`
	Rating  decimal.NullDecimal `json:"rating" db:"rating"`
}

// MenuItem is a row of the menu_items table
type MenuItem struct {
	ID           int64           `json:"item_id" db:"item_id"`
	RestaurantID int64           `json:"restaurant_id" db:"restaurant_id"`
	Name         string          `json:"name" db:"name"`
	Description  *string         `json:"description" db:"description"`
	Category     *string         `json:"category" db:"category"`
	Price        decimal.Decimal `json:"price" db:"price"`
	IsAvailable  bool            `json:"is_available" db:"is_available"`
}
