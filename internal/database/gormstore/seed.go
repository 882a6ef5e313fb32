package gormstore

import "github.com/shopspring/decimal"

func strPtr(s string) *string { return &s }

// seedRestaurants mirrors the Postgres seed migration
func seedRestaurants() []restaurantRow {
	return []restaurantRow{
		{RestaurantID: 1, Name: "Spice Route", Cuisine: strPtr("Indian"), Address: strPtr("12 MG Road"), Phone: strPtr("555-0101"), Rating: decimal.NewNullDecimal(decimal.RequireFromString("4.5"))},
		{RestaurantID: 2, Name: "Pasta Fresca", Cuisine: strPtr("Italian"), Address: strPtr("48 Lake View"), Phone: strPtr("555-0102"), Rating: decimal.NewNullDecimal(decimal.RequireFromString("4.2"))},
		{RestaurantID: 3, Name: "Dragon Wok", Cuisine: strPtr("Chinese"), Address: strPtr("7 Market Street"), Phone: strPtr("555-0103"), Rating: decimal.NewNullDecimal(decimal.RequireFromString("4.0"))},
	}
}

func seedMenuItems() []menuItemRow {
	item := func(id, restaurantID int64, name, category, price string, available bool) menuItemRow {
		return menuItemRow{
			ItemID:       id,
			RestaurantID: restaurantID,
			Name:         name,
			Category:     strPtr(category),
			Price:        decimal.RequireFromString(price),
			IsAvailable:  available,
		}
	}

	return []menuItemRow{
		item(1, 1, "Paneer Tikka", "Starter", "5.00", true),
		item(2, 1, "Butter Chicken", "Main", "9.99", true),
		item(3, 1, "Garlic Naan", "Bread", "4.50", true),
		item(4, 2, "Margherita", "Pizza", "8.50", true),
		item(5, 2, "Penne Arrabbiata", "Pasta", "7.25", true),
		item(6, 3, "Kung Pao Chicken", "Main", "8.75", true),
		item(7, 3, "Spring Rolls", "Starter", "3.50", false),
	}
}
