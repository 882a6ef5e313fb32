package database

// Migration bookkeeping
const (
	createMigrationsTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			migration_name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`

	selectAppliedMigrationsSQL = `SELECT migration_name FROM schema_migrations`

	recordMigrationSQL = `INSERT INTO schema_migrations (migration_name) VALUES ($1)`
)

// Catalog queries
const (
	ListRestaurantsSQL = `
		SELECT restaurant_id, name, cuisine, address, phone, rating
		FROM restaurants`

	ListMenuSQL = `
		SELECT item_id, restaurant_id, name, description, category, price, is_available
		FROM menu_items
		WHERE restaurant_id = $1`

	GetItemPriceSQL = `SELECT price FROM menu_items WHERE item_id = $1`
)

// Customer queries
const (
	GetCustomerIDByEmailSQL = `SELECT customer_id FROM customers WHERE email = $1`

	InsertCustomerSQL = `
		INSERT INTO customers (name, email, phone, address)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
		RETURNING customer_id`
)

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (customer_id, restaurant_id, total_amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING order_id, created_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, item_id, quantity, price_each)
		VALUES ($1, $2, $3, $4)
		RETURNING order_item_id`

	ListOrdersSQL = `
		SELECT o.order_id, o.total_amount, o.status, o.created_at,
			   c.name AS customer_name, r.name AS restaurant_name
		FROM orders o
		JOIN customers c ON o.customer_id = c.customer_id
		JOIN restaurants r ON o.restaurant_id = r.restaurant_id
		ORDER BY o.order_id DESC`
)
