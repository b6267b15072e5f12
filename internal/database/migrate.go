package database

import (
	"context"
	"database/sql"
)

// Schema for the five storefront tables. Statements are idempotent so
// Migrate can run unconditionally at startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(64) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(255) NOT NULL,
		brand VARCHAR(128) NOT NULL,
		category VARCHAR(64) NOT NULL,
		size VARCHAR(16) NOT NULL,
		color VARCHAR(64) NOT NULL,
		price DOUBLE NOT NULL,
		stock INT NOT NULL,
		description TEXT,
		image_url VARCHAR(512),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS cart (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		UNIQUE KEY uq_cart_user_product (user_id, product_id),
		FOREIGN KEY (user_id) REFERENCES users (id),
		FOREIGN KEY (product_id) REFERENCES products (id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		reference VARCHAR(36) NOT NULL UNIQUE,
		user_id BIGINT NOT NULL,
		total_amount DOUBLE NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'pending',
		shipping_address TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users (id)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		price DOUBLE NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders (id),
		FOREIGN KEY (product_id) REFERENCES products (id)
	)`,
}

// Migrate creates the storefront tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin creates the bootstrap admin account when no user with that
// username exists yet. The password hash is computed by the caller so this
// package stays free of crypto concerns.
func SeedAdmin(ctx context.Context, db *sql.DB, username, email, passwordHash string) error {
	var id int64
	err := db.QueryRowContext(ctx, "SELECT id FROM users WHERE username = ?", username).Scan(&id)
	if err == nil {
		return nil // already bootstrapped
	}
	if err != sql.ErrNoRows {
		return err
	}

	_, err = db.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, is_admin) VALUES (?, ?, ?, TRUE)",
		username, email, passwordHash)
	return err
}

type seedProduct struct {
	name, brand, category, size, color, description string
	price                                           float64
	stock                                           int
}

var sampleProducts = []seedProduct{
	{"Nike Air Max 270", "Nike", "Running", "9", "Black", "Comfortable running shoes with air cushioning", 129.99, 50},
	{"Adidas Ultraboost 22", "Adidas", "Running", "10", "White", "Premium running shoes with boost technology", 189.99, 30},
	{"Converse Chuck Taylor", "Converse", "Casual", "8", "Red", "Classic high-top sneakers", 59.99, 75},
	{"Vans Old Skool", "Vans", "Casual", "9", "Black/White", "Iconic skate shoes with waffle sole", 69.99, 60},
	{"Dr. Martens 1460", "Dr. Martens", "Boots", "10", "Black", "Classic leather boots with air-cushioned sole", 169.99, 25},
	{"Timberland Premium Boot", "Timberland", "Boots", "11", "Wheat", "Waterproof leather boots", 199.99, 35},
}

// SeedProducts inserts the sample catalog when the products table is empty.
// slugFor lets the caller supply slug generation so this package stays
// free of the slug dependency.
func SeedProducts(ctx context.Context, db *sql.DB, slugFor func(string) string) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	query := `
		INSERT INTO products (name, slug, brand, category, size, color, price, stock, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, p := range sampleProducts {
		if _, err := db.ExecContext(ctx, query,
			p.name, slugFor(p.name), p.brand, p.category, p.size, p.color, p.price, p.stock, p.description); err != nil {
			return err
		}
	}
	return nil
}
