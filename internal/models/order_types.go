package models

import (
	"time"
)

// Order is the model for the 'orders' table.
// Orders are immutable once created, except for status.
type Order struct {
	ID              int64     `json:"id" db:"id"`
	Reference       string    `json:"reference" db:"reference"`
	UserID          int64     `json:"userId" db:"user_id"`
	TotalAmount     float64   `json:"totalAmount" db:"total_amount"`
	Status          string    `json:"status" db:"status"` // pending, shipped, ...
	ShippingAddress string    `json:"shippingAddress" db:"shipping_address"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// OrderItem is the model for the 'order_items' table.
type OrderItem struct {
	ID        int64   `json:"id" db:"id"`
	OrderID   int64   `json:"orderId" db:"order_id"`
	ProductID int64   `json:"productId" db:"product_id"`
	Quantity  int     `json:"quantity" db:"quantity"`
	Price     float64 `json:"price" db:"price"` // Price at the time of purchase
}
