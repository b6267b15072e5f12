package models

// CartItem defines the struct for the 'cart' table.
// One row per (user, product); quantity is always >= 1.
type CartItem struct {
	ID        int64 `json:"id" db:"id"`
	UserID    int64 `json:"userId" db:"user_id"`
	ProductID int64 `json:"productId" db:"product_id"`
	Quantity  int   `json:"quantity" db:"quantity"`
}

// CartItemDetail is a cart row joined with its product, as returned
// by the cart listing. Subtotal = Quantity * Price.
type CartItemDetail struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Brand     string  `json:"brand"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  *string `json:"imageUrl,omitempty"`
	Subtotal  float64 `json:"subtotal"`
}
