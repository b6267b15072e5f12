package models

import (
	"time"
)

// Categories is the fixed set of catalog categories the storefront knows about.
var Categories = []string{"Running", "Casual", "Boots", "Formal", "Sports"}

// Product is the model for the 'products' table.
// Nullable columns use pointers for clean JSON serialization.
type Product struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Slug        string  `json:"slug" db:"slug"`
	Brand       string  `json:"brand" db:"brand"`
	Category    string  `json:"category" db:"category"`
	Size        string  `json:"size" db:"size"`
	Color       string  `json:"color" db:"color"`
	Price       float64 `json:"price" db:"price"`
	Stock       int     `json:"stock" db:"stock"`
	Description string  `json:"description" db:"description"`
	ImageURL    *string `json:"imageUrl,omitempty" db:"image_url"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
