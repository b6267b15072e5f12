package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"

	"github.com/strideline/footwear-golang/internal/models"
)

//
// --- Admin: Product Management ---
//

// AdminProducts is the handler for GET /admin/products.
// Unlike the public catalog it includes out-of-stock products.
func (h *Handlers) AdminProducts(c *gin.Context) {
	query := `
		SELECT id, name, slug, brand, category, size, color, price, stock, description, image_url, created_at
		FROM products
		ORDER BY created_at DESC`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var product models.Product
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Slug,
			&product.Brand,
			&product.Category,
			&product.Size,
			&product.Color,
			&product.Price,
			&product.Stock,
			&product.Description,
			&product.ImageURL,
			&product.CreatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product row"})
			return
		}
		products = append(products, &product)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating product rows"})
		return
	}
	if products == nil {
		products = []*models.Product{}
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// AddProductInput defines the JSON body for POST /admin/add_product.
type AddProductInput struct {
	Name        string  `json:"name" binding:"required"`
	Brand       string  `json:"brand" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Size        string  `json:"size" binding:"required"`
	Color       string  `json:"color" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
	Description string  `json:"description"`
	ImageURL    *string `json:"imageUrl"`
}

// AddProduct is the handler for POST /admin/add_product.
func (h *Handlers) AddProduct(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input AddProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Save to Database ---
	query := `
		INSERT INTO products (name, slug, brand, category, size, color, price, stock, description, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := h.DB.Exec(query,
		input.Name,
		slug.Make(input.Name),
		input.Brand,
		input.Category,
		input.Size,
		input.Color,
		input.Price,
		input.Stock,
		input.Description,
		input.ImageURL,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add product"})
		return
	}

	id, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get new product ID"})
		return
	}

	// 3. --- Send Success Response ---
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Product added successfully!",
		"productId": id,
	})
}

// AddProductForm is the handler for GET /admin/add_product: the category
// choices the creation form offers.
func (h *Handlers) AddProductForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": models.Categories})
}
