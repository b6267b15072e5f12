package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/strideline/footwear-golang/internal/models"
)

//
// --- Catalog Handlers (Public) ---
//

// queryProducts runs the catalog query: in-stock products, optionally
// filtered by exact category and/or a substring match across
// name/brand/description, newest first.
func (h *Handlers) queryProducts(category, search string) ([]*models.Product, error) {
	var queryBuilder strings.Builder
	var args []interface{}

	queryBuilder.WriteString(`
		SELECT id, name, slug, brand, category, size, color, price, stock, description, image_url, created_at
		FROM products
		WHERE stock > 0`)

	if category != "" {
		queryBuilder.WriteString(" AND category = ?")
		args = append(args, category)
	}
	if search != "" {
		queryBuilder.WriteString(" AND (name LIKE ? OR brand LIKE ? OR description LIKE ?)")
		searchTerm := "%" + search + "%"
		args = append(args, searchTerm, searchTerm, searchTerm)
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC")

	rows, err := h.DB.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, err
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
			return nil, err
		}
		products = append(products, &product)
	}
	return products, rows.Err()
}

// ListProducts is the handler for GET / (the storefront index).
func (h *Handlers) ListProducts(c *gin.Context) {
	products, err := h.queryProducts("", "")
	if err != nil {
		logger.Error().Err(err).Msg("catalog query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	if products == nil {
		products = []*models.Product{}
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"categories": models.Categories,
	})
}

// CategoryProducts is the handler for GET /category/:name.
func (h *Handlers) CategoryProducts(c *gin.Context) {
	category := c.Param("name")

	products, err := h.queryProducts(category, "")
	if err != nil {
		logger.Error().Err(err).Str("category", category).Msg("category query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	if products == nil {
		products = []*models.Product{}
	}

	c.JSON(http.StatusOK, gin.H{
		"category":   category,
		"products":   products,
		"categories": models.Categories,
	})
}

// SearchProducts is the handler for GET /search?q=.
func (h *Handlers) SearchProducts(c *gin.Context) {
	q := c.Query("q")

	products, err := h.queryProducts("", q)
	if err != nil {
		logger.Error().Err(err).Str("q", q).Msg("search query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	if products == nil {
		products = []*models.Product{}
	}

	c.JSON(http.StatusOK, gin.H{
		"query":    q,
		"products": products,
	})
}

// GetProduct is the handler for GET /product/:id.
func (h *Handlers) GetProduct(c *gin.Context) {
	productID := c.Param("id")

	var product models.Product
	query := `
		SELECT id, name, slug, brand, category, size, color, price, stock, description, image_url, created_at
		FROM products
		WHERE id = ?`

	err := h.DB.QueryRow(query, productID).Scan(
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
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}
