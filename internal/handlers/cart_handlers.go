package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/strideline/footwear-golang/internal/models"
)

//
// --- Cart Handlers (Login Required) ---
//

// AddToCart is the handler for GET /add_to_cart/:id.
// First add inserts a row with quantity 1; repeat adds increment the same
// row. The resulting quantity may never exceed the product's current stock;
// a violating add is rejected with no mutation.
func (h *Handlers) AddToCart(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)
	productID := c.Param("id")

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
		return
	}
	defer tx.Rollback() // Safety net

	// 1. --- Check the Product Exists & Read Stock ---
	var stock int
	err = tx.QueryRow("SELECT stock FROM products WHERE id = ?", productID).Scan(&stock)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// 2. --- Find an Existing Cart Row ---
	var item models.CartItem
	err = tx.QueryRow("SELECT id, quantity FROM cart WHERE user_id = ? AND product_id = ?",
		userID, productID).Scan(&item.ID, &item.Quantity)

	switch {
	case err == nil:
		// 3a. --- Increment, Capped at Current Stock ---
		newQuantity := item.Quantity + 1
		if newQuantity > stock {
			c.JSON(http.StatusConflict, gin.H{"error": "Not enough stock available"})
			return
		}
		if _, err := tx.Exec("UPDATE cart SET quantity = ? WHERE id = ?", newQuantity, item.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}

	case err == sql.ErrNoRows:
		// 3b. --- Insert a New Row ---
		if stock < 1 {
			c.JSON(http.StatusConflict, gin.H{"error": "Not enough stock available"})
			return
		}
		if _, err := tx.Exec("INSERT INTO cart (user_id, product_id, quantity) VALUES (?, ?, 1)",
			userID, productID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to cart"})
			return
		}

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item added to cart"})
}

// getCartItems fetches a user's cart rows joined with product details.
// Subtotals are computed in SQL, the way the listing reports them.
func (h *Handlers) getCartItems(userID int64) ([]models.CartItemDetail, error) {
	query := `
		SELECT c.id, c.product_id, p.name, p.brand, p.price, c.quantity, p.image_url,
		       (c.quantity * p.price) AS subtotal
		FROM cart c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = ?`

	rows, err := h.DB.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.CartItemDetail
	for rows.Next() {
		var item models.CartItemDetail
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.Name,
			&item.Brand,
			&item.Price,
			&item.Quantity,
			&item.ImageURL,
			&item.Subtotal,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetCart is the handler for GET /cart.
func (h *Handlers) GetCart(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	items, err := h.getCartItems(userID)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("cart query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	var total float64
	for _, item := range items {
		total += item.Subtotal
	}
	if items == nil {
		items = []models.CartItemDetail{}
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
	})
}

// UpdateCartInput defines the JSON body for POST /update_cart.
type UpdateCartInput struct {
	CartID   int64 `json:"cartId" binding:"required"`
	Quantity int   `json:"quantity" binding:"required,gte=1"`
}

// UpdateCart is the handler for POST /update_cart.
// Quantity must be >= 1 and may not exceed the product's current stock.
func (h *Handlers) UpdateCart(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	var input UpdateCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 1. --- Check Stock for the Cart Row's Product ---
	var stock int
	query := `
		SELECT p.stock
		FROM cart c
		JOIN products p ON c.product_id = p.id
		WHERE c.id = ? AND c.user_id = ?`
	err := h.DB.QueryRow(query, input.CartID, userID).Scan(&stock)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if input.Quantity > stock {
		c.JSON(http.StatusConflict, gin.H{"error": "Not enough stock available"})
		return
	}

	// 2. --- Execute Update ---
	// Ownership was proven by the stock query above, so RowsAffected is not
	// consulted: MySQL reports 0 affected rows when the quantity is unchanged.
	_, err = h.DB.Exec("UPDATE cart SET quantity = ? WHERE id = ? AND user_id = ?",
		input.Quantity, input.CartID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart updated successfully"})
}

// RemoveFromCart is the handler for GET /remove_from_cart/:id.
func (h *Handlers) RemoveFromCart(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)
	cartID := c.Param("id")

	result, err := h.DB.Exec("DELETE FROM cart WHERE id = ? AND user_id = ?", cartID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}
