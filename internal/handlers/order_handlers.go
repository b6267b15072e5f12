package handlers

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/strideline/footwear-golang/internal/models"
)

//
// --- Checkout & Order Handlers (Login Required) ---
//

// checkoutItem is a helper struct for fetching cart rows during checkout.
// Price is the *current* product price; it becomes the order line snapshot.
type checkoutItem struct {
	ProductID int64
	Quantity  int
	Price     float64
	Stock     int
}

// CheckoutInput defines the JSON body for POST /checkout.
type CheckoutInput struct {
	ShippingAddress string `json:"shippingAddress" binding:"required"`
}

// CheckoutPreview is the handler for GET /checkout: the cart snapshot and
// total the confirmation page would show before the order is placed.
func (h *Handlers) CheckoutPreview(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	items, err := h.getCartItems(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
		return
	}

	var total float64
	for _, item := range items {
		total += item.Subtotal
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
	})
}

// Checkout is the handler for POST /checkout. It converts the caller's cart
// into an order atomically:
//
//	order row + one order_items row per cart row (price snapshotted now),
//	stock decremented, cart emptied: all or nothing.
//
// Stock rows are locked for the transaction and each decrement is
// conditional on stock remaining sufficient, so two concurrent checkouts
// cannot drive stock negative.
func (h *Handlers) Checkout(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Shipping address is required"})
		return
	}

	// Empty cart is rejected before the transaction begins.
	var cartCount int
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM cart WHERE user_id = ?", userID).Scan(&cartCount); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check cart"})
		return
	}
	if cartCount == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
		return
	}

	// 1. --- Begin Transaction ---
	tx, err := h.DB.BeginTx(c, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback() // Safety net

	// 2. --- Read Cart Rows & Lock Product Rows ---
	query := `
		SELECT c.product_id, c.quantity, p.price, p.stock
		FROM cart c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = ?
		FOR UPDATE`

	rows, err := tx.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get cart items"})
		return
	}
	defer rows.Close()

	var cartItems []checkoutItem
	var total float64

	for rows.Next() {
		var item checkoutItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price, &item.Stock); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan cart item"})
			return
		}

		// 3. --- Check Stock & Accumulate Total ---
		if item.Stock < item.Quantity {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Not enough stock for product ID %d", item.ProductID)})
			return
		}
		total += item.Price * float64(item.Quantity)
		cartItems = append(cartItems, item)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating cart items"})
		return
	}

	// The cart may have been emptied between the pre-check and the lock.
	if len(cartItems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
		return
	}

	// 4. --- Insert the Order ---
	reference := uuid.NewString()
	orderQuery := `
		INSERT INTO orders (reference, user_id, total_amount, status, shipping_address)
		VALUES (?, ?, ?, 'pending', ?)`
	result, err := tx.Exec(orderQuery, reference, userID, total, input.ShippingAddress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get new order ID"})
		return
	}

	// 5. --- Snapshot Items & Decrement Stock ---
	itemQuery := `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES (?, ?, ?, ?)`

	// Conditional update: the decrement only applies while stock stays
	// sufficient, so stock can never go negative.
	stockQuery := "UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?"

	for _, item := range cartItems {
		if _, err := tx.Exec(itemQuery, orderID, item.ProductID, item.Quantity, item.Price); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save order item"})
			return
		}

		stockResult, err := tx.Exec(stockQuery, item.Quantity, item.ProductID, item.Quantity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deduct stock"})
			return
		}
		affected, err := stockResult.RowsAffected()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deduct stock"})
			return
		}
		if affected == 0 {
			// Another checkout took the stock first; roll everything back.
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Not enough stock for product ID %d", item.ProductID)})
			return
		}
	}

	// 6. --- Clear the Cart ---
	if _, err := tx.Exec("DELETE FROM cart WHERE user_id = ?", userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	// 7. --- Commit ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	logger.Info().Int64("userID", userID).Int64("orderID", orderID).Float64("total", total).Msg("order placed")

	// 8. --- Send Success Response ---
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Order placed successfully!",
		"orderId":   orderID,
		"reference": reference,
		"total":     total,
	})
}

// OrderItemDetail extends the base OrderItem with product info for display.
type OrderItemDetail struct {
	models.OrderItem
	ProductName  string `json:"productName"`
	ProductBrand string `json:"productBrand"`
}

// OrderConfirmation is the handler for GET /order_confirmation/:id.
// Orders are only visible to the user who placed them.
func (h *Handlers) OrderConfirmation(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)
	orderID := c.Param("id")

	// 1. --- Fetch Order & Verify Ownership ---
	var o models.Order
	queryOrder := `
		SELECT id, reference, user_id, total_amount, status, shipping_address, created_at
		FROM orders
		WHERE id = ? AND user_id = ?`
	err := h.DB.QueryRow(queryOrder, orderID, userID).Scan(
		&o.ID,
		&o.Reference,
		&o.UserID,
		&o.TotalAmount,
		&o.Status,
		&o.ShippingAddress,
		&o.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	// 2. --- Fetch Order Items with Product Details ---
	queryItems := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, p.name, p.brand
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = ?`

	rows, err := h.DB.Query(queryItems, o.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}
	defer rows.Close()

	var items []OrderItemDetail
	for rows.Next() {
		var item OrderItemDetail
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price,
			&item.ProductName, &item.ProductBrand,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order item"})
			return
		}
		items = append(items, item)
	}
	if items == nil {
		items = []OrderItemDetail{}
	}

	c.JSON(http.StatusOK, gin.H{
		"order": o,
		"items": items,
	})
}

// GetMyOrders is the handler for GET /orders: the caller's order history.
func (h *Handlers) GetMyOrders(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	query := `
		SELECT id, reference, user_id, total_amount, status, shipping_address, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC`

	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(
			&o.ID, &o.Reference, &o.UserID, &o.TotalAmount, &o.Status, &o.ShippingAddress, &o.CreatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order data"})
			return
		}
		orders = append(orders, o)
	}
	if orders == nil {
		orders = []models.Order{}
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
