package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

//
// --- Admin Dashboard Stats ---
//

type AdminStats struct {
	TotalProducts int     `json:"totalProducts"`
	TotalOrders   int     `json:"totalOrders"`
	TotalUsers    int     `json:"totalUsers"` // non-admin accounts
	TotalRevenue  float64 `json:"totalRevenue"`
}

// RecentOrder is an order row joined with the buyer's username for the
// dashboard's recent activity list.
type RecentOrder struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	TotalAmount float64   `json:"totalAmount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AdminDashboard returns KPI data for GET /admin.
func (h *Handlers) AdminDashboard(c *gin.Context) {
	stats := AdminStats{}

	// 1. Product Count
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM products").Scan(&stats.TotalProducts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
		return
	}

	// 2. Order Count
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM orders").Scan(&stats.TotalOrders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
		return
	}

	// 3. Customer Count (admins excluded)
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM users WHERE is_admin = FALSE").Scan(&stats.TotalUsers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}

	// 4. Revenue (COALESCE so an empty orders table reads as 0, not NULL)
	if err := h.DB.QueryRow("SELECT COALESCE(SUM(total_amount), 0) FROM orders").Scan(&stats.TotalRevenue); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate revenue"})
		return
	}

	// 5. Recent Orders
	query := `
		SELECT o.id, u.username, o.total_amount, o.status, o.created_at
		FROM orders o
		JOIN users u ON o.user_id = u.id
		ORDER BY o.created_at DESC
		LIMIT 5`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent orders"})
		return
	}
	defer rows.Close()

	var recent []RecentOrder
	for rows.Next() {
		var ro RecentOrder
		if err := rows.Scan(&ro.ID, &ro.Username, &ro.TotalAmount, &ro.Status, &ro.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan recent order"})
			return
		}
		recent = append(recent, ro)
	}
	if recent == nil {
		recent = []RecentOrder{}
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":        stats,
		"recentOrders": recent,
	})
}
