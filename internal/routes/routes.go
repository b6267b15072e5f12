package routes

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/strideline/footwear-golang/internal/handlers"
	"github.com/strideline/footwear-golang/internal/middleware"
)

// CORSMiddleware allows the storefront frontend to call this API.
func CORSMiddleware() gin.HandlerFunc {
	allowedOrigin := os.Getenv("CORS_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:5173"
	}

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware())
	router.Use(middleware.RateLimiter(rate.Limit(20), 40))

	// --- Ping Route (Public) ---
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong!"})
	})

	// --- Catalog Routes (Public) ---
	router.GET("/", h.ListProducts)
	router.GET("/category/:name", h.CategoryProducts)
	router.GET("/search", h.SearchProducts)
	router.GET("/product/:id", h.GetProduct)

	// --- Account Routes (Public) ---
	router.GET("/register", h.RegisterForm)
	router.POST("/register", h.Register)
	router.GET("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"fields": []string{"username", "password"}})
	})
	router.POST("/login", h.Login)

	// --- Protected Routes (Login Required) ---
	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware(h.RDB))
	{
		auth.GET("/logout", h.Logout)

		// Cart
		auth.GET("/add_to_cart/:id", h.AddToCart)
		auth.GET("/cart", h.GetCart)
		auth.POST("/update_cart", h.UpdateCart)
		auth.GET("/remove_from_cart/:id", h.RemoveFromCart)

		// Checkout & Orders
		auth.GET("/checkout", h.CheckoutPreview)
		auth.POST("/checkout", h.Checkout)
		auth.GET("/order_confirmation/:id", h.OrderConfirmation)
		auth.GET("/orders", h.GetMyOrders)
	}

	// --- Admin-Only Routes ---
	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(h.RDB))
	admin.Use(middleware.AdminMiddleware(h.DB))
	{
		admin.GET("", h.AdminDashboard)
		admin.GET("/products", h.AdminProducts)
		admin.GET("/add_product", h.AddProductForm)
		admin.POST("/add_product", h.AddProduct)
	}

	return router
}
