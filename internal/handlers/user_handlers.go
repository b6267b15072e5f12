package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/strideline/footwear-golang/internal/auth"
	"github.com/strideline/footwear-golang/internal/middleware"
	"github.com/strideline/footwear-golang/internal/models"
)

//
// --- Account Handlers ---
//

// RegisterInput defines the expected JSON data for registration.
// The 'binding' tags are used by Gin for automatic validation.
type RegisterInput struct {
	Username        string `json:"username" binding:"required,min=3"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// Register is the handler for POST /register.
func (h *Handlers) Register(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Password != input.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}

	// 2. --- Reject Duplicates ---
	var existingID int64
	err := h.DB.QueryRow("SELECT id FROM users WHERE username = ? OR email = ?",
		input.Username, input.Email).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
		return
	}
	if err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// 3. --- Hash the Password ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	// 4. --- Save to Database ---
	result, err := h.DB.Exec(
		"INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)",
		input.Username, input.Email, password.Hash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	id, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get new user ID"})
		return
	}

	// 5. --- Send Success Response ---
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful! Please log in.",
		"user": gin.H{
			"id":       id,
			"username": input.Username,
			"email":    input.Email,
		},
	})
}

// RegisterForm is the handler for GET /register. There is no server-side
// form to render; the endpoint just documents what POST expects.
func (h *Handlers) RegisterForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"fields": []string{"username", "email", "password", "confirmPassword"},
	})
}

// LoginInput defines the expected JSON data for login.
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /login.
func (h *Handlers) Login(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Find User By Username ---
	var user models.User
	query := "SELECT id, username, password_hash, is_admin FROM users WHERE username = ?"
	err := h.DB.QueryRow(query, input.Username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.IsAdmin,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// 3. --- Check Password ---
	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check password"})
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	// 4. --- Generate Session Token ---
	token, err := auth.GenerateToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	// 5. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome back, " + user.Username + "!",
		"token":   token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"isAdmin":  user.IsAdmin,
		},
	})
}

// Logout is the handler for GET /logout. The session token is stateless,
// so logout revokes it by putting its jti on the Redis denylist until the
// token would have expired anyway.
func (h *Handlers) Logout(c *gin.Context) {
	sessRaw, exists := c.Get("session")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please log in"})
		return
	}
	sess := sessRaw.(*auth.Session)

	if h.RDB != nil && sess.TokenID != "" {
		ttl := time.Until(sess.ExpireAt)
		if ttl > 0 {
			err := h.RDB.Set(c.Request.Context(),
				middleware.RevokedKeyPrefix+sess.TokenID, "1", ttl).Err()
			if err != nil {
				logger.Error().Err(err).Int64("userID", sess.UserID).Msg("failed to revoke session token")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
				return
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
