package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/strideline/footwear-golang/internal/auth"
)

// RevokedKeyPrefix namespaces revoked token IDs in Redis.
const RevokedKeyPrefix = "session:revoked:"

// AuthMiddleware validates the Bearer session token and places the caller's
// identity into the gin context. When a Redis client is supplied, tokens
// revoked by logout are rejected even though their signature is still valid.
func AuthMiddleware(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Please log in"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
			c.Abort()
			return
		}

		sess, err := auth.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		if rdb != nil && sess.TokenID != "" {
			// A Redis outage should not lock every user out, so a check
			// error falls through to accepting the token.
			revoked, err := rdb.Exists(c.Request.Context(), RevokedKeyPrefix+sess.TokenID).Result()
			if err == nil && revoked > 0 {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session has been logged out"})
				c.Abort()
				return
			}
		}

		c.Set("userID", sess.UserID)
		c.Set("username", sess.Username)
		c.Set("isAdmin", sess.IsAdmin)
		c.Set("session", sess)
		c.Next()
	}
}
