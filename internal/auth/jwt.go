package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// The signing key comes from the environment so deployments can rotate it.
// The fallback keeps local development working without a .env file.
var jwtSecretKey = []byte(secretFromEnv())

func secretFromEnv() string {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	return "dev-only-insecure-signing-key"
}

// Session is the identity carried inside a signed token: everything the
// request handlers need without touching server-side session state.
type Session struct {
	UserID   int64
	Username string
	IsAdmin  bool
	TokenID  string // jti, used for revocation on logout
	ExpireAt time.Time
}

// GenerateToken creates a signed session token for a user.
// The token carries the user ID, username and admin flag as claims,
// plus a unique jti so an individual token can be revoked.
func GenerateToken(userID int64, username string, isAdmin bool) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"admin":    isAdmin,
		"jti":      uuid.NewString(),
		"exp":      now.Add(72 * time.Hour).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecretKey)
}

// ValidateToken parses and validates a session token string and
// returns the Session it carries.
func ValidateToken(tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecretKey, nil
	})
	if err != nil {
		return nil, err // expired, malformed, bad signature
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	userIDFloat, ok := claims["sub"].(float64)
	if !ok {
		return nil, errors.New("invalid subject claim")
	}

	sess := &Session{
		UserID: int64(userIDFloat),
	}
	if username, ok := claims["username"].(string); ok {
		sess.Username = username
	}
	if admin, ok := claims["admin"].(bool); ok {
		sess.IsAdmin = admin
	}
	if jti, ok := claims["jti"].(string); ok {
		sess.TokenID = jti
	}
	if exp, ok := claims["exp"].(float64); ok {
		sess.ExpireAt = time.Unix(int64(exp), 0)
	}

	return sess, nil
}
