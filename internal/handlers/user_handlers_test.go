package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strideline/footwear-golang/internal/auth"
	"github.com/strideline/footwear-golang/internal/middleware"
	"github.com/strideline/footwear-golang/internal/models"
)

func accountRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	return router
}

func TestRegisterRejectsPasswordMismatch(t *testing.T) {
	h, mock := newTestHandlers(t)

	w := doRequest(t, accountRouter(h), http.MethodPost, "/register",
		[]byte(`{"username": "maria", "email": "maria@example.com", "password": "hunter2hunter2", "confirmPassword": "different1234"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	// Mismatch is caught before any database work.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE username = ? OR email = ?")).
		WithArgs("maria", "maria@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	w := doRequest(t, accountRouter(h), http.MethodPost, "/register",
		[]byte(`{"username": "maria", "email": "maria@example.com", "password": "hunter2hunter2", "confirmPassword": "hunter2hunter2"}`))

	assert.Equal(t, http.StatusConflict, w.Code)
	// No user row is created for a duplicate.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterCreatesUserWithHashedPassword(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE username = ? OR email = ?")).
		WithArgs("maria", "maria@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO users").
		WithArgs("maria", "maria@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(5, 1))

	w := doRequest(t, accountRouter(h), http.MethodPost, "/register",
		[]byte(`{"username": "maria", "email": "maria@example.com", "password": "hunter2hunter2", "confirmPassword": "hunter2hunter2"}`))

	require.Equal(t, http.StatusCreated, w.Code)
	// The handler must never echo or store the plaintext.
	assert.NotContains(t, w.Body.String(), "hunter2hunter2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	h, mock := newTestHandlers(t)

	var password models.Password
	require.NoError(t, password.Set("the-real-password"))

	mock.ExpectQuery("FROM users WHERE username = ").
		WithArgs("maria").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "is_admin"}).
			AddRow(5, "maria", password.Hash, false))

	w := doRequest(t, accountRouter(h), http.MethodPost, "/login",
		[]byte(`{"username": "maria", "password": "not-the-password"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("FROM users WHERE username = ").
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	w := doRequest(t, accountRouter(h), http.MethodPost, "/login",
		[]byte(`{"username": "nobody", "password": "whatever"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginIssuesSessionToken(t *testing.T) {
	h, mock := newTestHandlers(t)

	var password models.Password
	require.NoError(t, password.Set("the-real-password"))

	mock.ExpectQuery("FROM users WHERE username = ").
		WithArgs("maria").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "is_admin"}).
			AddRow(5, "maria", password.Hash, false))

	w := doRequest(t, accountRouter(h), http.MethodPost, "/login",
		[]byte(`{"username": "maria", "password": "the-real-password"}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)
	assert.Contains(t, w.Body.String(), `"username":"maria"`)
}

// Logout denylists the token's jti for the token's remaining lifetime, and
// the auth middleware rejects the denylisted token from then on.
func TestLogoutRevokesSessionToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := &Handlers{DB: db, RDB: rdb}

	token, err := auth.GenerateToken(5, "maria", false)
	require.NoError(t, err)
	sess, err := auth.ValidateToken(token)
	require.NoError(t, err)

	router := gin.New()
	authed := router.Group("/", middleware.AuthMiddleware(rdb))
	authed.GET("/logout", h.Logout)
	authed.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	key := middleware.RevokedKeyPrefix + sess.TokenID
	require.True(t, mr.Exists(key), "logout did not write the denylist key")
	ttl := mr.TTL(key)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 72*time.Hour)

	// The token's signature is still valid but the session is gone.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutLeavesOtherSessionsAlone(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := &Handlers{DB: db, RDB: rdb}

	// Two logins for the same account yield tokens with distinct jtis.
	first, err := auth.GenerateToken(5, "maria", false)
	require.NoError(t, err)
	second, err := auth.GenerateToken(5, "maria", false)
	require.NoError(t, err)

	router := gin.New()
	authed := router.Group("/", middleware.AuthMiddleware(rdb))
	authed.GET("/logout", h.Logout)
	authed.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+first)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+second)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
