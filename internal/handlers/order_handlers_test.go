package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRouter(h *Handlers, userID int64) *gin.Engine {
	router := gin.New()
	auth := router.Group("/", asUser(userID))
	auth.GET("/checkout", h.CheckoutPreview)
	auth.POST("/checkout", h.Checkout)
	auth.GET("/order_confirmation/:id", h.OrderConfirmation)
	auth.GET("/orders", h.GetMyOrders)
	return router
}

func TestCheckoutRejectsEmptyCartBeforeTransaction(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM cart WHERE user_id = ?")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	w := doRequest(t, orderRouter(h, 9), http.MethodPost, "/checkout",
		[]byte(`{"shippingAddress": "1 Main St"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	// No transaction, no writes.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutRequiresShippingAddress(t *testing.T) {
	h, mock := newTestHandlers(t)

	w := doRequest(t, orderRouter(h, 9), http.MethodPost, "/checkout", []byte(`{}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The worked example from the order contract: cart = [(A, qty 2, price 10.00),
// (B, qty 1, price 5.00)] yields total 25.00, two snapshotted order items,
// stock decrements of 2 and 1, and an emptied cart.
func TestCheckoutPlacesOrderAtomically(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM cart WHERE user_id = ?")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	mock.ExpectBegin()
	mock.ExpectQuery("FROM cart c JOIN products p").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity", "price", "stock"}).
			AddRow(1, 2, 10.0, 50).
			AddRow(2, 1, 5.0, 30))

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(sqlmock.AnyArg(), int64(9), 25.0, "1 Main St").
		WillReturnResult(sqlmock.NewResult(77, 1))

	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(77), int64(1), 2, 10.0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?")).
		WithArgs(2, int64(1), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(77), int64(2), 1, 5.0).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?")).
		WithArgs(1, int64(2), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart WHERE user_id = ?")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	w := doRequest(t, orderRouter(h, 9), http.MethodPost, "/checkout",
		[]byte(`{"shippingAddress": "1 Main St"}`))

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		OrderID   int64   `json:"orderId"`
		Reference string  `json:"reference"`
		Total     float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(77), resp.OrderID)
	assert.NotEmpty(t, resp.Reference)
	assert.Equal(t, 25.0, resp.Total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutRejectsInsufficientStock(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM cart WHERE user_id = ?")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectBegin()
	mock.ExpectQuery("FROM cart c JOIN products p").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity", "price", "stock"}).
			AddRow(1, 5, 10.0, 3))
	mock.ExpectRollback()

	w := doRequest(t, orderRouter(h, 9), http.MethodPost, "/checkout",
		[]byte(`{"shippingAddress": "1 Main St"}`))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A concurrent checkout can consume the stock between the locked read and
// the decrement only if locking fails; the conditional update is the last
// line of defence and must roll the whole order back.
func TestCheckoutRollsBackWhenDecrementLosesRace(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM cart WHERE user_id = ?")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectBegin()
	mock.ExpectQuery("FROM cart c JOIN products p").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity", "price", "stock"}).
			AddRow(1, 1, 10.0, 1))
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(sqlmock.AnyArg(), int64(9), 10.0, "1 Main St").
		WillReturnResult(sqlmock.NewResult(78, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(78), int64(1), 1, 10.0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?")).
		WithArgs(1, int64(1), 1).
		WillReturnResult(sqlmock.NewResult(0, 0)) // stock already gone
	mock.ExpectRollback()

	w := doRequest(t, orderRouter(h, 9), http.MethodPost, "/checkout",
		[]byte(`{"shippingAddress": "1 Main St"}`))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderConfirmationScopedToOwner(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("FROM orders WHERE id = ").
		WithArgs("12", int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "reference", "user_id", "total_amount", "status", "shipping_address", "created_at",
		})) // no rows: order belongs to someone else

	w := doRequest(t, orderRouter(h, 9), http.MethodGet, "/order_confirmation/12", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderConfirmationReturnsSnapshotItems(t *testing.T) {
	h, mock := newTestHandlers(t)
	now := time.Now()

	mock.ExpectQuery("FROM orders WHERE id = ").
		WithArgs("12", int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "reference", "user_id", "total_amount", "status", "shipping_address", "created_at",
		}).AddRow(12, "ref-1", 9, 25.0, "pending", "1 Main St", now))

	mock.ExpectQuery("FROM order_items oi JOIN products p").
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_id", "product_id", "quantity", "price", "name", "brand",
		}).
			AddRow(1, 12, 1, 2, 10.0, "Air Max 270", "Nike").
			AddRow(2, 12, 2, 1, 5.0, "Old Skool", "Vans"))

	w := doRequest(t, orderRouter(h, 9), http.MethodGet, "/order_confirmation/12", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"price":10`)
	assert.Contains(t, w.Body.String(), `"price":5`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutPreviewRejectsEmptyCart(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("FROM cart c JOIN products p").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "product_id", "name", "brand", "price", "quantity", "image_url", "subtotal",
		}))

	w := doRequest(t, orderRouter(h, 9), http.MethodGet, "/checkout", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
