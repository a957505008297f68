package integration

import (
	"net/http"
	"testing"

	"bookstore/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddress = model.ShippingAddress{
	Street:  "12 Trang Tien",
	City:    "Hanoi",
	State:   "HN",
	Country: "VN",
	ZipCode: "100000",
}

// createBook adds a book through the admin API.
func createBook(t *testing.T, s *TestServer, adminToken, isbn string, price string, stock int) model.Book {
	t.Helper()

	w := s.Do(t, http.MethodPost, "/api/books", adminToken, model.BookRequest{
		Title:         "Book " + isbn,
		Author:        "Author",
		Description:   "Description",
		Price:         decimal.RequireFromString(price),
		CoverImage:    "cover.jpg",
		Category:      "Fiction",
		Stock:         stock,
		ISBN:          isbn,
		PublishedYear: 2020,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return DecodeData[model.Book](t, w)
}

// placeOrder orders quantity units of a book with the given payment method.
func placeOrder(t *testing.T, s *TestServer, token string, bookID uuid.UUID, quantity int, method model.PaymentMethod) model.Order {
	t.Helper()

	w := s.Do(t, http.MethodPost, "/api/orders", token, model.OrderRequest{
		Items:           []model.OrderItemRequest{{BookID: bookID, Quantity: quantity}},
		ShippingAddress: testAddress,
		PaymentMethod:   method,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return DecodeData[model.Order](t, w)
}

func getBook(t *testing.T, s *TestServer, id uuid.UUID) model.Book {
	t.Helper()

	w := s.Do(t, http.MethodGet, "/api/books/"+id.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return DecodeData[model.Book](t, w)
}

func getOrder(t *testing.T, s *TestServer, token string, id uuid.UUID) model.Order {
	t.Helper()

	w := s.Do(t, http.MethodGet, "/api/orders/"+id.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return DecodeData[model.Order](t, w)
}

func TestOrderAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := SetupTestServer(t, testDB, SetupTestRedis(t))

	t.Run("order total is the price snapshot and stock drops by the quantity", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		_, adminToken := server.CreateUser(t, model.RoleAdmin)
		_, userToken := server.CreateUser(t, model.RoleUser)

		book := createBook(t, server, adminToken, "isbn-a", "100000", 5)
		order := placeOrder(t, server, userToken, book.ID, 2, model.MethodCashOnDelivery)

		assert.True(t, decimal.RequireFromString("200000").Equal(order.TotalAmount), order.TotalAmount.String())
		assert.Equal(t, model.OrderStatusPending, order.Status)
		assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)

		after := getBook(t, server, book.ID)
		assert.Equal(t, 3, after.Stock)
		assert.Equal(t, 2, after.SalesCount)

		// A later price change does not touch the order.
		newPrice := decimal.RequireFromString("150000")
		w := server.Do(t, http.MethodPut, "/api/books/"+book.ID.String(), adminToken, model.BookUpdate{Price: &newPrice})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		reloaded := getOrder(t, server, userToken, order.ID)
		assert.True(t, decimal.RequireFromString("200000").Equal(reloaded.TotalAmount))
		require.Len(t, reloaded.Items, 1)
		assert.True(t, decimal.RequireFromString("100000").Equal(reloaded.Items[0].UnitPrice))
	})

	t.Run("insufficient stock rejects the whole order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		_, adminToken := server.CreateUser(t, model.RoleAdmin)
		_, userToken := server.CreateUser(t, model.RoleUser)

		plenty := createBook(t, server, adminToken, "isbn-plenty", "50000", 10)
		scarce := createBook(t, server, adminToken, "isbn-scarce", "80000", 1)

		w := server.Do(t, http.MethodPost, "/api/orders", userToken, model.OrderRequest{
			Items: []model.OrderItemRequest{
				{BookID: plenty.ID, Quantity: 3},
				{BookID: scarce.ID, Quantity: 2},
			},
			ShippingAddress: testAddress,
			PaymentMethod:   model.MethodCashOnDelivery,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), model.ErrCodeOutOfStock)
		assert.Equal(t, 10, getBook(t, server, plenty.ID).Stock)
		assert.Equal(t, 1, getBook(t, server, scarce.ID).Stock)
	})

	t.Run("orders are private to their owner", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		_, adminToken := server.CreateUser(t, model.RoleAdmin)
		_, ownerToken := server.CreateUser(t, model.RoleUser)
		_, otherToken := server.CreateUser(t, model.RoleUser)

		book := createBook(t, server, adminToken, "isbn-private", "10000", 3)
		order := placeOrder(t, server, ownerToken, book.ID, 1, model.MethodCashOnDelivery)

		w := server.Do(t, http.MethodGet, "/api/orders/"+order.ID.String(), otherToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = server.Do(t, http.MethodGet, "/api/orders/"+order.ID.String(), adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = server.Do(t, http.MethodGet, "/api/orders", otherToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("ordering from the cart empties it", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		_, adminToken := server.CreateUser(t, model.RoleAdmin)
		_, userToken := server.CreateUser(t, model.RoleUser)

		book := createBook(t, server, adminToken, "isbn-cart", "40000", 4)

		w := server.Do(t, http.MethodPost, "/api/cart/add", userToken, model.AddToCartRequest{BookID: book.ID, Quantity: 2})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		cart := DecodeData[model.Cart](t, w)
		assert.True(t, decimal.RequireFromString("80000").Equal(cart.TotalAmount))

		w = server.Do(t, http.MethodPost, "/api/orders/from-cart", userToken, model.CartOrderRequest{
			ShippingAddress: testAddress,
			PaymentMethod:   model.MethodBankTransfer,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		order := DecodeData[model.Order](t, w)
		assert.True(t, decimal.RequireFromString("80000").Equal(order.TotalAmount))

		w = server.Do(t, http.MethodGet, "/api/cart", userToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, DecodeData[model.Cart](t, w).Items)

		w = server.Do(t, http.MethodPost, "/api/orders/from-cart", userToken, model.CartOrderRequest{
			ShippingAddress: testAddress,
			PaymentMethod:   model.MethodBankTransfer,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), model.ErrCodeEmptyCart)
	})
}

func TestPaymentAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := SetupTestServer(t, testDB, SetupTestRedis(t))

	t.Run("confirming cash on delivery completes payment and order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		_, adminToken := server.CreateUser(t, model.RoleAdmin)
		_, userToken := server.CreateUser(t, model.RoleUser)

		book := createBook(t, server, adminToken, "isbn-cod", "100000", 5)
		order := placeOrder(t, server, userToken, book.ID, 1, model.MethodCashOnDelivery)

		w := server.Do(t, http.MethodPost, "/api/payments", userToken, model.PaymentRequest{
			OrderID: order.ID,
			Method:  model.MethodCashOnDelivery,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		created := DecodeData[model.Payment](t, w)
		assert.Equal(t, model.PaymentStatusPending, created.Status)
		assert.Contains(t, created.TransactionID, "COD-")

		w = server.Do(t, http.MethodPost, "/api/payments/cod/"+created.ID.String(), userToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		confirmed := DecodeData[model.Payment](t, w)
		assert.Equal(t, model.PaymentStatusCompleted, confirmed.Status)
		assert.NotNil(t, confirmed.PaymentDate)

		updated := getOrder(t, server, userToken, order.ID)
		assert.Equal(t, model.PaymentStatusCompleted, updated.PaymentStatus)
		assert.Equal(t, model.OrderStatusProcessing, updated.Status)

		// A second payment for a paid order is refused.
		w = server.Do(t, http.MethodPost, "/api/payments", userToken, model.PaymentRequest{
			OrderID: order.ID,
			Method:  model.MethodCashOnDelivery,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("cancelling a pending bank transfer cancels the order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		_, adminToken := server.CreateUser(t, model.RoleAdmin)
		_, userToken := server.CreateUser(t, model.RoleUser)

		book := createBook(t, server, adminToken, "isbn-bank", "120000", 5)
		order := placeOrder(t, server, userToken, book.ID, 1, model.MethodBankTransfer)

		w := server.Do(t, http.MethodPost, "/api/payments", userToken, model.PaymentRequest{
			OrderID:     order.ID,
			Method:      model.MethodBankTransfer,
			BankDetails: &model.BankDetails{BankName: "Vietcombank", AccountNumber: "0011223344"},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		created := DecodeData[model.Payment](t, w)
		assert.Equal(t, model.PaymentStatusPending, created.Status)

		w = server.Do(t, http.MethodPut, "/api/payments/cancel/"+created.ID.String(), userToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, model.PaymentStatusFailed, DecodeData[model.Payment](t, w).Status)

		updated := getOrder(t, server, userToken, order.ID)
		assert.Equal(t, model.OrderStatusCancelled, updated.Status)
		assert.Equal(t, model.PaymentStatusFailed, updated.PaymentStatus)

		// The cancelled order takes no further payments.
		w = server.Do(t, http.MethodPost, "/api/payments", userToken, model.PaymentRequest{
			OrderID:     order.ID,
			Method:      model.MethodBankTransfer,
			BankDetails: &model.BankDetails{BankName: "Vietcombank", AccountNumber: "0011223344"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unregistered method is rejected without creating a payment", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		_, adminToken := server.CreateUser(t, model.RoleAdmin)
		_, userToken := server.CreateUser(t, model.RoleUser)

		book := createBook(t, server, adminToken, "isbn-paypal", "90000", 5)
		order := placeOrder(t, server, userToken, book.ID, 1, model.MethodCashOnDelivery)

		w := server.Do(t, http.MethodPost, "/api/payments", userToken, model.PaymentRequest{
			OrderID: order.ID,
			Method:  model.PaymentMethod("paypal"),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), model.ErrCodeUnsupportedMethod)

		w = server.Do(t, http.MethodGet, "/api/payments/order/"+order.ID.String(), userToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Empty(t, DecodeData[[]model.Payment](t, w))
	})

	t.Run("refund of a confirmed bank transfer and admin statistics", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		_, adminToken := server.CreateUser(t, model.RoleAdmin)
		_, userToken := server.CreateUser(t, model.RoleUser)

		book := createBook(t, server, adminToken, "isbn-refund", "60000", 5)
		order := placeOrder(t, server, userToken, book.ID, 1, model.MethodBankTransfer)

		w := server.Do(t, http.MethodPost, "/api/payments", userToken, model.PaymentRequest{
			OrderID:     order.ID,
			Method:      model.MethodBankTransfer,
			BankDetails: &model.BankDetails{BankName: "ACB", AccountNumber: "998877"},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		created := DecodeData[model.Payment](t, w)

		w = server.Do(t, http.MethodPost, "/api/payments/bank-transfer/"+created.ID.String(), userToken,
			model.BankConfirmRequest{ReferenceCode: "FT24050112"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, model.PaymentStatusCompleted, DecodeData[model.Payment](t, w).Status)

		w = server.Do(t, http.MethodPost, "/api/payments/refund/"+created.ID.String(), userToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, model.PaymentStatusRefunded, DecodeData[model.Payment](t, w).Status)
		assert.Equal(t, model.OrderStatusCancelled, getOrder(t, server, userToken, order.ID).Status)

		w = server.Do(t, http.MethodGet, "/api/payments/stats", userToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = server.Do(t, http.MethodGet, "/api/payments/stats", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		stats := DecodeData[model.PaymentStats](t, w)
		require.NotEmpty(t, stats.ByStatus)
		assert.Equal(t, "refunded", stats.ByStatus[0].Key)
	})

	t.Run("payment methods are public", func(t *testing.T) {
		w := server.Do(t, http.MethodGet, "/api/payments/methods", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		methods := DecodeData[[]model.MethodInfo](t, w)
		require.Len(t, methods, 2)
		assert.Equal(t, model.MethodCashOnDelivery, methods[0].Code)
		assert.Equal(t, model.MethodBankTransfer, methods[1].Code)
	})
}

func TestAuthAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := SetupTestServer(t, testDB, SetupTestRedis(t))
	CleanupDB(t, testDB.Pool)

	w := server.Do(t, http.MethodPost, "/api/auth/register", "", model.RegisterRequest{
		Name:     "Ann",
		Email:    "Ann@Example.com",
		Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	registered := DecodeData[model.AuthResponse](t, w)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "ann@example.com", registered.User.Email)

	w = server.Do(t, http.MethodPost, "/api/auth/register", "", model.RegisterRequest{
		Name:     "Ann again",
		Email:    "ann@example.com",
		Password: "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = server.Do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Email: "ann@example.com", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = server.Do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Email: "ann@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := DecodeData[model.AuthResponse](t, w).Token

	w = server.Do(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Ann", DecodeData[model.User](t, w).Name)

	other, _ := server.CreateUser(t, model.RoleUser)
	w = server.Do(t, http.MethodPut, "/api/auth/profile", token, map[string]string{"email": other.Email})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = server.Do(t, http.MethodPut, "/api/auth/profile", token, map[string]string{"name": "Ann B", "email": "Ann.B@Example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := DecodeData[model.User](t, w)
	assert.Equal(t, "Ann B", updated.Name)
	assert.Equal(t, "ann.b@example.com", updated.Email)

	w = server.Do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Email: "ann.b@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
