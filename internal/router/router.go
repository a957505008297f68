package router

import (
	"net/http"

	"bookstore/internal/handler"
	"bookstore/internal/middleware"
	"bookstore/internal/model"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Books      *handler.BookHandler
	Categories *handler.CategoryHandler
	Cart       *handler.CartHandler
	Orders     *handler.OrderHandler
	Payments   *handler.PaymentHandler
	Auth       *handler.AuthHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// A nil limiter disables rate limiting.
func New(
	h Handlers,
	tokens middleware.TokenParser,
	limiter *middleware.RateLimiter,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	authed := func(f http.HandlerFunc) http.Handler {
		return middleware.Authenticate(tokens, logger)(f)
	}
	admin := func(f http.HandlerFunc) http.Handler {
		return middleware.Authenticate(tokens, logger)(middleware.RequireAdmin(logger)(f))
	}

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Accounts
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.Handle("GET /api/auth/profile", authed(h.Auth.Profile))
	mux.Handle("PUT /api/auth/profile", authed(h.Auth.UpdateProfile))

	// Books
	mux.HandleFunc("GET /api/books", h.Books.List)
	mux.Handle("POST /api/books", admin(h.Books.Create))
	mux.HandleFunc("GET /api/books/search", h.Books.Search)
	mux.HandleFunc("GET /api/books/categories", h.Books.Categories)
	for _, flag := range []model.BookFlag{model.FlagFeatured, model.FlagBestSeller, model.FlagNewRelease, model.FlagPopular} {
		mux.HandleFunc("GET /api/books/"+string(flag), h.Books.Flagged(flag))
	}
	mux.HandleFunc("GET /api/books/category/{category}", h.Books.ByCategory)
	mux.HandleFunc("GET /api/books/{id}", h.Books.GetByID)
	mux.Handle("PUT /api/books/{id}", admin(h.Books.Update))
	mux.Handle("DELETE /api/books/{id}", admin(h.Books.Delete))

	// Categories
	mux.HandleFunc("GET /api/categories", h.Categories.List)
	mux.Handle("POST /api/categories", admin(h.Categories.Create))
	mux.HandleFunc("GET /api/categories/main", h.Categories.ListMain)
	mux.HandleFunc("GET /api/categories/popular", h.Categories.Popular)
	mux.HandleFunc("GET /api/categories/sub/{parentId}", h.Categories.ListSub)
	mux.HandleFunc("GET /api/categories/slug/{slug}", h.Categories.GetBySlug)
	mux.HandleFunc("GET /api/categories/slug/{slug}/books", h.Categories.Books)
	mux.HandleFunc("GET /api/categories/{id}", h.Categories.GetByID)
	mux.Handle("PUT /api/categories/{id}", admin(h.Categories.Update))
	mux.Handle("DELETE /api/categories/{id}", admin(h.Categories.Delete))

	// Cart
	mux.Handle("GET /api/cart", authed(h.Cart.Get))
	mux.Handle("POST /api/cart/add", authed(h.Cart.Add))
	mux.Handle("PUT /api/cart/update", authed(h.Cart.Update))
	mux.Handle("DELETE /api/cart/remove/{itemId}", authed(h.Cart.Remove))
	mux.Handle("DELETE /api/cart/clear", authed(h.Cart.Clear))

	// Orders
	mux.Handle("POST /api/orders", authed(h.Orders.Create))
	mux.Handle("POST /api/orders/from-cart", authed(h.Orders.CreateFromCart))
	mux.Handle("GET /api/orders", admin(h.Orders.List))
	mux.Handle("GET /api/orders/my-orders", authed(h.Orders.MyOrders))
	mux.Handle("GET /api/orders/{id}", authed(h.Orders.GetByID))
	mux.Handle("PATCH /api/orders/{id}/status", admin(h.Orders.UpdateStatus))

	// Payments
	mux.HandleFunc("GET /api/payments/methods", h.Payments.Methods)
	mux.Handle("GET /api/payments/stats", admin(h.Payments.Stats))
	mux.Handle("POST /api/payments", authed(h.Payments.Create))
	mux.Handle("POST /api/payments/ethereum", authed(h.Payments.CreateEthereum))
	mux.Handle("POST /api/payments/cod/{paymentId}", authed(h.Payments.ConfirmCashOnDelivery))
	mux.Handle("POST /api/payments/bank-transfer/{paymentId}", authed(h.Payments.ConfirmBankTransfer))
	mux.Handle("POST /api/payments/ethereum/{paymentId}", authed(h.Payments.ConfirmEthereum))
	mux.Handle("POST /api/payments/refund/{paymentId}", authed(h.Payments.Refund))
	mux.Handle("PUT /api/payments/cancel/{paymentId}", authed(h.Payments.Cancel))
	mux.Handle("GET /api/payments/user/{userId}", authed(h.Payments.ListByUser))
	mux.Handle("GET /api/payments/order/{orderId}", authed(h.Payments.ListByOrder))
	mux.Handle("GET /api/payments/{paymentId}", authed(h.Payments.GetByID))
	mux.Handle("PATCH /api/payments/{paymentId}/status", admin(h.Payments.UpdateStatus))

	// Apply middleware in order: Recovery -> Logging -> CORS -> RateLimit
	var handler http.Handler = mux
	if limiter != nil {
		handler = middleware.RateLimit(limiter, logger)(handler)
	}
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
