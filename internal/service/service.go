package service

import (
	"context"
	"time"

	"bookstore/internal/model"

	"github.com/google/uuid"
)

// BookService defines operations for catalogue management.
type BookService interface {
	// Create adds a book to the catalogue.
	Create(ctx context.Context, req *model.BookRequest) (*model.Book, error)

	// GetByID retrieves a single book by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)

	// Update applies a partial update to a book.
	Update(ctx context.Context, id uuid.UUID, upd *model.BookUpdate) (*model.Book, error)

	// Delete removes a book.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns one page of the catalogue, newest first.
	List(ctx context.Context, page, limit int) (*model.BookPage, error)

	// ListByCategory returns one page of the books filed under a category name.
	ListByCategory(ctx context.Context, category string, page, limit int) (*model.BookPage, error)

	// Search filters the catalogue by text, category and price range.
	Search(ctx context.Context, filter model.BookFilter) ([]model.Book, error)

	// Categories returns the distinct category names books are filed under.
	Categories(ctx context.Context) ([]string, error)

	// ListFlagged returns one of the curated lists.
	ListFlagged(ctx context.Context, flag model.BookFlag, limit int) ([]model.Book, error)
}

// CategoryService defines operations for category management.
type CategoryService interface {
	Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	ListMain(ctx context.Context) ([]model.Category, error)
	ListSub(ctx context.Context, parentID uuid.UUID) ([]model.Category, error)
	Update(ctx context.Context, id uuid.UUID, upd *model.CategoryUpdate) (*model.Category, error)

	// Delete removes a category that has no subcategories.
	Delete(ctx context.Context, id uuid.UUID) error

	// Books returns a page of the books filed under the category with slug.
	Books(ctx context.Context, slug string, page, limit int) (*model.CategoryBooks, error)

	// Popular returns the categories with the most books.
	Popular(ctx context.Context, limit int) ([]model.CategoryCount, error)
}

// CartService defines operations on a user's cart.
type CartService interface {
	// Get returns the user's cart, creating an empty one on first use.
	Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// Add puts a book in the cart, merging with an existing line for the same book.
	Add(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.Cart, error)

	// UpdateItem sets the quantity of a cart line.
	UpdateItem(ctx context.Context, userID uuid.UUID, req *model.UpdateCartItemRequest) (*model.Cart, error)

	// RemoveItem deletes a cart line.
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*model.Cart, error)

	// Clear empties the cart.
	Clear(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder places an order, taking the ordered units out of stock atomically.
	CreateOrder(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.Order, error)

	// CreateOrderFromCart places an order for the cart contents and empties the cart.
	CreateOrderFromCart(ctx context.Context, userID uuid.UUID, req *model.CartOrderRequest) (*model.Order, error)

	// GetByID retrieves an order visible to the caller.
	GetByID(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Order, error)

	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// List returns one page of all orders.
	List(ctx context.Context, page, limit int) (*model.OrderPage, error)

	// UpdateStatus sets the fulfilment status of an order.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)

	// ApplyPaymentOutcome records a payment result on the order.
	ApplyPaymentOutcome(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.Order, error)
}

// PaymentService defines the payment orchestration operations.
type PaymentService interface {
	// Create opens a payment for an order with the requested method.
	Create(ctx context.Context, caller model.Principal, req *model.PaymentRequest) (*model.Payment, error)

	// CreateEthereum opens an Ethereum payment and returns the wallet checkout data.
	CreateEthereum(ctx context.Context, caller model.Principal, req *model.EthereumPaymentRequest) (*model.EthereumCheckout, error)

	// ConfirmCashOnDelivery records delivery and collection of a cash payment.
	ConfirmCashOnDelivery(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Payment, error)

	// ConfirmBankTransfer completes a pending bank transfer.
	ConfirmBankTransfer(ctx context.Context, caller model.Principal, id uuid.UUID, req *model.BankConfirmRequest) (*model.Payment, error)

	// ConfirmEthereum checks an on-chain transaction and settles the payment.
	ConfirmEthereum(ctx context.Context, caller model.Principal, id uuid.UUID, req *model.EthereumConfirmRequest) (*model.Payment, error)

	// Cancel fails a pending payment or refunds a completed one.
	Cancel(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Payment, error)

	// Refund refunds a completed payment.
	Refund(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Payment, error)

	GetByID(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Payment, error)
	ListByUser(ctx context.Context, caller model.Principal, userID uuid.UUID) ([]model.Payment, error)
	ListByOrder(ctx context.Context, caller model.Principal, orderID uuid.UUID) ([]model.Payment, error)

	// UpdateStatus moves a payment along the state machine on an operator's behalf.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.Payment, error)

	// Stats aggregates payments by method and status.
	Stats(ctx context.Context) (*model.PaymentStats, error)

	// Methods lists the available payment methods.
	Methods() []model.MethodInfo

	// ExpireStale fails pending payments of a method created before cutoff.
	// It returns how many payments were expired.
	ExpireStale(ctx context.Context, method model.PaymentMethod, cutoff time.Time, limit int) (int, error)
}

// AuthService defines account operations.
type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	Profile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.ProfileUpdateRequest) (*model.User, error)
}
