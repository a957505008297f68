package repository

import (
	"context"
	"time"

	"bookstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CategoryBookCount is the number of books filed under a category name.
type CategoryBookCount struct {
	Category string
	Count    int
}

// BookRepository defines the interface for catalogue data access operations.
type BookRepository interface {
	// Create inserts a new book. A duplicate ISBN is reported as invalid input.
	Create(ctx context.Context, book *model.Book) error

	// GetByID retrieves a single book by its ID. Returns (nil, nil) when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)

	// GetByIDs retrieves multiple books by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Book, error)

	// Update overwrites the mutable fields of an existing book.
	Update(ctx context.Context, book *model.Book) error

	// Delete removes a book, reporting whether it existed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// List returns a page of books, newest first, with the total count.
	List(ctx context.Context, limit, offset int) ([]model.Book, int, error)

	// ListByCategory returns a page of books filed under a category name.
	ListByCategory(ctx context.Context, category string, limit, offset int) ([]model.Book, int, error)

	// Search returns books matching the filter, newest first.
	Search(ctx context.Context, filter model.BookFilter) ([]model.Book, error)

	// ListFlagged returns books carrying a curated-list flag.
	ListFlagged(ctx context.Context, flag model.BookFlag, limit int) ([]model.Book, error)

	// ListCategoryNames returns the distinct category names used by books.
	ListCategoryNames(ctx context.Context) ([]string, error)

	// CountByCategory returns book counts per category name, largest first.
	CountByCategory(ctx context.Context, limit int) ([]CategoryBookCount, error)

	// DecrementStock atomically removes quantity units of stock and adds them to
	// the sales counter, only if enough stock remains. Returns false when it did not.
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) (bool, error)
}

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)

	// FindByNameOrSlug returns any category already using the name or slug.
	FindByNameOrSlug(ctx context.Context, name, slug string) (*model.Category, error)

	// ListActive returns active categories ordered by display order then name.
	ListActive(ctx context.Context) ([]model.Category, error)

	// ListMain returns active top-level categories.
	ListMain(ctx context.Context) ([]model.Category, error)

	// ListSub returns active children of a category.
	ListSub(ctx context.Context, parentID uuid.UUID) ([]model.Category, error)

	// GetByNames returns the categories with the given names.
	GetByNames(ctx context.Context, names []string) ([]model.Category, error)

	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// CountChildren returns how many categories name id as their parent.
	CountChildren(ctx context.Context, id uuid.UUID) (int, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// List returns a page of all orders, newest first, with the total count.
	List(ctx context.Context, limit, offset int) ([]model.Order, int, error)

	// UpdateState persists status and payment status of an order.
	UpdateState(ctx context.Context, order *model.Order) error
}

// PaymentRepository defines the interface for payment data access operations.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)

	// Update persists the payment only if its stored status is still from.
	// Returns false when another writer moved the payment first.
	Update(ctx context.Context, payment *model.Payment, from model.PaymentStatus) (bool, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error)

	// HasPending reports whether the order has a payment awaiting settlement.
	HasPending(ctx context.Context, orderID uuid.UUID) (bool, error)

	// ListStalePending returns pending payments of a method created before the cutoff.
	ListStalePending(ctx context.Context, method model.PaymentMethod, before time.Time, limit int) ([]model.Payment, error)

	// Stats aggregates payment counts and amounts by method and by status.
	Stats(ctx context.Context) (*model.PaymentStats, error)
}

// UserRepository defines the interface for account data access operations.
type UserRepository interface {
	// Create inserts a user. A duplicate email is reported as invalid input.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// Update persists name and email. A duplicate email is reported as invalid input.
	Update(ctx context.Context, user *model.User) error
}

// CartRepository defines the interface for cart storage.
type CartRepository interface {
	// Get returns the user's cart, or (nil, nil) if none has been stored.
	Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// Save stores the cart, refreshing its expiry.
	Save(ctx context.Context, cart *model.Cart) error
}
