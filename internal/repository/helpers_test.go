package repository

import (
	"context"
	"testing"
	"time"

	"bookstore/internal/database"
	"bookstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the application schema applied.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// setupTestRedis starts a Redis testcontainer and returns a connected client.
func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	require.NoError(t, client.Ping(ctx).Err())

	cleanup := func() {
		_ = client.Close()
		_ = container.Terminate(ctx)
	}

	return client, cleanup
}

// seedUser inserts a user and returns it.
func seedUser(t *testing.T, pool *pgxpool.Pool, email string) *model.User {
	now := time.Now().UTC()
	u := &model.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hash",
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, NewUserRepository(pool, zerolog.Nop()).Create(context.Background(), u))
	return u
}

// newTestBook builds a book with sensible defaults.
func newTestBook(title, category string, price int64, stock int) *model.Book {
	now := time.Now().UTC()
	return &model.Book{
		ID:            uuid.New(),
		Title:         title,
		Author:        "Author",
		Description:   "A book about " + title,
		Price:         decimal.NewFromInt(price),
		Discount:      decimal.Zero,
		CoverImage:    "cover.jpg",
		Category:      category,
		Stock:         stock,
		ISBN:          uuid.NewString(),
		PublishedYear: 2020,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// seedBooks inserts books into the database.
func seedBooks(t *testing.T, pool *pgxpool.Pool, books ...*model.Book) {
	repo := NewBookRepository(pool, zerolog.Nop())
	for _, b := range books {
		require.NoError(t, repo.Create(context.Background(), b))
	}
}

// seedOrder inserts a pending order with one line for the user.
func seedOrder(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, book *model.Book, quantity int) *model.Order {
	ctx := context.Background()
	repo := NewOrderRepository(pool, zerolog.Nop())

	now := time.Now().UTC()
	order := &model.Order{
		ID:     uuid.New(),
		UserID: userID,
		ShippingAddress: model.ShippingAddress{
			Street: "1 Main St", City: "Hanoi", State: "HN", Country: "VN", ZipCode: "100000",
		},
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: model.MethodCashOnDelivery,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	order.Items = []model.OrderItem{{
		ID:        uuid.New(),
		OrderID:   order.ID,
		BookID:    book.ID,
		Title:     book.Title,
		Quantity:  quantity,
		UnitPrice: book.EffectivePrice(),
	}}
	order.TotalAmount = model.SumItems(order.Items)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateOrder(ctx, tx, order))
	require.NoError(t, repo.CreateOrderItems(ctx, tx, order.Items))
	require.NoError(t, tx.Commit(ctx))

	return order
}
