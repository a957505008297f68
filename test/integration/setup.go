package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookstore/internal/auth"
	"bookstore/internal/database"
	"bookstore/internal/events"
	"bookstore/internal/handler"
	"bookstore/internal/model"
	"bookstore/internal/payment"
	"bookstore/internal/repository"
	"bookstore/internal/router"
	"bookstore/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the application schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SetupTestRedis starts a Redis container for the cart store.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("failed to ping redis: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return client
}

// TestServer is the full HTTP stack wired against the test containers.
type TestServer struct {
	Handler  http.Handler
	Tokens   *auth.TokenManager
	Users    repository.UserRepository
	Payments service.PaymentService
	Pool     *pgxpool.Pool
}

// SetupTestServer wires repositories, services and handlers the way the API
// binary does, without the Ethereum provider.
func SetupTestServer(t *testing.T, testDB *TestDB, redisClient *redis.Client) *TestServer {
	t.Helper()

	logger := zerolog.Nop()

	bookRepo := repository.NewBookRepository(testDB.Pool, logger)
	categoryRepo := repository.NewCategoryRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	paymentRepo := repository.NewPaymentRepository(testDB.Pool, logger)
	userRepo := repository.NewUserRepository(testDB.Pool, logger)
	cartRepo := repository.NewCartRepository(redisClient, time.Hour, logger)

	registry, err := payment.NewRegistry(
		payment.NewCashOnDelivery(logger),
		payment.NewBankTransfer(false, logger),
	)
	require.NoError(t, err)

	tokens := auth.NewTokenManager("integration-secret", time.Hour)

	orderService := service.NewOrderService(orderRepo, bookRepo, cartRepo, registry, logger)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, orderService, registry,
		events.NewLogPublisher(logger), model.DefaultCurrency, logger)

	handlers := router.Handlers{
		Books:      handler.NewBookHandler(service.NewBookService(bookRepo, logger), logger),
		Categories: handler.NewCategoryHandler(service.NewCategoryService(categoryRepo, bookRepo, logger), logger),
		Cart:       handler.NewCartHandler(service.NewCartService(cartRepo, bookRepo, logger), logger),
		Orders:     handler.NewOrderHandler(orderService, logger),
		Payments:   handler.NewPaymentHandler(paymentService, logger),
		Auth:       handler.NewAuthHandler(service.NewAuthService(userRepo, tokens, logger), logger),
	}

	return &TestServer{
		Handler:  router.New(handlers, tokens, nil, logger),
		Tokens:   tokens,
		Users:    userRepo,
		Payments: paymentService,
		Pool:     testDB.Pool,
	}
}

// CreateUser inserts an account with the given role and returns a bearer token for it.
func (s *TestServer) CreateUser(t *testing.T, role model.Role) (*model.User, string) {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Name:         string(role) + " account",
		Email:        fmt.Sprintf("%s-%s@example.com", role, uuid.NewString()[:8]),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users.Create(context.Background(), user))

	token, err := s.Tokens.Issue(user)
	require.NoError(t, err)
	return user, token
}

// Do sends a JSON request through the router.
func (s *TestServer) Do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()

	s.Handler.ServeHTTP(w, req)
	return w
}

// DecodeData unwraps the success envelope of a response.
func DecodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var envelope struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.True(t, envelope.Success, w.Body.String())
	return envelope.Data
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"payments", "order_items", "orders", "books", "categories", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
