package repository

import (
	"context"
	"errors"
	"fmt"

	"bookstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, user_id, total_amount, shipping_address, status, payment_status,
	payment_method, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.TotalAmount,
		&o.ShippingAddress,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.TotalAmount,
		order.ShippingAddress,
		order.Status,
		order.PaymentStatus,
		order.PaymentMethod,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
// Items are read back in the order given here.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, book_id, title, quantity, unit_price, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for i, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.BookID, item.Title, item.Quantity, item.UnitPrice, i)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("book_id", items[i].BookID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	orders := []model.Order{*order}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

// ListByUser returns a user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query user orders")
		return nil, fmt.Errorf("failed to query user orders: %w", err)
	}

	orders, err := r.collect(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// List returns a page of all orders, newest first, with the total count.
func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]model.Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("failed to query orders")
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}

	orders, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateState persists status and payment status of an order.
func (r *orderRepository) UpdateState(ctx context.Context, order *model.Order) error {
	query := `
		UPDATE orders
		SET status = $2, payment_status = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, order.ID, order.Status, order.PaymentStatus, order.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to update order state")
		return fmt.Errorf("failed to update order state: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("status", string(order.Status)).
		Str("payment_status", string(order.PaymentStatus)).
		Msg("order state updated")

	return nil
}

func (r *orderRepository) collect(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// attachItems loads the line items of every order in one query.
func (r *orderRepository) attachItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []model.OrderItem{}
	}

	query := `
		SELECT id, order_id, book_id, title, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position, id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("orders", len(ids)).Msg("failed to query order items")
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.BookID, &item.Title, &item.Quantity, &item.UnitPrice)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return fmt.Errorf("error iterating order items: %w", err)
	}

	return nil
}
