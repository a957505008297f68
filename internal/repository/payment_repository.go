package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// onePendingPerOrder is the partial unique index allowing one pending payment per order.
const onePendingPerOrder = "idx_payments_one_pending"

const paymentColumns = `id, order_id, user_id, amount, currency, method, status, transaction_id,
	bank_details, ethereum_details, payment_date, created_at, updated_at`

// paymentRepository implements the PaymentRepository interface using PostgreSQL.
type paymentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentRepository {
	return &paymentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment").Logger(),
	}
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.UserID,
		&p.Amount,
		&p.Currency,
		&p.Method,
		&p.Status,
		&p.TransactionID,
		&p.BankDetails,
		&p.EthereumDetails,
		&p.PaymentDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new payment. A second pending payment for the same order
// is rejected with ErrPaymentInProgress.
func (r *paymentRepository) Create(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.OrderID,
		p.UserID,
		p.Amount,
		p.Currency,
		p.Method,
		p.Status,
		p.TransactionID,
		p.BankDetails,
		p.EthereumDetails,
		p.PaymentDate,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if violatesConstraint(err, onePendingPerOrder) {
		r.logger.Warn().
			Str("order_id", p.OrderID.String()).
			Msg("order already has a pending payment")
		return model.ErrPaymentInProgress
	}
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("payment_id", p.ID.String()).
			Str("order_id", p.OrderID.String()).
			Msg("failed to create payment")
		return fmt.Errorf("failed to create payment: %w", err)
	}

	r.logger.Debug().
		Str("payment_id", p.ID.String()).
		Str("transaction_id", p.TransactionID).
		Msg("payment created successfully")

	return nil
}

// GetByID retrieves a payment by its ID.
func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("payment_id", id.String()).Msg("payment not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("payment_id", id.String()).Msg("failed to query payment")
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}

	return p, nil
}

// Update persists the payment only if its stored status is still from.
func (r *paymentRepository) Update(ctx context.Context, p *model.Payment, from model.PaymentStatus) (bool, error) {
	query := `
		UPDATE payments
		SET status = $3, bank_details = $4, ethereum_details = $5, payment_date = $6, updated_at = $7
		WHERE id = $1 AND status = $2
	`

	tag, err := r.pool.Exec(ctx, query,
		p.ID,
		from,
		p.Status,
		p.BankDetails,
		p.EthereumDetails,
		p.PaymentDate,
		p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("payment_id", p.ID.String()).
			Msg("failed to update payment")
		return false, fmt.Errorf("failed to update payment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("payment_id", p.ID.String()).
			Str("expected_status", string(from)).
			Msg("payment status changed concurrently")
		return false, nil
	}

	return true, nil
}

// ListByUser returns a user's payments, newest first.
func (r *paymentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListByOrder returns the payment attempts of an order, newest first.
func (r *paymentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, orderID)
}

// HasPending reports whether the order has a payment awaiting settlement.
func (r *paymentRepository) HasPending(ctx context.Context, orderID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE order_id = $1 AND status = 'pending')`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, orderID).Scan(&exists); err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to check pending payments")
		return false, fmt.Errorf("failed to check pending payments: %w", err)
	}
	return exists, nil
}

// ListStalePending returns pending payments of a method created before the cutoff.
func (r *paymentRepository) ListStalePending(ctx context.Context, method model.PaymentMethod, before time.Time, limit int) ([]model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = 'pending' AND method = $1 AND created_at < $2
		ORDER BY created_at
		LIMIT $3
	`
	return r.list(ctx, query, method, before, limit)
}

// Stats aggregates payment counts and amounts by method and by status.
func (r *paymentRepository) Stats(ctx context.Context) (*model.PaymentStats, error) {
	byMethod, err := r.buckets(ctx, "method")
	if err != nil {
		return nil, err
	}

	byStatus, err := r.buckets(ctx, "status")
	if err != nil {
		return nil, err
	}

	return &model.PaymentStats{ByMethod: byMethod, ByStatus: byStatus}, nil
}

// buckets groups payments by a fixed column name.
func (r *paymentRepository) buckets(ctx context.Context, column string) ([]model.PaymentBucket, error) {
	query := fmt.Sprintf(`
		SELECT %[1]s, COUNT(*), COALESCE(SUM(amount), 0)
		FROM payments
		GROUP BY %[1]s
		ORDER BY %[1]s
	`, column)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Str("group_by", column).Msg("failed to aggregate payments")
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}
	defer rows.Close()

	buckets := []model.PaymentBucket{}
	for rows.Next() {
		var b model.PaymentBucket
		if err := rows.Scan(&b.Key, &b.Count, &b.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan payment bucket: %w", err)
		}
		buckets = append(buckets, b)
	}

	return buckets, rows.Err()
}

func (r *paymentRepository) list(ctx context.Context, query string, args ...any) ([]model.Payment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query payments")
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := []model.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan payment row")
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating payment rows")
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}
