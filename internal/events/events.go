// Package events publishes payment lifecycle notifications.
package events

import (
	"context"
	"fmt"
	"time"

	"bookstore/internal/config"
	"bookstore/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Event types.
const (
	TypePaymentCreated   = "payment.created"
	TypePaymentCompleted = "payment.completed"
	TypePaymentFailed    = "payment.failed"
	TypePaymentRefunded  = "payment.refunded"
)

// PaymentEvent describes a payment state change.
type PaymentEvent struct {
	Type       string              `json:"type"`
	PaymentID  uuid.UUID           `json:"paymentId"`
	OrderID    uuid.UUID           `json:"orderId"`
	UserID     uuid.UUID           `json:"userId"`
	Method     model.PaymentMethod `json:"method"`
	Status     model.PaymentStatus `json:"status"`
	Amount     decimal.Decimal     `json:"amount"`
	Currency   string              `json:"currency"`
	OccurredAt time.Time           `json:"occurredAt"`
}

// TypeFor returns the event type announcing a payment entering status.
func TypeFor(status model.PaymentStatus) string {
	switch status {
	case model.PaymentStatusCompleted:
		return TypePaymentCompleted
	case model.PaymentStatusFailed:
		return TypePaymentFailed
	case model.PaymentStatusRefunded:
		return TypePaymentRefunded
	default:
		return TypePaymentCreated
	}
}

// NewPaymentEvent snapshots a payment into an event of the type matching its status.
func NewPaymentEvent(p *model.Payment, now time.Time) PaymentEvent {
	return PaymentEvent{
		Type:       TypeFor(p.Status),
		PaymentID:  p.ID,
		OrderID:    p.OrderID,
		UserID:     p.UserID,
		Method:     p.Method,
		Status:     p.Status,
		Amount:     p.Amount,
		Currency:   p.Currency,
		OccurredAt: now,
	}
}

// Publisher delivers payment events to a downstream system.
type Publisher interface {
	Publish(ctx context.Context, event PaymentEvent) error
	Close() error
}

// New builds the publisher selected by cfg.Backend.
func New(ctx context.Context, cfg config.EventsConfig, logger zerolog.Logger) (Publisher, error) {
	switch cfg.Backend {
	case "", "none":
		return NewLogPublisher(logger), nil
	case "sns":
		return NewSNSPublisher(ctx, cfg.Region, cfg.SNSTopicARN, logger)
	case "kafka":
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// logPublisher only logs events. Used when no broker is configured.
type logPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a publisher that writes events to the log.
func NewLogPublisher(logger zerolog.Logger) Publisher {
	return &logPublisher{logger: logger.With().Str("component", "events").Logger()}
}

func (p *logPublisher) Publish(ctx context.Context, event PaymentEvent) error {
	p.logger.Debug().
		Str("type", event.Type).
		Str("payment_id", event.PaymentID.String()).
		Str("order_id", event.OrderID.String()).
		Msg("payment event")
	return nil
}

func (p *logPublisher) Close() error { return nil }
