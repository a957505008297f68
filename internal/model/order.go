package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsValid reports whether s is one of the five order states.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order represents a placed order with snapshotted prices.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"userId" db:"user_id"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount" db:"total_amount"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Status          OrderStatus     `json:"status" db:"status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	BookID    uuid.UUID       `json:"bookId" db:"book_id"`
	Title     string          `json:"title" db:"title"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"price" db:"unit_price"`
}

// Subtotal returns UnitPrice × Quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SumItems returns the total of the item subtotals.
func SumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ApplyPaymentOutcome records a payment result on the order. A completed
// payment moves a pending order to processing; failed or refunded cancels it.
func (o *Order) ApplyPaymentOutcome(status PaymentStatus) {
	o.PaymentStatus = status
	switch status {
	case PaymentStatusCompleted:
		if o.Status == OrderStatusPending {
			o.Status = OrderStatusProcessing
		}
	case PaymentStatusFailed, PaymentStatusRefunded:
		o.Status = OrderStatusCancelled
	}
}

// ShippingAddress is where the order is delivered.
type ShippingAddress struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Country string `json:"country" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddress    `json:"shippingAddress"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod" validate:"required"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	BookID   uuid.UUID `json:"book" validate:"required"`
	Quantity int       `json:"quantity" validate:"min=1"`
}

// CartOrderRequest is the payload for POST /api/orders/from-cart.
type CartOrderRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" validate:"required"`
}

// OrderStatusRequest is the payload for PATCH /api/orders/{id}/status.
type OrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}

// OrderPage is one page of an order listing.
type OrderPage struct {
	Orders      []Order `json:"orders"`
	CurrentPage int     `json:"currentPage"`
	TotalPages  int     `json:"totalPages"`
	TotalOrders int     `json:"totalOrders"`
}
