package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is a user's staging area for a future order. Exactly one per user.
type Cart struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Items       []CartItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CartItem is one book line; Price is captured net of discount when first added.
type CartItem struct {
	ID       uuid.UUID       `json:"id"`
	BookID   uuid.UUID       `json:"bookId"`
	Title    string          `json:"title"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// NewCart returns an empty cart for the user.
func NewCart(userID uuid.UUID, now time.Time) *Cart {
	return &Cart{
		ID:          uuid.New(),
		UserID:      userID,
		Items:       []CartItem{},
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Recalculate recomputes TotalAmount from the items.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	c.TotalAmount = total
}

// FindByBook returns the index of the line for bookID, or -1.
func (c *Cart) FindByBook(bookID uuid.UUID) int {
	for i, item := range c.Items {
		if item.BookID == bookID {
			return i
		}
	}
	return -1
}

// FindItem returns the index of the line with itemID, or -1.
func (c *Cart) FindItem(itemID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

// Clear empties the cart and resets the total.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.TotalAmount = decimal.Zero
}

// AddToCartRequest is the payload for POST /api/cart/add.
type AddToCartRequest struct {
	BookID   uuid.UUID `json:"bookId" validate:"required"`
	Quantity int       `json:"quantity" validate:"omitempty,min=1"`
}

// UpdateCartItemRequest is the payload for PUT /api/cart/update.
type UpdateCartItemRequest struct {
	ItemID   uuid.UUID `json:"itemId" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}
