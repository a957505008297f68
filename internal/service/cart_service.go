package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"bookstore/internal/model"
	"bookstore/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo repository.CartRepository
	bookRepo repository.BookRepository
	logger   zerolog.Logger
	now      func() time.Time
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	bookRepo repository.BookRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo: cartRepo,
		bookRepo: bookRepo,
		logger:   logger.With().Str("service", "cart").Logger(),
		now:      time.Now,
	}
}

// Get returns the user's cart, creating it on first use.
func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart != nil {
		return cart, nil
	}

	cart = model.NewCart(userID, s.now().UTC())
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("user_id", userID.String()).Msg("cart created")
	return cart, nil
}

// Add puts a book in the cart, merging with an existing line for the same book.
func (s *cartService) Add(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.Cart, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, model.ErrInvalidQuantity
	}

	book, err := s.book(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindByBook(book.ID)
	merged := quantity
	if idx >= 0 {
		merged += cart.Items[idx].Quantity
	}
	if merged > book.Stock {
		s.logger.Warn().
			Str("user_id", userID.String()).
			Str("book_id", book.ID.String()).
			Int("requested", merged).
			Int("available", book.Stock).
			Msg("cart quantity exceeds stock")
		return nil, model.OutOfStock(book.Title, book.Stock)
	}

	if idx >= 0 {
		cart.Items[idx].Quantity = merged
	} else {
		cart.Items = append(cart.Items, model.CartItem{
			ID:       uuid.New(),
			BookID:   book.ID,
			Title:    book.Title,
			Quantity: quantity,
			Price:    book.EffectivePrice(),
		})
	}

	if err := s.commit(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("book_id", book.ID.String()).
		Int("quantity", merged).
		Msg("book added to cart")
	return cart, nil
}

// UpdateItem sets the quantity of a cart line after re-checking stock.
func (s *cartService) UpdateItem(ctx context.Context, userID uuid.UUID, req *model.UpdateCartItemRequest) (*model.Cart, error) {
	if req.Quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItem(req.ItemID)
	if idx < 0 {
		return nil, model.ErrCartItemNotFound
	}

	book, err := s.book(ctx, cart.Items[idx].BookID)
	if err != nil {
		return nil, err
	}
	if req.Quantity > book.Stock {
		return nil, model.OutOfStock(book.Title, book.Stock)
	}

	cart.Items[idx].Quantity = req.Quantity
	if err := s.commit(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("item_id", req.ItemID.String()).
		Int("quantity", req.Quantity).
		Msg("cart item updated")
	return cart, nil
}

// RemoveItem deletes a cart line.
func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*model.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItem(itemID)
	if idx < 0 {
		return nil, model.ErrCartItemNotFound
	}

	cart.Items = slices.Delete(cart.Items, idx, idx+1)
	if err := s.commit(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("item_id", itemID.String()).
		Msg("cart item removed")
	return cart, nil
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.Clear()
	if err := s.commit(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", userID.String()).Msg("cart cleared")
	return cart, nil
}

func (s *cartService) book(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("book_id", id.String()).Msg("failed to get book")
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	if book == nil {
		return nil, model.ErrBookNotFound
	}
	return book, nil
}

// commit recalculates the total and stores the cart.
func (s *cartService) commit(ctx context.Context, cart *model.Cart) error {
	cart.Recalculate()
	cart.UpdatedAt = s.now().UTC()
	return s.save(ctx, cart)
}

func (s *cartService) save(ctx context.Context, cart *model.Cart) error {
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		s.logger.Error().Err(err).Str("user_id", cart.UserID.String()).Msg("failed to save cart")
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
