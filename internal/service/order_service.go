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

// MethodRegistry reports which payment methods can be chosen at checkout.
type MethodRegistry interface {
	Supports(method model.PaymentMethod) bool
}

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	bookRepo  repository.BookRepository
	cartRepo  repository.CartRepository
	methods   MethodRegistry
	logger    zerolog.Logger
	now       func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	bookRepo repository.BookRepository,
	cartRepo repository.CartRepository,
	methods MethodRegistry,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		cartRepo:  cartRepo,
		methods:   methods,
		logger:    logger.With().Str("service", "order").Logger(),
		now:       time.Now,
	}
}

// orderLine is one requested book with its merged quantity.
type orderLine struct {
	bookID   uuid.UUID
	quantity int
}

// CreateOrder places an order for the requested books.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	lines := make([]orderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, orderLine{bookID: item.BookID, quantity: item.Quantity})
	}

	return s.placeOrder(ctx, userID, lines, req.ShippingAddress, req.PaymentMethod)
}

// CreateOrderFromCart places an order for everything in the user's cart and then empties it.
func (s *orderService) CreateOrderFromCart(ctx context.Context, userID uuid.UUID, req *model.CartOrderRequest) (*model.Order, error) {
	if req == nil {
		return nil, fmt.Errorf("order request is nil")
	}
	if !s.methods.Supports(req.PaymentMethod) {
		return nil, model.ErrUnsupportedMethod
	}

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, model.ErrEmptyCart
	}

	lines := make([]orderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, orderLine{bookID: item.BookID, quantity: item.Quantity})
	}

	order, err := s.placeOrder(ctx, userID, lines, req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	// The order stands even if the cart cannot be emptied.
	cart.Clear()
	cart.UpdatedAt = s.now().UTC()
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("order_id", order.ID.String()).
			Msg("failed to clear cart after checkout")
	}

	return order, nil
}

// placeOrder snapshots prices and decrements stock for every line in one transaction.
func (s *orderService) placeOrder(
	ctx context.Context,
	userID uuid.UUID,
	lines []orderLine,
	address model.ShippingAddress,
	method model.PaymentMethod,
) (*model.Order, error) {
	lines = mergeLines(lines)

	ids := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		ids[i] = line.bookID
	}

	books, err := s.bookRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("book_count", len(ids)).Msg("failed to load books")
		return nil, fmt.Errorf("failed to load books: %w", err)
	}

	byID := make(map[uuid.UUID]model.Book, len(books))
	for _, book := range books {
		byID[book.ID] = book
	}

	now := s.now().UTC()
	order := &model.Order{
		ID:              uuid.New(),
		UserID:          userID,
		ShippingAddress: address,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		PaymentMethod:   method,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	order.Items = make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		book, ok := byID[line.bookID]
		if !ok {
			s.logger.Warn().Str("book_id", line.bookID.String()).Msg("ordered book does not exist")
			return nil, model.ErrBookNotFound
		}
		if book.Stock < line.quantity {
			return nil, model.OutOfStock(book.Title, book.Stock)
		}
		order.Items = append(order.Items, model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			BookID:    book.ID,
			Title:     book.Title,
			Quantity:  line.quantity,
			UnitPrice: book.EffectivePrice(),
		})
	}
	order.TotalAmount = model.SumItems(order.Items)

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	for _, line := range lockOrder(lines) {
		var ok bool
		ok, err = s.bookRepo.DecrementStock(ctx, tx, line.bookID, line.quantity)
		if err != nil {
			s.logger.Error().Err(err).Str("book_id", line.bookID.String()).Msg("failed to decrement stock")
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}
		if !ok {
			book := byID[line.bookID]
			s.logger.Warn().
				Str("book_id", line.bookID.String()).
				Int("requested", line.quantity).
				Msg("stock exhausted during checkout")
			err = model.OutOfStock(book.Title, book.Stock)
			return nil, err
		}
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(order.Items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID.String()).
		Int("item_count", len(order.Items)).
		Str("total", order.TotalAmount.String()).
		Msg("order created successfully")

	return order, nil
}

// GetByID retrieves an order, hiding orders the caller does not own.
func (s *orderService) GetByID(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Order, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(order.UserID) {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("user_id", caller.UserID.String()).
			Msg("order access denied")
		return nil, model.ErrForbidden
	}
	return order, nil
}

// ListByUser returns the user's orders.
func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// List returns one page of all orders.
func (s *orderService) List(ctx context.Context, page, limit int) (*model.OrderPage, error) {
	page, limit = normalisePage(page, limit)

	orders, total, err := s.orderRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}

	return &model.OrderPage{
		Orders:      orders,
		CurrentPage: page,
		TotalPages:  totalPages(total, limit),
		TotalOrders: total,
	}, nil
}

// UpdateStatus sets the fulfilment status of an order.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !status.IsValid() {
		return nil, model.ErrInvalidOrderStatus
	}

	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	order.Status = status
	order.UpdatedAt = s.now().UTC()
	if err := s.orderRepo.UpdateState(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("status", string(status)).
		Msg("order status updated")

	return order, nil
}

// ApplyPaymentOutcome records a payment result on the order.
func (s *orderService) ApplyPaymentOutcome(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.Order, error) {
	if !status.IsValid() {
		return nil, model.ErrInvalidPaymentStatus
	}

	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	order.ApplyPaymentOutcome(status)
	order.UpdatedAt = s.now().UTC()
	if err := s.orderRepo.UpdateState(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to apply payment outcome")
		return nil, fmt.Errorf("failed to apply payment outcome: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("payment_status", string(status)).
		Str("status", string(order.Status)).
		Msg("payment outcome applied to order")

	return order, nil
}

func (s *orderService) find(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return fmt.Errorf("order request is nil")
	}

	if len(req.Items) == 0 {
		return model.InvalidInput("order must contain at least one item")
	}

	for i, item := range req.Items {
		if item.BookID == uuid.Nil {
			return model.InvalidInput(fmt.Sprintf("item %d: book is required", i))
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("book_id", item.BookID.String()).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	if !s.methods.Supports(req.PaymentMethod) {
		return model.ErrUnsupportedMethod
	}

	return nil
}

// mergeLines folds repeated books into one line, keeping first-seen order.
func mergeLines(lines []orderLine) []orderLine {
	merged := make([]orderLine, 0, len(lines))
	index := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if i, ok := index[line.bookID]; ok {
			merged[i].quantity += line.quantity
			continue
		}
		index[line.bookID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

// lockOrder returns the lines sorted by book ID. Concurrent checkouts that
// decrement stock in this order lock rows in the same sequence.
func lockOrder(lines []orderLine) []orderLine {
	sorted := slices.Clone(lines)
	slices.SortFunc(sorted, func(a, b orderLine) int {
		return slices.Compare(a.bookID[:], b.bookID[:])
	})
	return sorted
}
