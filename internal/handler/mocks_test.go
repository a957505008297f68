package handler

import (
	"context"
	"net/http"
	"time"

	"bookstore/internal/middleware"
	"bookstore/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// asUser attaches an authenticated principal to the request.
func asUser(req *http.Request, p model.Principal) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), p))
}

// MockBookService is a mock implementation of BookService.
type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) Create(ctx context.Context, req *model.BookRequest) (*model.Book, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookService) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookService) Update(ctx context.Context, id uuid.UUID, upd *model.BookUpdate) (*model.Book, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookService) List(ctx context.Context, page, limit int) (*model.BookPage, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BookPage), args.Error(1)
}

func (m *MockBookService) ListByCategory(ctx context.Context, category string, page, limit int) (*model.BookPage, error) {
	args := m.Called(ctx, category, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BookPage), args.Error(1)
}

func (m *MockBookService) Search(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Book), args.Error(1)
}

func (m *MockBookService) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBookService) ListFlagged(ctx context.Context, flag model.BookFlag, limit int) ([]model.Book, error) {
	args := m.Called(ctx, flag, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Book), args.Error(1)
}

// MockCategoryService is a mock implementation of CategoryService.
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryService) ListMain(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryService) ListSub(ctx context.Context, parentID uuid.UUID) ([]model.Category, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, id uuid.UUID, upd *model.CategoryUpdate) (*model.Category, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryService) Books(ctx context.Context, slug string, page, limit int) (*model.CategoryBooks, error) {
	args := m.Called(ctx, slug, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CategoryBooks), args.Error(1)
}

func (m *MockCategoryService) Popular(ctx context.Context, limit int) ([]model.CategoryCount, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CategoryCount), args.Error(1)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.Cart, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) UpdateItem(ctx context.Context, userID uuid.UUID, req *model.UpdateCartItemRequest) (*model.Cart, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*model.Cart, error) {
	args := m.Called(ctx, userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.Order, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) CreateOrderFromCart(ctx context.Context, userID uuid.UUID, req *model.CartOrderRequest) (*model.Order, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, page, limit int) (*model.OrderPage, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderPage), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ApplyPaymentOutcome(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockPaymentService is a mock implementation of PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) payment(args mock.Arguments) (*model.Payment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentService) Create(ctx context.Context, caller model.Principal, req *model.PaymentRequest) (*model.Payment, error) {
	return m.payment(m.Called(ctx, caller, req))
}

func (m *MockPaymentService) CreateEthereum(ctx context.Context, caller model.Principal, req *model.EthereumPaymentRequest) (*model.EthereumCheckout, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EthereumCheckout), args.Error(1)
}

func (m *MockPaymentService) ConfirmCashOnDelivery(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Payment, error) {
	return m.payment(m.Called(ctx, caller, id))
}

func (m *MockPaymentService) ConfirmBankTransfer(ctx context.Context, caller model.Principal, id uuid.UUID, req *model.BankConfirmRequest) (*model.Payment, error) {
	return m.payment(m.Called(ctx, caller, id, req))
}

func (m *MockPaymentService) ConfirmEthereum(ctx context.Context, caller model.Principal, id uuid.UUID, req *model.EthereumConfirmRequest) (*model.Payment, error) {
	return m.payment(m.Called(ctx, caller, id, req))
}

func (m *MockPaymentService) Cancel(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Payment, error) {
	return m.payment(m.Called(ctx, caller, id))
}

func (m *MockPaymentService) Refund(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Payment, error) {
	return m.payment(m.Called(ctx, caller, id))
}

func (m *MockPaymentService) GetByID(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Payment, error) {
	return m.payment(m.Called(ctx, caller, id))
}

func (m *MockPaymentService) ListByUser(ctx context.Context, caller model.Principal, userID uuid.UUID) ([]model.Payment, error) {
	args := m.Called(ctx, caller, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *MockPaymentService) ListByOrder(ctx context.Context, caller model.Principal, orderID uuid.UUID) ([]model.Payment, error) {
	args := m.Called(ctx, caller, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *MockPaymentService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.Payment, error) {
	return m.payment(m.Called(ctx, id, status))
}

func (m *MockPaymentService) Stats(ctx context.Context) (*model.PaymentStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentStats), args.Error(1)
}

func (m *MockPaymentService) Methods() []model.MethodInfo {
	args := m.Called()
	return args.Get(0).([]model.MethodInfo)
}

func (m *MockPaymentService) ExpireStale(ctx context.Context, method model.PaymentMethod, cutoff time.Time, limit int) (int, error) {
	args := m.Called(ctx, method, cutoff, limit)
	return args.Int(0), args.Error(1)
}

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.ProfileUpdateRequest) (*model.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
