package http_test

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mahdiimanzadeh/storetrack/internal/auth"
	"github.com/mahdiimanzadeh/storetrack/internal/order"
	"github.com/mahdiimanzadeh/storetrack/internal/product"
	"github.com/mahdiimanzadeh/storetrack/internal/report"
	"github.com/mahdiimanzadeh/storetrack/internal/store"
	"github.com/mahdiimanzadeh/storetrack/internal/transaction"
	"github.com/mahdiimanzadeh/storetrack/internal/user"
)

// asCaller stands in for the auth middleware in handler tests.
func asCaller(callerID uuid.UUID) chi.Router {
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), callerID)))
		})
	})
	return router
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, ownerID uuid.UUID, attrs product.Attributes) (*product.Product, error) {
	args := m.Called(ctx, ownerID, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, ownerID, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) AdjustStock(ctx context.Context, ownerID, id uuid.UUID, delta int, description string, orderID *uuid.UUID) (*product.Adjustment, error) {
	args := m.Called(ctx, ownerID, id, delta, description, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Adjustment), args.Error(1)
}

func (m *MockProductService) UpdateAttributes(ctx context.Context, ownerID, id uuid.UUID, upd product.Update) (*product.Product, error) {
	args := m.Called(ctx, ownerID, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockProductService) List(ctx context.Context, ownerID uuid.UUID) ([]product.Product, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockProductService) Search(ctx context.Context, ownerID uuid.UUID, term string) ([]product.Product, error) {
	args := m.Called(ctx, ownerID, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, in order.PlaceOrderInput) (*order.Order, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, ownerID, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, ownerID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) SetStatus(ctx context.Context, ownerID, orderID uuid.UUID, newStatus order.Status) (*order.Order, error) {
	args := m.Called(ctx, ownerID, orderID, newStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) DeleteOrder(ctx context.Context, ownerID, orderID uuid.UUID) error {
	args := m.Called(ctx, ownerID, orderID)
	return args.Error(0)
}

func (m *MockOrderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Append(ctx context.Context, in transaction.AppendInput) (*transaction.Transaction, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockLedger) RecordCreation(ctx context.Context, userID, productID uuid.UUID, unitPrice float64) (*transaction.Transaction, error) {
	args := m.Called(ctx, userID, productID, unitPrice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockLedger) ListByUser(ctx context.Context, userID uuid.UUID) ([]transaction.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transaction.Transaction), args.Error(1)
}

func (m *MockLedger) ListByProduct(ctx context.Context, userID, productID uuid.UUID) ([]transaction.Transaction, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transaction.Transaction), args.Error(1)
}

func (m *MockLedger) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockLedger) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) LowStock(ctx context.Context, userID uuid.UUID, threshold int) ([]report.LowStockItem, error) {
	args := m.Called(ctx, userID, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.LowStockItem), args.Error(1)
}

func (m *MockReportService) LowStockAcrossOwners(ctx context.Context, threshold int) ([]report.LowStockItem, error) {
	args := m.Called(ctx, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.LowStockItem), args.Error(1)
}

func (m *MockReportService) Sales(ctx context.Context, userID uuid.UUID, r report.DateRange) (*report.SalesReport, error) {
	args := m.Called(ctx, userID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.SalesReport), args.Error(1)
}

func (m *MockReportService) Purchases(ctx context.Context, userID uuid.UUID, r report.DateRange) (*report.PurchaseReport, error) {
	args := m.Called(ctx, userID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.PurchaseReport), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, u *user.User, password string) (*user.User, error) {
	args := m.Called(ctx, u, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockStoreService struct {
	mock.Mock
}

func (m *MockStoreService) Create(ctx context.Context, ownerID uuid.UUID, s store.Store) (*store.Store, error) {
	args := m.Called(ctx, ownerID, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Store), args.Error(1)
}

func (m *MockStoreService) ListByUser(ctx context.Context, ownerID uuid.UUID) ([]store.Store, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Store), args.Error(1)
}
