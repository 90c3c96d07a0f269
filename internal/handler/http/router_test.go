package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mahdiimanzadeh/storetrack/internal/auth"
	apiHandler "github.com/mahdiimanzadeh/storetrack/internal/handler/http"
	"github.com/mahdiimanzadeh/storetrack/internal/product"
	"github.com/mahdiimanzadeh/storetrack/internal/store"
	"github.com/mahdiimanzadeh/storetrack/internal/user"
)

type routerFixture struct {
	products *MockProductService
	ledger   *MockLedger
	orders   *MockOrderService
	reports  *MockReportService
	users    *MockUserService
	stores   *MockStoreService
	tokens   *auth.TokenManager
	handler  http.Handler
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		products: new(MockProductService),
		ledger:   new(MockLedger),
		orders:   new(MockOrderService),
		reports:  new(MockReportService),
		users:    new(MockUserService),
		stores:   new(MockStoreService),
		tokens:   auth.NewTokenManager("test-secret", time.Hour, "storetrack"),
	}
	f.handler = apiHandler.NewRouter(apiHandler.Services{
		Products:     f.products,
		Transactions: f.ledger,
		Orders:       f.orders,
		Reports:      f.reports,
		Users:        f.users,
		Stores:       f.stores,
	}, f.tokens, nil)
	return f
}

func (f *routerFixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture()

	rr := f.serve(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	f := newRouterFixture()
	owner := uuid.Must(uuid.NewV4())

	rr := f.serve(httptest.NewRequest(http.MethodGet, "/product/"+owner.String(), nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token, err := f.tokens.Issue(owner)
	require.NoError(t, err)
	f.products.On("List", mock.Anything, owner).Return([]product.Product{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/product/"+owner.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = f.serve(req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
	f.products.AssertExpectations(t)
}

func TestAuthHandler_handleMe(t *testing.T) {
	f := newRouterFixture()
	caller := uuid.Must(uuid.NewV4())

	rr := f.serve(httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	f.users.On("GetUserByID", mock.Anything, caller).Return(&user.User{
		ID:           caller,
		FirstName:    "Sara",
		Email:        "sara@example.com",
		PasswordHash: "bcrypt-hash",
	}, nil).Once()

	token, err := f.tokens.Issue(caller)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = f.serve(req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email":"sara@example.com"`)
	assert.NotContains(t, rr.Body.String(), "bcrypt-hash")

	f.users.On("GetUserByID", mock.Anything, caller).Return(nil, user.ErrNotFound).Once()
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = f.serve(req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	f.users.AssertExpectations(t)
}

func TestAuthHandler_handleRegister(t *testing.T) {
	f := newRouterFixture()
	created := &user.User{
		ID:        uuid.Must(uuid.NewV4()),
		FirstName: "Sara",
		LastName:  "Karimi",
		Email:     "sara@example.com",
	}
	f.users.On("Register", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
		return u.Email == "sara@example.com" && u.FirstName == "Sara" && u.PhoneNumber == "555-0100"
	}), "password123").Return(created, nil).Once()

	rr := f.serve(jsonRequest(t, http.MethodPost, "/auth/register", map[string]string{
		"firstName":   "Sara",
		"lastName":    "Karimi",
		"email":       "sara@example.com",
		"password":    "password123",
		"phoneNumber": "555-0100",
	}))
	require.Equal(t, http.StatusCreated, rr.Code)

	var body apiHandler.AuthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, created.ID, body.ID)
	assert.Equal(t, "sara@example.com", body.Email)

	subject, err := f.tokens.Verify(body.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, subject)
	f.users.AssertExpectations(t)
}

func TestAuthHandler_Failures(t *testing.T) {
	t.Run("duplicate email", func(t *testing.T) {
		f := newRouterFixture()
		f.users.On("Register", mock.Anything, mock.AnythingOfType("*user.User"), "password123").
			Return(nil, user.ErrEmailExists).Once()

		rr := f.serve(jsonRequest(t, http.MethodPost, "/auth/register", map[string]string{
			"firstName": "Sara", "lastName": "Karimi", "email": "sara@example.com", "password": "password123",
		}))
		assert.Equal(t, http.StatusConflict, rr.Code)
		f.users.AssertExpectations(t)
	})

	t.Run("short password", func(t *testing.T) {
		f := newRouterFixture()

		rr := f.serve(jsonRequest(t, http.MethodPost, "/auth/register", map[string]string{
			"firstName": "Sara", "lastName": "Karimi", "email": "sara@example.com", "password": "short",
		}))
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "password")
		f.users.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad credentials", func(t *testing.T) {
		f := newRouterFixture()
		f.users.On("Authenticate", mock.Anything, "sara@example.com", "wrong-password").
			Return(nil, user.ErrInvalidCredentials).Once()

		rr := f.serve(jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{
			"email": "sara@example.com", "password": "wrong-password",
		}))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		f.users.AssertExpectations(t)
	})

	t.Run("user store down", func(t *testing.T) {
		f := newRouterFixture()
		f.users.On("Authenticate", mock.Anything, "sara@example.com", "password123").
			Return(nil, errors.New("pool closed")).Once()

		rr := f.serve(jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{
			"email": "sara@example.com", "password": "password123",
		}))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "pool closed")
	})
}

func TestStoreHandler(t *testing.T) {
	caller := uuid.Must(uuid.NewV4())

	t.Run("create", func(t *testing.T) {
		mockService := new(MockStoreService)
		mockService.On("Create", mock.Anything, caller, store.Store{
			Name: "Main", Category: "Hardware", Address: "1 Main St", City: "Tehran",
		}).Return(&store.Store{ID: uuid.Must(uuid.NewV4()), UserID: caller, Name: "Main"}, nil).Once()

		router := asCaller(caller)
		apiHandler.NewStoreHandler(mockService).RegisterRoutes(router)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, jsonRequest(t, http.MethodPost, "/store", map[string]string{
			"name": "Main", "category": "Hardware", "address": "1 Main St", "city": "Tehran",
		}))
		assert.Equal(t, http.StatusCreated, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("list foreign owner", func(t *testing.T) {
		mockService := new(MockStoreService)

		router := asCaller(caller)
		apiHandler.NewStoreHandler(mockService).RegisterRoutes(router)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/store/"+uuid.Must(uuid.NewV4()).String(), nil))
		assert.Equal(t, http.StatusForbidden, rr.Code)
		mockService.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
	})
}
