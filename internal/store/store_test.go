package store_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mahdiimanzadeh/storetrack/internal/store"
)

type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) Create(ctx context.Context, s *store.Store) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStoreRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]store.Store, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]store.Store), args.Error(1)
}

func TestStoreService_Create(t *testing.T) {
	mockRepo := new(MockStoreRepository)
	svc := store.NewService(mockRepo)
	ownerID := uuid.Must(uuid.NewV4())

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *store.Store) bool {
		return s.UserID == ownerID && s.Name == "Main Street"
	})).Return(nil).Once()

	got, err := svc.Create(context.Background(), ownerID, store.Store{
		Name:     " Main Street ",
		Category: "Electronics",
		Address:  "1 Main St",
		City:     "Tehran",
	})

	require.NoError(t, err)
	require.Equal(t, ownerID, got.UserID)
	mockRepo.AssertExpectations(t)
}

func TestStoreService_Create_Validation(t *testing.T) {
	mockRepo := new(MockStoreRepository)
	svc := store.NewService(mockRepo)

	_, err := svc.Create(context.Background(), uuid.Must(uuid.NewV4()), store.Store{Name: "No city", Category: "x", Address: "y"})

	require.ErrorIs(t, err, store.ErrValidation)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
