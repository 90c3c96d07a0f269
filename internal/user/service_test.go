package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mahdiimanzadeh/storetrack/internal/user"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) (uuid.UUID, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func TestUserService_Register_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	newUser := &user.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     " Owner@Example.com ",
	}
	expectedID := uuid.Must(uuid.NewV4())

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).
		Return(expectedID, nil).
		Once()

	created, err := userService.Register(context.Background(), newUser, "somepassword")

	require.NoError(t, err)
	require.Equal(t, expectedID, created.ID)
	require.Equal(t, "owner@example.com", created.Email)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("somepassword")))
	mockRepo.AssertExpectations(t)
}

func TestUserService_Register_EmailExists(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).
		Return(uuid.Nil, user.ErrEmailExists).
		Once()

	created, err := userService.Register(context.Background(), &user.User{Email: "dup@example.com"}, "pw")

	require.ErrorIs(t, err, user.ErrEmailExists)
	require.Nil(t, created)
	mockRepo.AssertExpectations(t)
}

func TestUserService_Register_EmptyPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	_, err := userService.Register(context.Background(), &user.User{Email: "a@example.com"}, "")

	require.Error(t, err)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &user.User{ID: uuid.Must(uuid.NewV4()), Email: "owner@example.com", PasswordHash: string(hash)}

	tests := []struct {
		name     string
		email    string
		password string
		repoUser *user.User
		repoErr  error
		wantErr  error
	}{
		{name: "success", email: "owner@example.com", password: "correct-horse", repoUser: stored},
		{name: "wrong_password", email: "owner@example.com", password: "nope", repoUser: stored, wantErr: user.ErrInvalidCredentials},
		{name: "unknown_email", email: "ghost@example.com", password: "x", repoErr: user.ErrNotFound, wantErr: user.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			userService := user.NewService(mockRepo)

			if tt.repoUser != nil {
				mockRepo.On("GetByEmail", mock.Anything, tt.email).Return(tt.repoUser, nil).Once()
			} else {
				mockRepo.On("GetByEmail", mock.Anything, tt.email).Return(nil, tt.repoErr).Once()
			}

			got, err := userService.Authenticate(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, got)
			} else {
				require.NoError(t, err)
				require.Equal(t, stored.ID, got.ID)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_GetUserByID_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	userID := uuid.Must(uuid.NewV4())
	expectedUser := user.User{
		ID:           userID,
		FirstName:    "Test",
		LastName:     "User",
		Email:        "getbyid@example.com",
		PasswordHash: "hashed_password_from_repo",
		CreatedAt:    time.Now().Add(-time.Hour),
		UpdatedAt:    time.Now(),
	}

	mockRepo.On("GetByID", mock.Anything, userID).Return(&expectedUser, nil).Once()

	found, err := userService.GetUserByID(context.Background(), userID)

	require.NoError(t, err)
	require.Empty(t, cmp.Diff(expectedUser, *found))
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUserByID_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	userID := uuid.Must(uuid.NewV4())
	mockRepo.On("GetByID", mock.Anything, userID).Return(nil, user.ErrNotFound).Once()

	found, err := userService.GetUserByID(context.Background(), userID)

	require.ErrorIs(t, err, user.ErrNotFound)
	require.Nil(t, found)
	mockRepo.AssertExpectations(t)
}
