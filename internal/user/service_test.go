package user

import (
	"context"
	"net/http"
	"testing"

	"cmsmall/internal/domain"
	"cmsmall/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockRepository) IncreaseTokenVersion(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	service := NewService(repo)

	repo.On("FindByUsername", ctx, "john@example.com").Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	user := &domain.User{Username: "john@example.com", Name: "John", Password: "password"}
	require.NoError(t, service.Register(ctx, user))

	assert.Equal(t, domain.RoleAuthor, user.Role)
	assert.NotEqual(t, "password", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password")))
	repo.AssertExpectations(t)
}

func TestService_Register_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	service := NewService(repo)

	repo.On("FindByUsername", ctx, "john@example.com").Return(&domain.User{ID: 1}, nil)

	err := service.Register(ctx, &domain.User{Username: "john@example.com", Password: "password"})
	assert.Equal(t, http.StatusConflict, errors.StatusOf(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	service := NewService(repo)

	stored := &domain.User{ID: 3, Username: "john@example.com", PasswordHash: hashed(t, "password")}
	repo.On("FindByUsername", ctx, "john@example.com").Return(stored, nil)
	repo.On("FindByUsername", ctx, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)
	repo.On("FindByUsername", ctx, "down@example.com").Return(nil, assert.AnError)

	user, err := service.Login(ctx, "john@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), user.ID)

	_, err = service.Login(ctx, "john@example.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, errors.StatusOf(err))

	_, err = service.Login(ctx, "ghost@example.com", "password")
	assert.Equal(t, http.StatusUnauthorized, errors.StatusOf(err))

	_, err = service.Login(ctx, "down@example.com", "password")
	assert.Equal(t, http.StatusServiceUnavailable, errors.StatusOf(err))
}

func TestService_GetUserByID_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	service := NewService(repo)

	repo.On("FindByID", ctx, uint64(9)).Return(nil, gorm.ErrRecordNotFound)

	_, err := service.GetUserByID(ctx, 9)
	assert.Equal(t, http.StatusNotFound, errors.StatusOf(err))
}

func TestService_ListUsers_HidesHashes(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	service := NewService(repo)

	repo.On("List", ctx).Return([]domain.User{
		{ID: 1, Username: "a@example.com", Name: "A", Role: domain.RoleAdmin, PasswordHash: "x"},
		{ID: 2, Username: "b@example.com", Name: "B", Role: domain.RoleAuthor, PasswordHash: "y"},
	}, nil)

	users, err := service.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.SafeUser{
		{ID: 1, Username: "a@example.com", Name: "A", Role: domain.RoleAdmin},
		{ID: 2, Username: "b@example.com", Name: "B", Role: domain.RoleAuthor},
	}, users)
}

func TestService_IncreaseTokenVersion(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	service := NewService(repo)

	repo.On("IncreaseTokenVersion", ctx, uint64(1)).Return(nil)
	repo.On("IncreaseTokenVersion", ctx, uint64(2)).Return(gorm.ErrRecordNotFound)

	assert.NoError(t, service.IncreaseTokenVersion(ctx, 1))
	assert.Equal(t, http.StatusNotFound, errors.StatusOf(service.IncreaseTokenVersion(ctx, 2)))
}
