package site

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cmsmall/internal/domain"
	"cmsmall/internal/errors"
	"cmsmall/internal/middleware"
	"cmsmall/internal/utils"
	"cmsmall/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redisLib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Get(ctx context.Context) (*domain.Site, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Site), args.Error(1)
}

func (m *MockRepository) SaveTitle(ctx context.Context, title string) error {
	args := m.Called(ctx, title)
	return args.Error(0)
}

var admin = domain.Actor{ID: 1, Role: domain.RoleAdmin}

func setupService(t *testing.T) (*MockRepository, Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisLib.NewClient(&redisLib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := new(MockRepository)
	return repo, NewService(repo, redis.NewCache(client, "cms:"), time.Minute, nil), mr
}

func TestGetTitle_CachesAfterFirstLoad(t *testing.T) {
	repo, service, mr := setupService(t)
	ctx := context.Background()
	repo.On("Get", ctx).Return(&domain.Site{ID: domain.SiteID, Title: "CMSmall"}, nil).Once()

	title, err := service.GetTitle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CMSmall", title)
	assert.True(t, mr.Exists("cms:site:title"))

	title, err = service.GetTitle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CMSmall", title)
	repo.AssertNumberOfCalls(t, "Get", 1)
}

func TestGetTitle_Unset(t *testing.T) {
	repo, service, _ := setupService(t)
	ctx := context.Background()
	repo.On("Get", ctx).Return(nil, gorm.ErrRecordNotFound)

	_, err := service.GetTitle(ctx)
	assert.Equal(t, http.StatusNotFound, errors.StatusOf(err))
}

func TestUpdateTitle(t *testing.T) {
	repo, service, _ := setupService(t)
	ctx := context.Background()
	repo.On("SaveTitle", ctx, "New title").Return(nil)

	title, err := service.UpdateTitle(ctx, admin, "New title")
	require.NoError(t, err)
	assert.Equal(t, "New title", title)

	// served from cache, repository Get is never called
	title, err = service.GetTitle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New title", title)
	repo.AssertNotCalled(t, "Get", mock.Anything)
}

func TestUpdateTitle_Rules(t *testing.T) {
	repo, service, _ := setupService(t)
	ctx := context.Background()

	_, err := service.UpdateTitle(ctx, domain.Actor{ID: 2, Role: domain.RoleAuthor}, "Mine")
	assert.Equal(t, http.StatusForbidden, errors.StatusOf(err))

	_, err = service.UpdateTitle(ctx, admin, "")
	assert.Equal(t, http.StatusUnprocessableEntity, errors.StatusOf(err))

	_, err = service.UpdateTitle(ctx, admin, strings.Repeat("t", MaxTitleLength+1))
	assert.Equal(t, http.StatusUnprocessableEntity, errors.StatusOf(err))

	repo.AssertNotCalled(t, "SaveTitle", mock.Anything, mock.Anything)

	repo.On("SaveTitle", ctx, strings.Repeat("é", MaxTitleLength)).Return(nil)
	_, err = service.UpdateTitle(ctx, admin, strings.Repeat("é", MaxTitleLength))
	assert.NoError(t, err)
}

func TestUpdateTitle_StorageFault(t *testing.T) {
	repo, service, _ := setupService(t)
	ctx := context.Background()
	repo.On("SaveTitle", ctx, "x").Return(assert.AnError)

	_, err := service.UpdateTitle(ctx, admin, "x")
	assert.Equal(t, http.StatusServiceUnavailable, errors.StatusOf(err))
}

func TestHandler_UpdateTitle(t *testing.T) {
	repo, service, _ := setupService(t)
	repo.On("SaveTitle", mock.Anything, "Hello").Return(nil)
	handler := NewHandler(service)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.GET("/titles", handler.GetTitle)
	router.PUT("/titles", func(c *gin.Context) {
		utils.SetActor(c, admin)
		c.Next()
	}, handler.UpdateTitle)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/titles", bytes.NewBufferString(`{"title":"Hello"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"Hello"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/titles", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"Hello"}`, w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest("PUT", "/titles", bytes.NewBufferString(`{"title":""}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
