package utils

import (
	"net/http/httptest"
	"testing"

	"cmsmall/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestGetPaginationParams(t *testing.T) {
	page, size := GetPaginationParams(testContext("/pages"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	page, size = GetPaginationParams(testContext("/pages?page=3&per_page=5"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 5, size)

	page, size = GetPaginationParams(testContext("/pages?page=-1&per_page=1000"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	page, size = GetPaginationParams(testContext("/pages?page=4611686018427387904&per_page=100"))
	assert.Equal(t, MaxPage, page)
	assert.Equal(t, 100, size)
	assert.Positive(t, (page-1)*size)
}

func TestParseID(t *testing.T) {
	c := testContext("/pages/12")
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	id, ok := ParseID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, uint64(12), id)

	for _, raw := range []string{"0", "-3", "abc", ""} {
		c.Params = gin.Params{{Key: "id", Value: raw}}
		_, ok = ParseID(c, "id")
		assert.False(t, ok, raw)
	}
}

func TestActorRoundTrip(t *testing.T) {
	c := testContext("/")
	_, ok := CurrentActor(c)
	assert.False(t, ok)

	SetActor(c, domain.Actor{ID: 4, Role: domain.RoleAdmin})
	actor, ok := CurrentActor(c)
	assert.True(t, ok)
	assert.Equal(t, domain.Actor{ID: 4, Role: domain.RoleAdmin}, actor)
	assert.True(t, actor.IsAdmin())
}
