package utils

import (
	"strconv"

	"cmsmall/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = "user_id"
	userRoleKey = "user_role"
)

// MaxPage bounds the page query so the row offset cannot overflow.
const MaxPage = 1_000_000

func GetPaginationParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	return page, pageSize
}

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// SetActor stores the authenticated identity on the request context.
func SetActor(c *gin.Context, actor domain.Actor) {
	c.Set(userIDKey, actor.ID)
	c.Set(userRoleKey, actor.Role)
}

// CurrentActor returns the identity set by the auth middleware.
func CurrentActor(c *gin.Context) (domain.Actor, bool) {
	id, ok := c.Get(userIDKey)
	if !ok {
		return domain.Actor{}, false
	}
	userID, ok := id.(uint64)
	if !ok || userID == 0 {
		return domain.Actor{}, false
	}
	return domain.Actor{ID: userID, Role: c.GetString(userRoleKey)}, true
}
