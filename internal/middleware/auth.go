package middleware

import (
	"context"
	"strings"

	"cmsmall/internal/auth"
	"cmsmall/internal/domain"
	"cmsmall/internal/errors"
	"cmsmall/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserProvider interface {
	GetUserByID(ctx context.Context, id uint64) (*domain.User, error)
}

type Auth struct {
	UserService UserProvider
	Tokens      *auth.Manager
}

// AuthMiddleWare resolves the session token (cookie or bearer header) into an
// Actor and aborts with 401 when there is none.
func (m *Auth) AuthMiddleWare() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := sessionToken(ctx)
		if token == "" {
			ctx.Error(errors.Unauthorized("Not authenticated", nil))
			ctx.Abort()
			return
		}

		claims, err := m.Tokens.VerifyToken(token)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid session", err))
			ctx.Abort()
			return
		}

		user, err := m.UserService.GetUserByID(ctx.Request.Context(), claims.UserID)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid session", err))
			ctx.Abort()
			return
		}

		// Check token version
		if user.TokenVersion != claims.TokenVersion {
			ctx.Error(errors.Unauthorized("Session expired", nil))
			ctx.Abort()
			return
		}

		utils.SetActor(ctx, domain.Actor{ID: user.ID, Role: user.Role})
		ctx.Next()
	}
}

// RequireAdmin must run after AuthMiddleWare.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		actor, ok := utils.CurrentActor(ctx)
		if !ok {
			ctx.Error(errors.Unauthorized("Not authenticated", nil))
			ctx.Abort()
			return
		}
		if !actor.IsAdmin() {
			ctx.Error(errors.Forbidden("Admin role required", nil))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func sessionToken(ctx *gin.Context) string {
	if header := ctx.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := ctx.Cookie(auth.SessionCookie); err == nil {
		return cookie
	}
	return ""
}
