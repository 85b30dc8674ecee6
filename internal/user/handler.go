package user

import (
	"net/http"

	"cmsmall/internal/auth"
	"cmsmall/internal/errors"
	"cmsmall/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Handler handles HTTP requests for users and sessions
type Handler struct {
	service      Service
	tokens       *auth.Manager
	secureCookie bool
}

func NewHandler(service Service, tokens *auth.Manager, secureCookie bool) *Handler {
	return &Handler{service: service, tokens: tokens, secureCookie: secureCookie}
}

// FormLogin represents login form data
type FormLogin struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/sessions
func (h *Handler) Login(c *gin.Context) {
	var form FormLogin
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	user, err := h.service.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		c.Error(err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.TokenVersion)
	if err != nil {
		c.Error(errors.Internal(err))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		auth.SessionCookie,
		token,
		int(h.tokens.TTL().Seconds()),
		"/",
		"",
		h.secureCookie, // Secure
		true,           // HttpOnly
	)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user.ToSafeUser(),
	})
}

// Current handles GET /api/sessions/current
func (h *Handler) Current(c *gin.Context) {
	actor, ok := utils.CurrentActor(c)
	if !ok {
		c.Error(errors.Unauthorized("Not authenticated", nil))
		return
	}

	user, err := h.service.GetUserByID(c.Request.Context(), actor.ID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user.ToSafeUser())
}

// Logout handles DELETE /api/sessions/current. Every token issued to the user
// stops verifying once its version is bumped.
func (h *Handler) Logout(c *gin.Context) {
	if actor, ok := utils.CurrentActor(c); ok {
		if err := h.service.IncreaseTokenVersion(c.Request.Context(), actor.ID); err != nil {
			log.Warn().Err(err).Uint64("user_id", actor.ID).Msg("cannot revoke sessions")
		}
	}

	c.SetCookie(auth.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{})
}

// ListUsers handles GET /api/users
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, users)
}
