package site

import (
	"net/http"

	"cmsmall/internal/errors"
	"cmsmall/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type TitleForm struct {
	Title string `json:"title" binding:"required,max=50"`
}

// GetTitle handles GET /api/titles
func (h *Handler) GetTitle(c *gin.Context) {
	title, err := h.service.GetTitle(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": title})
}

// UpdateTitle handles PUT /api/titles
func (h *Handler) UpdateTitle(c *gin.Context) {
	actor, ok := utils.CurrentActor(c)
	if !ok {
		c.Error(errors.Unauthorized("Not authenticated", nil))
		return
	}

	var form TitleForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	title, err := h.service.UpdateTitle(c.Request.Context(), actor, form.Title)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": title})
}
