package page

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

// ShowFrontPages handles GET /api/pages/front
func (h *Handler) ShowFrontPages(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)
	result, err := h.service.ListFrontPages(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ShowBackPages handles GET /api/pages/back
func (h *Handler) ShowBackPages(c *gin.Context) {
	actor, ok := utils.CurrentActor(c)
	if !ok {
		c.Error(errors.Unauthorized("Not authenticated", nil))
		return
	}

	page, pageSize := utils.GetPaginationParams(c)
	result, err := h.service.ListBackPages(c.Request.Context(), actor, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) ShowPage(c *gin.Context) {
	actor, ok := utils.CurrentActor(c)
	if !ok {
		c.Error(errors.Unauthorized("Not authenticated", nil))
		return
	}
	id, ok := utils.ParseID(c, "id")
	if !ok {
		c.Error(errors.UnprocessableEntity("Page id must be a positive integer", nil))
		return
	}

	p, err := h.service.GetPage(c.Request.Context(), actor, id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := utils.CurrentActor(c)
	if !ok {
		c.Error(errors.Unauthorized("Not authenticated", nil))
		return
	}

	var req PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	p, err := h.service.CreatePage(c.Request.Context(), actor, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) Update(c *gin.Context) {
	actor, ok := utils.CurrentActor(c)
	if !ok {
		c.Error(errors.Unauthorized("Not authenticated", nil))
		return
	}
	id, ok := utils.ParseID(c, "id")
	if !ok {
		c.Error(errors.UnprocessableEntity("Page id must be a positive integer", nil))
		return
	}

	var req PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	p, err := h.service.UpdatePage(c.Request.Context(), actor, id, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c *gin.Context) {
	actor, ok := utils.CurrentActor(c)
	if !ok {
		c.Error(errors.Unauthorized("Not authenticated", nil))
		return
	}
	id, ok := utils.ParseID(c, "id")
	if !ok {
		c.Error(errors.UnprocessableEntity("Page id must be a positive integer", nil))
		return
	}

	if err := h.service.DeletePage(c.Request.Context(), actor, id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
