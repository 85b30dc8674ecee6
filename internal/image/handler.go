package image

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ImageResponse is an image as listed to the back office.
type ImageResponse struct {
	ID   uint64 `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// List handles GET /api/images
func (h *Handler) List(c *gin.Context) {
	images, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response := make([]ImageResponse, len(images))
	for i, img := range images {
		response[i] = ImageResponse{ID: img.ID, URL: img.URL, Name: img.Name}
	}
	c.JSON(http.StatusOK, response)
}
