package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rocaconstrucciones/backend/internal/services"
)

type PublicHandler struct {
	contentService *services.ContentService
}

func NewPublicHandler(contentService *services.ContentService) *PublicHandler {
	return &PublicHandler{contentService: contentService}
}

// GetServices lists the service catalog for the public site
// GET /services
func (h *PublicHandler) GetServices(c *gin.Context) {
	services, err := h.contentService.GetServices()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, services)
}
