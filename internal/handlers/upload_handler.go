package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rocaconstrucciones/backend/internal/services"
)

type UploadHandler struct {
	storageService *services.StorageService
	mediaService   *services.MediaService
}

func NewUploadHandler(storageService *services.StorageService, mediaService *services.MediaService) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
		mediaService:   mediaService,
	}
}

// UploadImage ingests one image and derives the full/thumbnail pair
// POST /upload/image, multipart field "file"
func (h *UploadHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	stored, err := h.storageService.SaveUpload(fileHeader, services.ClassImage)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	processed, err := h.mediaService.ProcessImage(stored.Path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":          processed.URL,
		"thumbnail":    processed.ThumbnailURL,
		"originalName": stored.OriginalName,
	})
}

// UploadVideo ingests one video; no derived artifacts
// POST /upload/video, multipart field "file"
func (h *UploadHandler) UploadVideo(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	stored, err := h.storageService.SaveUpload(fileHeader, services.ClassVideo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":          stored.PublicPath,
		"originalName": stored.OriginalName,
	})
}
