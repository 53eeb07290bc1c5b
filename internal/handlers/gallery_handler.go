package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rocaconstrucciones/backend/internal/models"
	"github.com/rocaconstrucciones/backend/internal/services"
)

type GalleryHandler struct {
	galleryService *services.GalleryService
	storageService *services.StorageService
	mediaService   *services.MediaService
}

func NewGalleryHandler(galleryService *services.GalleryService, storageService *services.StorageService, mediaService *services.MediaService) *GalleryHandler {
	return &GalleryHandler{
		galleryService: galleryService,
		storageService: storageService,
		mediaService:   mediaService,
	}
}

// GetGallery lists every gallery image for the admin view
// GET /gallery
func (h *GalleryHandler) GetGallery(c *gin.Context) {
	images, err := h.galleryService.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch gallery images"})
		return
	}
	c.JSON(http.StatusOK, images)
}

// GetActiveGallery lists the active images for the public site
// GET /gallery/active
func (h *GalleryHandler) GetActiveGallery(c *gin.Context) {
	images, err := h.galleryService.GetActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch gallery images"})
		return
	}
	c.JSON(http.StatusOK, images)
}

// CreateGalleryImage ingests the multipart file, derives the image pair and
// inserts the row
// POST /gallery, multipart: file (required), title, description, display_order
func (h *GalleryHandler) CreateGalleryImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
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

	displayOrder, _ := strconv.Atoi(c.DefaultPostForm("display_order", "0"))
	image := &models.GalleryImage{
		ImageURL:     processed.URL,
		ThumbnailURL: processed.ThumbnailURL,
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		DisplayOrder: displayOrder,
	}

	if err := h.galleryService.Create(image); err != nil {
		// Row insert failed: don't leave the freshly written pair behind
		h.mediaService.DeleteImage(processed.URL)
		if errors.Is(err, services.ErrGalleryFull) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create gallery image"})
		return
	}

	c.JSON(http.StatusCreated, image)
}

// UpdateGalleryImage applies a partial update; an optional new file replaces
// the image pair
// PUT /gallery/:id
func (h *GalleryHandler) UpdateGalleryImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery image id"})
		return
	}

	var upd services.GalleryUpdate

	if fileHeader, ferr := c.FormFile("file"); ferr == nil {
		stored, serr := h.storageService.SaveUpload(fileHeader, services.ClassImage)
		if serr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": serr.Error()})
			return
		}
		processed, perr := h.mediaService.ProcessImage(stored.Path)
		if perr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process image"})
			return
		}
		upd.ImageURL = &processed.URL
		upd.ThumbnailURL = &processed.ThumbnailURL
	}

	if v, ok := c.GetPostForm("title"); ok {
		upd.Title = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		upd.Description = &v
	}
	if v, ok := c.GetPostForm("display_order"); ok {
		order, perr := strconv.Atoi(v)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "display_order must be an integer"})
			return
		}
		upd.DisplayOrder = &order
	}
	if v, ok := c.GetPostForm("is_active"); ok {
		active := v == "true" || v == "1"
		upd.IsActive = &active
	}

	image, err := h.galleryService.Update(id, upd)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Gallery image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update gallery image"})
		return
	}

	c.JSON(http.StatusOK, image)
}

// ReorderGallery applies the submitted display order in one batch
// PUT /gallery/reorder/batch
func (h *GalleryHandler) ReorderGallery(c *gin.Context) {
	var req struct {
		Items []services.ReorderItem `json:"items" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Items array is required"})
		return
	}

	images, err := h.galleryService.Reorder(req.Items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder gallery images"})
		return
	}

	c.JSON(http.StatusOK, images)
}

// DeleteGalleryImage removes the row and both files of the pair
// DELETE /gallery/:id
func (h *GalleryHandler) DeleteGalleryImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery image id"})
		return
	}

	if err := h.galleryService.Delete(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Gallery image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete gallery image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Gallery image deleted successfully"})
}
