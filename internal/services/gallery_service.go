package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rocaconstrucciones/backend/internal/models"
	"gorm.io/gorm"
)

var ErrGalleryFull = fmt.Errorf("maximum of %d gallery images allowed", models.MaxGalleryImages)

type GalleryService struct {
	db    *gorm.DB
	media *MediaService
}

func NewGalleryService(db *gorm.DB, media *MediaService) *GalleryService {
	return &GalleryService{db: db, media: media}
}

// GalleryUpdate carries the optional fields of a partial update
type GalleryUpdate struct {
	ImageURL     *string
	ThumbnailURL *string
	Title        *string
	Description  *string
	DisplayOrder *int
	IsActive     *bool
}

// ReorderItem is one entry of a batch reorder request
type ReorderItem struct {
	ID           uuid.UUID `json:"id" binding:"required"`
	DisplayOrder int       `json:"display_order"`
}

// GetAll returns every gallery image, ordered for the admin view
func (s *GalleryService) GetAll() ([]models.GalleryImage, error) {
	var images []models.GalleryImage
	if err := s.db.Order("display_order ASC, created_at DESC").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// GetActive returns the active images for the public site, capped
func (s *GalleryService) GetActive() ([]models.GalleryImage, error) {
	var images []models.GalleryImage
	if err := s.db.Where("is_active = ?", true).
		Order("display_order ASC").
		Limit(models.MaxGalleryImages).
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// GetByID returns a single gallery image
func (s *GalleryService) GetByID(id uuid.UUID) (*models.GalleryImage, error) {
	var image models.GalleryImage
	if err := s.db.First(&image, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &image, nil
}

// Create inserts a gallery image, enforcing the gallery cap
func (s *GalleryService) Create(image *models.GalleryImage) error {
	var count int64
	if err := s.db.Model(&models.GalleryImage{}).Count(&count).Error; err != nil {
		return err
	}
	if count >= models.MaxGalleryImages {
		return ErrGalleryFull
	}
	return s.db.Create(image).Error
}

// Update applies a partial update. When a new image pair replaces the old
// one the previous files are removed from disk.
func (s *GalleryService) Update(id uuid.UUID, upd GalleryUpdate) (*models.GalleryImage, error) {
	image, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	oldImageURL := image.ImageURL

	var cols []string
	if upd.ImageURL != nil {
		image.ImageURL = *upd.ImageURL
		cols = append(cols, "image_url")
	}
	if upd.ThumbnailURL != nil {
		image.ThumbnailURL = *upd.ThumbnailURL
		cols = append(cols, "thumbnail_url")
	}
	if upd.Title != nil {
		image.Title = *upd.Title
		cols = append(cols, "title")
	}
	if upd.Description != nil {
		image.Description = *upd.Description
		cols = append(cols, "description")
	}
	if upd.DisplayOrder != nil {
		image.DisplayOrder = *upd.DisplayOrder
		cols = append(cols, "display_order")
	}
	if upd.IsActive != nil {
		image.IsActive = *upd.IsActive
		cols = append(cols, "is_active")
	}

	if len(cols) == 0 {
		return image, nil
	}

	if err := s.db.Model(image).Select(cols).Updates(*image).Error; err != nil {
		return nil, err
	}

	if upd.ImageURL != nil && oldImageURL != "" && oldImageURL != *upd.ImageURL {
		s.media.DeleteImage(oldImageURL)
	}

	return image, nil
}

// Reorder writes the submitted display orders one row at a time. This is
// deliberately not transactional; a failure mid-batch leaves a mixed order.
func (s *GalleryService) Reorder(items []ReorderItem) ([]models.GalleryImage, error) {
	for _, item := range items {
		if err := s.db.Model(&models.GalleryImage{}).
			Where("id = ?", item.ID).
			Update("display_order", item.DisplayOrder).Error; err != nil {
			return nil, err
		}
	}
	return s.GetAll()
}

// Delete removes the row and both files of the image pair
func (s *GalleryService) Delete(id uuid.UUID) error {
	image, err := s.GetByID(id)
	if err != nil {
		return err
	}

	s.media.DeleteImage(image.ImageURL)

	return s.db.Delete(image).Error
}
