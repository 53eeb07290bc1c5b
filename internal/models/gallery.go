package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxGalleryImages caps the gallery; the public endpoint never returns more.
const MaxGalleryImages = 10

type GalleryImage struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ImageURL     string    `gorm:"not null" json:"image_url"`
	ThumbnailURL string    `gorm:"not null" json:"thumbnail_url"`
	Title        string    `gorm:"size:255" json:"title"`
	Description  string    `gorm:"size:1000" json:"description"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	IsActive     bool      `gorm:"default:false" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (g *GalleryImage) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
