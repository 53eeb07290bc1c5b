package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a portfolio entry on the public site. Images holds the ordered
// list of processed image URLs; CoverImageIndex points into that list and is
// clamped whenever the list shrinks.
type Project struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	Images          []string  `gorm:"serializer:json" json:"images"`
	CoverImageIndex int       `gorm:"default:0" json:"cover_image_index"`
	VideoURL        string    `json:"video_url"`
	Category        string    `gorm:"size:100" json:"category"`
	Tags            []string  `gorm:"serializer:json" json:"tags"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ClampCoverIndex forces CoverImageIndex into [0, len(Images)).
func (p *Project) ClampCoverIndex() {
	if len(p.Images) == 0 {
		p.CoverImageIndex = 0
		return
	}
	if p.CoverImageIndex < 0 {
		p.CoverImageIndex = 0
	}
	if p.CoverImageIndex >= len(p.Images) {
		p.CoverImageIndex = len(p.Images) - 1
	}
}
