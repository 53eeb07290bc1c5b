package services

import (
	"github.com/rocaconstrucciones/backend/internal/models"
	"gorm.io/gorm"
)

// ContentService serves the read-only public content of the site
type ContentService struct {
	db *gorm.DB
}

func NewContentService(db *gorm.DB) *ContentService {
	return &ContentService{db: db}
}

// GetServices returns the service catalog in display order
func (s *ContentService) GetServices() ([]models.Service, error) {
	var services []models.Service
	if err := s.db.Order("display_order ASC").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}
