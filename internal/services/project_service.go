package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rocaconstrucciones/backend/internal/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type ProjectService struct {
	db    *gorm.DB
	media *MediaService
}

func NewProjectService(db *gorm.DB, media *MediaService) *ProjectService {
	return &ProjectService{db: db, media: media}
}

// ProjectUpdate carries the optional fields of a partial update; only
// non-nil fields are written
type ProjectUpdate struct {
	Title           *string
	Description     *string
	Images          *[]string
	CoverImageIndex *int
	VideoURL        *string
	Category        *string
	Tags            *[]string
}

// GetAll returns all projects, newest first
func (s *ProjectService) GetAll() ([]models.Project, error) {
	var projects []models.Project
	if err := s.db.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// GetByID returns a single project
func (s *ProjectService) GetByID(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// Create inserts a new project, clamping the cover index into range
func (s *ProjectService) Create(project *models.Project) error {
	project.ClampCoverIndex()
	return s.db.Create(project).Error
}

// Update applies a partial update through a single column-selected Updates
// call; only supplied fields are touched
func (s *ProjectService) Update(id uuid.UUID, upd ProjectUpdate) (*models.Project, error) {
	project, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	var cols []string
	if upd.Title != nil {
		project.Title = *upd.Title
		cols = append(cols, "title")
	}
	if upd.Description != nil {
		project.Description = *upd.Description
		cols = append(cols, "description")
	}
	if upd.VideoURL != nil {
		project.VideoURL = *upd.VideoURL
		cols = append(cols, "video_url")
	}
	if upd.Category != nil {
		project.Category = *upd.Category
		cols = append(cols, "category")
	}
	if upd.Images != nil {
		project.Images = *upd.Images
		cols = append(cols, "images")
	}
	if upd.CoverImageIndex != nil {
		project.CoverImageIndex = *upd.CoverImageIndex
	}
	if upd.Images != nil || upd.CoverImageIndex != nil {
		project.ClampCoverIndex()
		cols = append(cols, "cover_image_index")
	}
	if upd.Tags != nil {
		project.Tags = *upd.Tags
		cols = append(cols, "tags")
	}

	if len(cols) == 0 {
		return project, nil
	}

	if err := s.db.Model(project).Select(cols).Updates(*project).Error; err != nil {
		return nil, err
	}

	return project, nil
}

// Delete removes a project row and every media file it references
func (s *ProjectService) Delete(id uuid.UUID) error {
	project, err := s.GetByID(id)
	if err != nil {
		return err
	}

	for _, img := range project.Images {
		s.media.DeleteImage(img)
	}
	if project.VideoURL != "" {
		s.media.DeleteVideo(project.VideoURL)
	}

	return s.db.Delete(project).Error
}
