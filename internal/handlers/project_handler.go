package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rocaconstrucciones/backend/internal/models"
	"github.com/rocaconstrucciones/backend/internal/services"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// GetProjects lists all projects, public
// GET /projects
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	projects, err := h.projectService.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}
	c.JSON(http.StatusOK, projects)
}

// CreateProject creates a project from JSON metadata; images referenced by
// URL have already gone through the upload endpoints
// POST /projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req struct {
		Title           string   `json:"title" binding:"required"`
		Description     string   `json:"description"`
		Images          []string `json:"images"`
		CoverImageIndex int      `json:"cover_image_index"`
		VideoURL        string   `json:"video_url"`
		Category        string   `json:"category"`
		Tags            []string `json:"tags"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project := &models.Project{
		Title:           req.Title,
		Description:     req.Description,
		Images:          req.Images,
		CoverImageIndex: req.CoverImageIndex,
		VideoURL:        req.VideoURL,
		Category:        req.Category,
		Tags:            req.Tags,
	}

	if err := h.projectService.Create(project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, project)
}

// UpdateProject applies a partial update
// PUT /projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
		return
	}

	var req struct {
		Title           *string   `json:"title"`
		Description     *string   `json:"description"`
		Images          *[]string `json:"images"`
		CoverImageIndex *int      `json:"cover_image_index"`
		VideoURL        *string   `json:"video_url"`
		Category        *string   `json:"category"`
		Tags            *[]string `json:"tags"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projectService.Update(id, services.ProjectUpdate{
		Title:           req.Title,
		Description:     req.Description,
		Images:          req.Images,
		CoverImageIndex: req.CoverImageIndex,
		VideoURL:        req.VideoURL,
		Category:        req.Category,
		Tags:            req.Tags,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	c.JSON(http.StatusOK, project)
}

// DeleteProject removes the project and every media file it references
// DELETE /projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
		return
	}

	if err := h.projectService.Delete(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}
