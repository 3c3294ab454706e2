package handlers

import (
	"errors"
	"net/http"
	"strings"

	"planora-api/internal/models"
	"planora-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectHandler serves project CRUD and membership management.
type ProjectHandler struct {
	db  *gorm.DB
	hub *realtime.Hub
}

func NewProjectHandler(db *gorm.DB, hub *realtime.Hub) *ProjectHandler {
	return &ProjectHandler{db: db, hub: hub}
}

// CreateProjectRequest represents the project creation payload
type CreateProjectRequest struct {
	Key         string `json:"key" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateProjectRequest represents a partial project update
type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Create handles POST /api/projects. The creator becomes the owner and
// is added as a manager member.
func (h *ProjectHandler) Create(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	project := models.Project{
		ID:          uuid.NewString(),
		Key:         strings.ToUpper(strings.TrimSpace(req.Key)),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		OwnerID:     userID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		member := models.ProjectMember{
			ProjectID: project.ID,
			UserID:    userID,
			Role:      models.ProjectRoleManager,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, project)
}

// List handles GET /api/projects; only projects the caller is a member
// of are returned.
func (h *ProjectHandler) List(c *gin.Context) {
	userID := c.GetString("user_id")

	var projects []models.Project
	if err := h.db.
		Joins("JOIN project_members pm ON pm.project_id = projects.id").
		Where("pm.user_id = ?", userID).
		Order("projects.created_at desc").
		Find(&projects).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, projects)
}

// Get handles GET /api/projects/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	project, ok := h.fetch(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, project)
}

// Update handles PATCH /api/projects/:id.
func (h *ProjectHandler) Update(c *gin.Context) {
	project, ok := h.fetch(c)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			respondBadRequest(c, "name must not be empty")
			return
		}
		project.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		project.Description = *req.Description
	}

	if err := h.db.Save(project).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	h.hub.BroadcastProject(project.ID, realtime.Event{
		Type:      "project_updated",
		ProjectID: project.ID,
		ActorID:   c.GetString("user_id"),
	})
	respondData(c, http.StatusOK, project)
}

// Delete handles DELETE /api/projects/:id (soft delete).
func (h *ProjectHandler) Delete(c *gin.Context) {
	project, ok := h.fetch(c)
	if !ok {
		return
	}

	if err := h.db.Delete(project).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Project deleted successfully")
}

// AddMemberRequest represents the membership payload
type AddMemberRequest struct {
	UserID string             `json:"user_id" binding:"required"`
	Role   models.ProjectRole `json:"role"`
}

// ListMembers handles GET /api/projects/:id/members.
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	project, ok := h.fetch(c)
	if !ok {
		return
	}

	var members []models.ProjectMember
	if err := h.db.Where("project_id = ?", project.ID).Find(&members).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, members)
}

// AddMember handles POST /api/projects/:id/members.
func (h *ProjectHandler) AddMember(c *gin.Context) {
	project, ok := h.fetch(c)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var user models.User
	if err := h.db.Where("id = ?", req.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondBadRequest(c, "User does not exist")
			return
		}
		respondServiceError(c, err)
		return
	}

	role := req.Role
	if role == "" {
		role = models.ProjectRoleMember
	}
	member := models.ProjectMember{
		ProjectID: project.ID,
		UserID:    req.UserID,
		Role:      role,
	}
	if err := h.db.Create(&member).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			respondBadRequest(c, "User is already a member")
			return
		}
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, member)
}

// RemoveMember handles DELETE /api/projects/:id/members/:userId.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	project, ok := h.fetch(c)
	if !ok {
		return
	}

	memberID := c.Param("userId")
	result := h.db.Where("project_id = ? AND user_id = ?", project.ID, memberID).
		Delete(&models.ProjectMember{})
	if result.Error != nil {
		respondServiceError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondNotFound(c)
		return
	}

	respondMessage(c, http.StatusOK, "Member removed")
}

// fetch loads the project from the :id param, writing the error response
// itself when the project is missing.
func (h *ProjectHandler) fetch(c *gin.Context) (*models.Project, bool) {
	var project models.Project
	if err := h.db.Where("id = ?", c.Param("id")).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c)
		} else {
			respondServiceError(c, err)
		}
		return nil, false
	}
	return &project, true
}
