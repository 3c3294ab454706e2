package handlers

import (
	"net/http"

	"planora-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler serves the admin console. Every route is behind the
// AdminOnly middleware.
type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.db.Order("created_at asc").Find(&users).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, users)
}

// BanUser handles PATCH /api/admin/users/:id/ban. A banned user cannot
// log in; existing tokens stay valid until expiry.
func (h *AdminHandler) BanUser(c *gin.Context) {
	h.setBanned(c, true, "User banned")
}

// UnbanUser handles PATCH /api/admin/users/:id/unban.
func (h *AdminHandler) UnbanUser(c *gin.Context) {
	h.setBanned(c, false, "User unbanned")
}

func (h *AdminHandler) setBanned(c *gin.Context, banned bool, message string) {
	result := h.db.Model(&models.User{}).
		Where("id = ?", c.Param("id")).
		Update("banned", banned)
	if result.Error != nil {
		respondServiceError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondNotFound(c)
		return
	}
	respondMessage(c, http.StatusOK, message)
}

// Overview handles GET /api/admin/overview with instance-wide counts.
func (h *AdminHandler) Overview(c *gin.Context) {
	var userCount, projectCount, taskCount, sprintCount int64
	if err := h.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if err := h.db.Model(&models.Project{}).Count(&projectCount).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if err := h.db.Model(&models.Task{}).Count(&taskCount).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if err := h.db.Model(&models.Sprint{}).Count(&sprintCount).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"users":    userCount,
		"projects": projectCount,
		"tasks":    taskCount,
		"sprints":  sprintCount,
	})
}
