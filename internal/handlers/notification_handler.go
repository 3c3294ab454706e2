package handlers

import (
	"net/http"

	"planora-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NotificationHandler serves the caller's notification inbox.
type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// List handles GET /api/notifications, newest first. ?unread=true
// filters to unread entries.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetString("user_id")

	query := h.db.Where("user_id = ?", userID)
	if c.Query("unread") == "true" {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at desc").Find(&notifications).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, notifications)
}

// MarkRead handles PATCH /api/notifications/:id/read. Only the owner's
// rows are reachable.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetString("user_id")

	result := h.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		Update("read", true)
	if result.Error != nil {
		respondServiceError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondNotFound(c)
		return
	}

	respondMessage(c, http.StatusOK, "Notification marked as read")
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "All notifications marked as read")
}
