package handlers

import (
	"net/http"

	"planora-api/internal/models"
	"planora-api/internal/realtime"
	"planora-api/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CommentHandler exposes task comments over HTTP.
type CommentHandler struct {
	tasks *services.TaskService
	db    *gorm.DB
	hub   *realtime.Hub
}

func NewCommentHandler(tasks *services.TaskService, db *gorm.DB, hub *realtime.Hub) *CommentHandler {
	return &CommentHandler{tasks: tasks, db: db, hub: hub}
}

// CommentRequest carries a comment body for create and update.
type CommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// List handles GET /api/tasks/:id/comments.
func (h *CommentHandler) List(c *gin.Context) {
	comments, err := h.tasks.ListComments(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, comments)
}

// Create handles POST /api/tasks/:id/comments. Assignees and the
// reporter are notified, except the author themselves.
func (h *CommentHandler) Create(c *gin.Context) {
	userID := c.GetString("user_id")
	taskID := c.Param("id")

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	comment, err := h.tasks.AddComment(taskID, userID, req.Body)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if task, err := h.tasks.Get(taskID); err == nil {
		recipients := map[string]struct{}{task.ReporterID: {}}
		for _, a := range task.Assignees {
			recipients[a.ID] = struct{}{}
		}
		delete(recipients, userID)
		for recipient := range recipients {
			notify(h.db, h.hub, models.Notification{
				UserID:    recipient,
				Type:      models.NotifyCommentAdded,
				Message:   "New comment on task: " + task.Title,
				ProjectID: task.ProjectID,
				TaskID:    task.ID,
			})
		}
		h.hub.BroadcastProject(task.ProjectID, realtime.Event{
			Type:      "comment_added",
			ProjectID: task.ProjectID,
			TaskID:    task.ID,
			ActorID:   userID,
		})
	}

	respondData(c, http.StatusCreated, comment)
}

// Update handles PATCH /api/comments/:id.
func (h *CommentHandler) Update(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	comment, err := h.tasks.UpdateComment(c.Param("id"), req.Body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, comment)
}

// Delete handles DELETE /api/comments/:id (soft delete).
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.tasks.DeleteComment(c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Comment deleted successfully")
}
