package handlers

import (
	"net/http"
	"os"
	"time"

	"planora-api/internal/models"
	"planora-api/internal/realtime"
	"planora-api/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TaskHandler exposes the task lifecycle over HTTP.
type TaskHandler struct {
	tasks *services.TaskService
	db    *gorm.DB
	hub   *realtime.Hub
}

func NewTaskHandler(tasks *services.TaskService, db *gorm.DB, hub *realtime.Hub) *TaskHandler {
	return &TaskHandler{tasks: tasks, db: db, hub: hub}
}

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Title        string              `json:"title" binding:"required"`
	Description  string              `json:"description"`
	Type         models.TaskType     `json:"type"`
	Status       models.TaskStatus   `json:"status"`
	Priority     models.TaskPriority `json:"priority"`
	StoryPoints  *int                `json:"story_points"`
	TimeEstimate *int                `json:"time_estimate"`
	TimeSpent    *int                `json:"time_spent"`
	DueDate      *time.Time          `json:"due_date"`
	ParentID     *string             `json:"parent_id"`
	Assignees    []string            `json:"assignees"`
	Labels       []string            `json:"labels"`
}

// UpdateTaskRequest represents a partial task update. Assignees and
// labels, when present, replace the whole set.
type UpdateTaskRequest struct {
	Title        *string              `json:"title"`
	Description  *string              `json:"description"`
	Type         *models.TaskType     `json:"type"`
	Status       *models.TaskStatus   `json:"status"`
	Priority     *models.TaskPriority `json:"priority"`
	StoryPoints  *int                 `json:"story_points"`
	TimeEstimate *int                 `json:"time_estimate"`
	TimeSpent    *int                 `json:"time_spent"`
	DueDate      *time.Time           `json:"due_date"`
	Assignees    *[]string            `json:"assignees"`
	Labels       *[]string            `json:"labels"`
}

// MoveTaskRequest represents the board move payload
type MoveTaskRequest struct {
	Status        models.TaskStatus `json:"status" binding:"required"`
	PositionIndex *int              `json:"position_index"`
}

// ListByProject handles GET /api/projects/:id/tasks with optional
// status and sprint_id filters (sprint_id= matches backlog tasks).
func (h *TaskHandler) ListByProject(c *gin.Context) {
	projectID := c.Param("id")

	var filter services.TaskFilter
	if v, ok := c.GetQuery("status"); ok {
		status := models.TaskStatus(v)
		filter.Status = &status
	}
	if v, ok := c.GetQuery("sprint_id"); ok {
		filter.SprintID = &v
	}

	tasks, err := h.tasks.ListByProject(projectID, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, tasks)
}

// Create handles POST /api/projects/:id/tasks.
func (h *TaskHandler) Create(c *gin.Context) {
	userID := c.GetString("user_id")
	projectID := c.Param("id")

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	task, err := h.tasks.Create(projectID, userID, services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		Status:       req.Status,
		Priority:     req.Priority,
		StoryPoints:  req.StoryPoints,
		TimeEstimate: req.TimeEstimate,
		TimeSpent:    req.TimeSpent,
		DueDate:      req.DueDate,
		ParentID:     req.ParentID,
		AssigneeIDs:  req.Assignees,
		LabelIDs:     req.Labels,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	notifyAssigned(h.db, h.hub, task, req.Assignees, userID)
	h.hub.BroadcastProject(task.ProjectID, realtime.Event{
		Type:      "task_created",
		ProjectID: task.ProjectID,
		TaskID:    task.ID,
		ActorID:   userID,
	})
	respondData(c, http.StatusCreated, task)
}

// Get handles GET /api/tasks/:id.
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.tasks.Get(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, task)
}

// Update handles PATCH /api/tasks/:id.
func (h *TaskHandler) Update(c *gin.Context) {
	userID := c.GetString("user_id")

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	task, err := h.tasks.Update(c.Param("id"), userID, services.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		Status:       req.Status,
		Priority:     req.Priority,
		StoryPoints:  req.StoryPoints,
		TimeEstimate: req.TimeEstimate,
		TimeSpent:    req.TimeSpent,
		DueDate:      req.DueDate,
		Assignees:    req.Assignees,
		Labels:       req.Labels,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if req.Assignees != nil {
		notifyAssigned(h.db, h.hub, task, *req.Assignees, userID)
	}
	h.hub.BroadcastProject(task.ProjectID, realtime.Event{
		Type:      "task_updated",
		ProjectID: task.ProjectID,
		TaskID:    task.ID,
		ActorID:   userID,
	})
	respondData(c, http.StatusOK, task)
}

// Move handles PATCH /api/tasks/:id/move.
func (h *TaskHandler) Move(c *gin.Context) {
	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	task, err := h.tasks.Move(c.Param("id"), req.Status, req.PositionIndex)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.hub.BroadcastProject(task.ProjectID, realtime.Event{
		Type:      "task_moved",
		ProjectID: task.ProjectID,
		TaskID:    task.ID,
		ActorID:   c.GetString("user_id"),
		Payload:   gin.H{"status": task.Status, "position": task.Position},
	})
	respondData(c, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/:id (soft delete, cascades one level
// to direct children).
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID := c.Param("id")

	task, err := h.tasks.Get(taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := h.tasks.SoftDelete(taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	h.hub.BroadcastProject(task.ProjectID, realtime.Event{
		Type:      "task_deleted",
		ProjectID: task.ProjectID,
		TaskID:    taskID,
		ActorID:   c.GetString("user_id"),
	})
	respondMessage(c, http.StatusOK, "Task deleted successfully")
}

// Restore handles POST /api/tasks/:id/restore.
func (h *TaskHandler) Restore(c *gin.Context) {
	task, err := h.tasks.Restore(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.hub.BroadcastProject(task.ProjectID, realtime.Event{
		Type:      "task_restored",
		ProjectID: task.ProjectID,
		TaskID:    task.ID,
		ActorID:   c.GetString("user_id"),
	})
	respondData(c, http.StatusOK, task)
}

// PermanentlyDelete handles DELETE /api/tasks/:id/permanent. Attachment
// blobs are removed from disk best-effort after the rows are gone.
func (h *TaskHandler) PermanentlyDelete(c *gin.Context) {
	taskID := c.Param("id")

	storedPaths, err := h.tasks.PermanentlyDelete(taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	for _, path := range storedPaths {
		_ = os.Remove(path)
	}

	respondMessage(c, http.StatusOK, "Task permanently deleted")
}
