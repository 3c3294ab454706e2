package handlers

import (
	"net/http"
	"time"

	"planora-api/internal/realtime"
	"planora-api/internal/services"

	"github.com/gin-gonic/gin"
)

// SprintHandler exposes the sprint lifecycle over HTTP.
type SprintHandler struct {
	sprints *services.SprintService
	hub     *realtime.Hub
}

func NewSprintHandler(sprints *services.SprintService, hub *realtime.Hub) *SprintHandler {
	return &SprintHandler{sprints: sprints, hub: hub}
}

// CreateSprintRequest represents the sprint creation payload
type CreateSprintRequest struct {
	Name      string     `json:"name" binding:"required"`
	Goal      string     `json:"goal"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	TaskIDs   []string   `json:"task_ids"`
}

// EndSprintRequest represents the sprint end payload. The flag defaults
// to true when the body omits it.
type EndSprintRequest struct {
	MoveIncompleteToBacklog *bool `json:"move_incomplete_to_backlog"`
}

// SprintTasksRequest names tasks to add to or remove from a sprint.
type SprintTasksRequest struct {
	TaskIDs []string `json:"task_ids" binding:"required"`
}

// ListByProject handles GET /api/projects/:id/sprints.
func (h *SprintHandler) ListByProject(c *gin.Context) {
	sprints, err := h.sprints.ListByProject(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, sprints)
}

// Create handles POST /api/projects/:id/sprints. Rejected with 400 while
// the project already has an active sprint.
func (h *SprintHandler) Create(c *gin.Context) {
	projectID := c.Param("id")

	var req CreateSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	sprint, err := h.sprints.Create(projectID, services.CreateSprintInput{
		Name:      req.Name,
		Goal:      req.Goal,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		TaskIDs:   req.TaskIDs,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.hub.BroadcastProject(projectID, realtime.Event{
		Type:      "sprint_started",
		ProjectID: projectID,
		SprintID:  sprint.ID,
		ActorID:   c.GetString("user_id"),
	})
	respondData(c, http.StatusCreated, sprint)
}

// Get handles GET /api/sprints/:id.
func (h *SprintHandler) Get(c *gin.Context) {
	sprint, err := h.sprints.Get(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, sprint)
}

// End handles PATCH /api/sprints/:id/end.
func (h *SprintHandler) End(c *gin.Context) {
	var req EndSprintRequest
	// An empty body means "use the defaults"; only malformed JSON fails.
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondBadRequest(c, err.Error())
		return
	}

	moveIncomplete := true
	if req.MoveIncompleteToBacklog != nil {
		moveIncomplete = *req.MoveIncompleteToBacklog
	}

	sprint, err := h.sprints.End(c.Param("id"), moveIncomplete)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.hub.BroadcastProject(sprint.ProjectID, realtime.Event{
		Type:      "sprint_ended",
		ProjectID: sprint.ProjectID,
		SprintID:  sprint.ID,
		ActorID:   c.GetString("user_id"),
	})
	respondData(c, http.StatusOK, sprint)
}

// AddTasks handles POST /api/sprints/:id/tasks.
func (h *SprintHandler) AddTasks(c *gin.Context) {
	var req SprintTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	sprint, err := h.sprints.AddTasks(c.Param("id"), req.TaskIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.hub.BroadcastProject(sprint.ProjectID, realtime.Event{
		Type:      "sprint_tasks_added",
		ProjectID: sprint.ProjectID,
		SprintID:  sprint.ID,
		ActorID:   c.GetString("user_id"),
		Payload:   gin.H{"task_ids": req.TaskIDs},
	})
	respondData(c, http.StatusOK, sprint)
}

// RemoveTasks handles DELETE /api/sprints/:id/tasks.
func (h *SprintHandler) RemoveTasks(c *gin.Context) {
	var req SprintTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	sprint, err := h.sprints.RemoveTasks(c.Param("id"), req.TaskIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.hub.BroadcastProject(sprint.ProjectID, realtime.Event{
		Type:      "sprint_tasks_removed",
		ProjectID: sprint.ProjectID,
		SprintID:  sprint.ID,
		ActorID:   c.GetString("user_id"),
		Payload:   gin.H{"task_ids": req.TaskIDs},
	})
	respondData(c, http.StatusOK, sprint)
}

// Delete handles DELETE /api/sprints/:id. Every task still in the
// sprint is released back to the backlog first.
func (h *SprintHandler) Delete(c *gin.Context) {
	sprintID := c.Param("id")

	sprint, err := h.sprints.Get(sprintID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := h.sprints.Delete(sprintID); err != nil {
		respondServiceError(c, err)
		return
	}

	h.hub.BroadcastProject(sprint.ProjectID, realtime.Event{
		Type:      "sprint_deleted",
		ProjectID: sprint.ProjectID,
		SprintID:  sprintID,
		ActorID:   c.GetString("user_id"),
	})
	respondMessage(c, http.StatusOK, "Sprint deleted successfully")
}

// Stats handles GET /api/sprints/:id/stats.
func (h *SprintHandler) Stats(c *gin.Context) {
	stats, err := h.sprints.Stats(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, stats)
}
