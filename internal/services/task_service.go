package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"planora-api/internal/cache"
	"planora-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskService owns every valid state transition a task can undergo and
// the side effects each transition implies. It holds an injected store
// handle and shares the sprint-stats cache with SprintService so task
// writes invalidate stale aggregates.
type TaskService struct {
	db    *gorm.DB
	stats cache.Cache[string, models.SprintStats]
}

func NewTaskService(db *gorm.DB, stats cache.Cache[string, models.SprintStats]) *TaskService {
	return &TaskService{db: db, stats: stats}
}

// CreateTaskInput carries the caller-supplied fields for a new task.
// Zero values fall back to defaults (status backlog, type task,
// priority medium).
type CreateTaskInput struct {
	Title        string
	Description  string
	Type         models.TaskType
	Status       models.TaskStatus
	Priority     models.TaskPriority
	StoryPoints  *int
	TimeEstimate *int
	TimeSpent    *int
	DueDate      *time.Time
	ParentID     *string
	AssigneeIDs  []string
	LabelIDs     []string
}

// UpdateTaskInput applies partial updates. Nil pointers leave the field
// untouched. Assignees and Labels, when non-nil, REPLACE the entire set;
// callers must always send the full desired set, not a delta.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Type         *models.TaskType
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	StoryPoints  *int
	TimeEstimate *int
	TimeSpent    *int
	DueDate      *time.Time
	Assignees    *[]string
	Labels       *[]string
}

// Create allocates the next sequential task number in the project and
// inserts the task together with its initial assignee and label rows in
// one transaction. Returns the hydrated task.
func (s *TaskService) Create(projectID, reporterID string, in CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if err := validatePoints(in.StoryPoints, in.TimeEstimate, in.TimeSpent); err != nil {
		return nil, err
	}

	task := models.Task{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Type:         in.Type,
		Status:       in.Status,
		Priority:     in.Priority,
		StoryPoints:  in.StoryPoints,
		TimeEstimate: in.TimeEstimate,
		TimeSpent:    in.TimeSpent,
		DueDate:      in.DueDate,
		ParentID:     in.ParentID,
		ProjectID:    projectID,
		ReporterID:   reporterID,
	}
	if task.Type == "" {
		task.Type = models.TypeTask
	}
	if task.Status == "" {
		task.Status = models.StatusBacklog
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Soft-deleted tasks keep their numbers reserved, so the scan is
		// unscoped: max existing + 1, or 1 when the project is empty.
		var maxNumber int
		if err := tx.Unscoped().Model(&models.Task{}).
			Where("project_id = ?", projectID).
			Select("COALESCE(MAX(task_number), 0)").
			Scan(&maxNumber).Error; err != nil {
			return err
		}
		task.TaskNumber = maxNumber + 1

		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		if err := insertAssignees(tx, task.ID, in.AssigneeIDs, reporterID); err != nil {
			return err
		}
		return insertLabels(tx, task.ID, in.LabelIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return s.Get(task.ID)
}

// Get returns a task with its assignees and labels loaded. Soft-deleted
// tasks are hidden.
func (s *TaskService) Get(taskID string) (*models.Task, error) {
	var task models.Task
	if err := s.db.Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch task: %w", err)
	}
	if err := s.hydrate([]*models.Task{&task}); err != nil {
		return nil, err
	}
	return &task, nil
}

// TaskFilter narrows project task listings.
type TaskFilter struct {
	Status   *models.TaskStatus
	SprintID *string // filter to a sprint; "" matches backlog tasks
}

// ListByProject returns the project's non-deleted tasks ordered by
// position then task number, with relations loaded.
func (s *TaskService) ListByProject(projectID string, filter TaskFilter) ([]models.Task, error) {
	query := s.db.Where("project_id = ?", projectID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SprintID != nil {
		if *filter.SprintID == "" {
			query = query.Where("sprint_id IS NULL")
		} else {
			query = query.Where("sprint_id = ?", *filter.SprintID)
		}
	}

	var tasks []models.Task
	if err := query.Order("position asc, task_number asc").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	refs := make([]*models.Task, len(tasks))
	for i := range tasks {
		refs[i] = &tasks[i]
	}
	if err := s.hydrate(refs); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update applies scalar field changes and, when present, replaces the
// assignee and label sets wholesale with assigned_by = updaterID.
func (s *TaskService) Update(taskID, updaterID string, in UpdateTaskInput) (*models.Task, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if err := validatePoints(in.StoryPoints, in.TimeEstimate, in.TimeSpent); err != nil {
		return nil, err
	}

	var task models.Task
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", taskID).First(&task).Error; err != nil {
			return err
		}

		if in.Title != nil {
			task.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			task.Description = *in.Description
		}
		if in.Type != nil {
			task.Type = *in.Type
		}
		if in.Status != nil {
			task.Status = *in.Status
		}
		if in.Priority != nil {
			task.Priority = *in.Priority
		}
		if in.StoryPoints != nil {
			task.StoryPoints = in.StoryPoints
		}
		if in.TimeEstimate != nil {
			task.TimeEstimate = in.TimeEstimate
		}
		if in.TimeSpent != nil {
			task.TimeSpent = in.TimeSpent
		}
		if in.DueDate != nil {
			task.DueDate = in.DueDate
		}

		if err := tx.Save(&task).Error; err != nil {
			return err
		}

		// Replace, don't diff: the full desired set comes in, the old
		// rows go out.
		if in.Assignees != nil {
			if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskAssignee{}).Error; err != nil {
				return err
			}
			if err := insertAssignees(tx, task.ID, *in.Assignees, updaterID); err != nil {
				return err
			}
		}
		if in.Labels != nil {
			if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskLabel{}).Error; err != nil {
				return err
			}
			if err := insertLabels(tx, task.ID, *in.Labels); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.invalidateStats(task.SprintID)
	return s.Get(task.ID)
}

// Move sets the task's status and, when given, its manual ordering index
// within the column. Any status may move to any other status; the board
// is free-form, not a state machine.
func (s *TaskService) Move(taskID string, newStatus models.TaskStatus, position *int) (*models.Task, error) {
	var task models.Task
	if err := s.db.Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch task: %w", err)
	}

	updates := map[string]any{"status": newStatus}
	if position != nil {
		updates["position"] = *position
	}
	if err := s.db.Model(&task).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("move task: %w", err)
	}

	s.invalidateStats(task.SprintID)
	return s.Get(task.ID)
}

// SoftDelete stamps a deletion timestamp on the task and on its direct
// children. The cascade is deliberately shallow: grandchildren are left
// untouched, mirroring the restore path which also acts on one level.
func (s *TaskService) SoftDelete(taskID string) error {
	var task models.Task
	if err := s.db.Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("fetch task: %w", err)
	}

	// Children may sit in other sprints; collect every affected sprint
	// before the rows disappear from the default scope.
	sprintIDs := map[string]struct{}{}
	if task.SprintID != nil {
		sprintIDs[*task.SprintID] = struct{}{}
	}
	var children []models.Task
	if err := s.db.Where("parent_id = ?", task.ID).Find(&children).Error; err != nil {
		return fmt.Errorf("fetch children: %w", err)
	}
	for _, c := range children {
		if c.SprintID != nil {
			sprintIDs[*c.SprintID] = struct{}{}
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&task).Error; err != nil {
			return err
		}
		return tx.Where("parent_id = ?", task.ID).Delete(&models.Task{}).Error
	})
	if err != nil {
		return fmt.Errorf("soft-delete task: %w", err)
	}

	for id := range sprintIDs {
		s.stats.Delete(id)
	}
	return nil
}

// Restore clears the deletion timestamp on the task itself. Children
// soft-deleted by the cascade are not auto-restored.
func (s *TaskService) Restore(taskID string) (*models.Task, error) {
	var task models.Task
	if err := s.db.Unscoped().Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch task: %w", err)
	}

	if err := s.db.Unscoped().Model(&task).Update("deleted_at", nil).Error; err != nil {
		return nil, fmt.Errorf("restore task: %w", err)
	}

	s.invalidateStats(task.SprintID)
	return s.Get(task.ID)
}

// PermanentlyDelete removes the task, its full descendant tree, and all
// dependent rows. Children are purged depth-first before their parent so
// no orphans survive a partial failure. Returns the stored paths of
// deleted attachments so the caller can remove the blobs from disk.
func (s *TaskService) PermanentlyDelete(taskID string) ([]string, error) {
	var task models.Task
	if err := s.db.Unscoped().Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch task: %w", err)
	}

	var storedPaths []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		paths, err := purgeTaskTree(tx, task.ID)
		storedPaths = paths
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("permanently delete task: %w", err)
	}

	s.invalidateStats(task.SprintID)
	return storedPaths, nil
}

// purgeTaskTree deletes the subtree rooted at taskID depth-first,
// including soft-deleted rows, together with comments, attachments and
// association rows.
func purgeTaskTree(tx *gorm.DB, taskID string) ([]string, error) {
	var childIDs []string
	if err := tx.Unscoped().Model(&models.Task{}).
		Where("parent_id = ?", taskID).
		Pluck("id", &childIDs).Error; err != nil {
		return nil, err
	}

	var storedPaths []string
	for _, childID := range childIDs {
		paths, err := purgeTaskTree(tx, childID)
		if err != nil {
			return nil, err
		}
		storedPaths = append(storedPaths, paths...)
	}

	if err := tx.Unscoped().Where("task_id = ?", taskID).Delete(&models.Comment{}).Error; err != nil {
		return nil, err
	}

	var paths []string
	if err := tx.Model(&models.Attachment{}).
		Where("task_id = ?", taskID).
		Pluck("stored_path", &paths).Error; err != nil {
		return nil, err
	}
	storedPaths = append(storedPaths, paths...)
	if err := tx.Where("task_id = ?", taskID).Delete(&models.Attachment{}).Error; err != nil {
		return nil, err
	}

	if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignee{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskLabel{}).Error; err != nil {
		return nil, err
	}

	if err := tx.Unscoped().Where("id = ?", taskID).Delete(&models.Task{}).Error; err != nil {
		return nil, err
	}
	return storedPaths, nil
}

func (s *TaskService) invalidateStats(sprintID *string) {
	if sprintID != nil {
		s.stats.Delete(*sprintID)
	}
}

func validatePoints(values ...*int) error {
	for _, v := range values {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: points and time values must be non-negative", ErrValidation)
		}
	}
	return nil
}

func insertAssignees(tx *gorm.DB, taskID string, userIDs []string, assignedBy string) error {
	for _, userID := range userIDs {
		row := models.TaskAssignee{
			TaskID:     taskID,
			UserID:     userID,
			AssignedBy: assignedBy,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func insertLabels(tx *gorm.DB, taskID string, labelIDs []string) error {
	for _, labelID := range labelIDs {
		row := models.TaskLabel{TaskID: taskID, LabelID: labelID}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// hydrate batch-loads assignees and labels for the given tasks.
func (s *TaskService) hydrate(tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]string, len(tasks))
	byID := make(map[string]*models.Task, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
		byID[t.ID] = t
		t.Assignees = []models.User{}
		t.Labels = []models.Label{}
	}

	var assigneeRows []models.TaskAssignee
	if err := s.db.Where("task_id IN ?", ids).Find(&assigneeRows).Error; err != nil {
		return fmt.Errorf("load assignees: %w", err)
	}
	if len(assigneeRows) > 0 {
		userIDs := make([]string, 0, len(assigneeRows))
		for _, row := range assigneeRows {
			userIDs = append(userIDs, row.UserID)
		}
		var users []models.User
		if err := s.db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return fmt.Errorf("load assignee users: %w", err)
		}
		userByID := make(map[string]models.User, len(users))
		for _, u := range users {
			userByID[u.ID] = u
		}
		for _, row := range assigneeRows {
			if u, ok := userByID[row.UserID]; ok {
				byID[row.TaskID].Assignees = append(byID[row.TaskID].Assignees, u)
			}
		}
	}

	var labelRows []models.TaskLabel
	if err := s.db.Where("task_id IN ?", ids).Find(&labelRows).Error; err != nil {
		return fmt.Errorf("load label links: %w", err)
	}
	if len(labelRows) > 0 {
		labelIDs := make([]string, 0, len(labelRows))
		for _, row := range labelRows {
			labelIDs = append(labelIDs, row.LabelID)
		}
		var labels []models.Label
		if err := s.db.Where("id IN ?", labelIDs).Find(&labels).Error; err != nil {
			return fmt.Errorf("load labels: %w", err)
		}
		labelByID := make(map[string]models.Label, len(labels))
		for _, l := range labels {
			labelByID[l.ID] = l
		}
		for _, row := range labelRows {
			if l, ok := labelByID[row.LabelID]; ok {
				byID[row.TaskID].Labels = append(byID[row.TaskID].Labels, l)
			}
		}
	}
	return nil
}
