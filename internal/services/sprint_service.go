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

// statsTTL bounds staleness for cached sprint aggregates; every write
// touching a sprint's tasks also invalidates the entry directly.
const statsTTL = 30 * time.Second

// SprintService enforces the single-active-sprint rule and the
// end-of-sprint redistribution policy.
type SprintService struct {
	db    *gorm.DB
	stats cache.Cache[string, models.SprintStats]
}

func NewSprintService(db *gorm.DB, stats cache.Cache[string, models.SprintStats]) *SprintService {
	return &SprintService{db: db, stats: stats}
}

// CreateSprintInput carries the caller-supplied fields for a new sprint.
type CreateSprintInput struct {
	Name      string
	Goal      string
	StartDate *time.Time
	EndDate   *time.Time
	TaskIDs   []string
}

// Create starts a new sprint for the project. It is rejected while
// another sprint is active. The check runs inside the insert transaction
// and the store's partial unique index backs it against races. Tasks
// named in TaskIDs are pulled into the sprint with status forced to todo.
func (s *SprintService) Create(projectID string, in CreateSprintInput) (*models.Sprint, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: sprint name is required", ErrValidation)
	}

	sprint := models.Sprint{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      strings.TrimSpace(in.Name),
		Goal:      in.Goal,
		Status:    models.SprintActive,
		StartDate: time.Now(),
		EndDate:   in.EndDate,
	}
	if in.StartDate != nil {
		sprint.StartDate = *in.StartDate
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&models.Sprint{}).
			Where("project_id = ? AND status = ?", projectID, models.SprintActive).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrSprintAlreadyActive
		}

		if err := tx.Create(&sprint).Error; err != nil {
			return err
		}

		if len(in.TaskIDs) > 0 {
			// Entering a sprint always resets a task to todo, whatever
			// its status was. Scoped to the sprint's own project.
			if err := tx.Model(&models.Task{}).
				Where("id IN ? AND project_id = ?", in.TaskIDs, projectID).
				Updates(map[string]any{
					"sprint_id": sprint.ID,
					"status":    models.StatusTodo,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSprintAlreadyActive) {
			return nil, ErrSprintAlreadyActive
		}
		return nil, fmt.Errorf("create sprint: %w", err)
	}

	return s.Get(sprint.ID)
}

// Get returns the sprint with its non-deleted tasks loaded.
func (s *SprintService) Get(sprintID string) (*models.Sprint, error) {
	var sprint models.Sprint
	if err := s.db.Where("id = ?", sprintID).First(&sprint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch sprint: %w", err)
	}

	var tasks []models.Task
	if err := s.db.Where("sprint_id = ?", sprint.ID).
		Order("position asc, task_number asc").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("load sprint tasks: %w", err)
	}
	sprint.Tasks = tasks
	return &sprint, nil
}

// ListByProject returns the project's sprints, newest first.
func (s *SprintService) ListByProject(projectID string) ([]models.Sprint, error) {
	var sprints []models.Sprint
	if err := s.db.Where("project_id = ?", projectID).
		Order("start_date desc").
		Find(&sprints).Error; err != nil {
		return nil, fmt.Errorf("list sprints: %w", err)
	}
	return sprints, nil
}

// End completes the sprint. Done tasks are always detached and keep
// their done status; tasks that are not done move back to the backlog
// only when moveIncompleteToBacklog is set. Ending is one-way: a
// completed sprint cannot be ended again.
func (s *SprintService) End(sprintID string, moveIncompleteToBacklog bool) (*models.Sprint, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sprint models.Sprint
		if err := tx.Where("id = ?", sprintID).First(&sprint).Error; err != nil {
			return err
		}
		if sprint.Status == models.SprintCompleted {
			return ErrSprintCompleted
		}

		endDate := time.Now()
		sprint.Status = models.SprintCompleted
		sprint.EndDate = &endDate
		if err := tx.Save(&sprint).Error; err != nil {
			return err
		}

		if moveIncompleteToBacklog {
			if err := tx.Model(&models.Task{}).
				Where("sprint_id = ? AND status <> ?", sprint.ID, models.StatusDone).
				Updates(map[string]any{
					"sprint_id": nil,
					"status":    models.StatusBacklog,
				}).Error; err != nil {
				return err
			}
		}

		// Completed work is detached from the sprint but never
		// reclassified, independent of the flag above.
		return tx.Model(&models.Task{}).
			Where("sprint_id = ? AND status = ?", sprint.ID, models.StatusDone).
			Update("sprint_id", nil).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, ErrSprintCompleted) {
			return nil, ErrSprintCompleted
		}
		return nil, fmt.Errorf("end sprint: %w", err)
	}

	s.stats.Delete(sprintID)
	return s.Get(sprintID)
}

// AddTasks pulls tasks into the sprint, forcing their status to todo
// regardless of what it was before.
func (s *SprintService) AddTasks(sprintID string, taskIDs []string) (*models.Sprint, error) {
	var sprint models.Sprint
	if err := s.db.Where("id = ?", sprintID).First(&sprint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch sprint: %w", err)
	}

	if len(taskIDs) > 0 {
		if err := s.db.Model(&models.Task{}).
			Where("id IN ? AND project_id = ?", taskIDs, sprint.ProjectID).
			Updates(map[string]any{
				"sprint_id": sprint.ID,
				"status":    models.StatusTodo,
			}).Error; err != nil {
			return nil, fmt.Errorf("add tasks to sprint: %w", err)
		}
	}

	s.stats.Delete(sprintID)
	return s.Get(sprintID)
}

// RemoveTasks releases tasks back to the backlog. Only tasks currently
// in this sprint are touched; one already moved elsewhere is skipped.
func (s *SprintService) RemoveTasks(sprintID string, taskIDs []string) (*models.Sprint, error) {
	var sprint models.Sprint
	if err := s.db.Where("id = ?", sprintID).First(&sprint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch sprint: %w", err)
	}

	if len(taskIDs) > 0 {
		if err := s.db.Model(&models.Task{}).
			Where("sprint_id = ? AND id IN ?", sprint.ID, taskIDs).
			Updates(map[string]any{
				"sprint_id": nil,
				"status":    models.StatusBacklog,
			}).Error; err != nil {
			return nil, fmt.Errorf("remove tasks from sprint: %w", err)
		}
	}

	s.stats.Delete(sprintID)
	return s.Get(sprintID)
}

// Delete releases every task still in the sprint back to the backlog
// (done tasks included, unlike End) and then removes the sprint row.
func (s *SprintService) Delete(sprintID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sprint models.Sprint
		if err := tx.Where("id = ?", sprintID).First(&sprint).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Task{}).
			Where("sprint_id = ?", sprint.ID).
			Updates(map[string]any{
				"sprint_id": nil,
				"status":    models.StatusBacklog,
			}).Error; err != nil {
			return err
		}

		return tx.Delete(&sprint).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete sprint: %w", err)
	}

	s.stats.Delete(sprintID)
	return nil
}

// Stats aggregates the sprint's non-deleted tasks: counts per status
// bucket, total story points, and points on done tasks. Tasks whose
// status maps to no bucket are excluded from the buckets but still count
// toward the totals. Results are cached until the next write to the
// sprint's tasks.
func (s *SprintService) Stats(sprintID string) (models.SprintStats, error) {
	if cached, ok := s.stats.Get(sprintID); ok {
		return cached, nil
	}

	var sprint models.Sprint
	if err := s.db.Where("id = ?", sprintID).First(&sprint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.SprintStats{}, ErrNotFound
		}
		return models.SprintStats{}, fmt.Errorf("fetch sprint: %w", err)
	}

	type row struct {
		Status models.TaskStatus
		Points *int
	}
	var rows []row
	if err := s.db.Model(&models.Task{}).
		Select("status, story_points as points").
		Where("sprint_id = ?", sprint.ID).
		Scan(&rows).Error; err != nil {
		return models.SprintStats{}, fmt.Errorf("compute sprint stats: %w", err)
	}

	var stats models.SprintStats
	for _, r := range rows {
		stats.Total++
		points := 0
		if r.Points != nil {
			points = *r.Points
		}
		stats.TotalPoints += points

		switch r.Status {
		case models.StatusBacklog:
			stats.Backlog++
		case models.StatusTodo:
			stats.Todo++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusDone:
			stats.Done++
			stats.CompletedPoints += points
		}
	}

	s.stats.Set(sprintID, stats, statsTTL)
	return stats, nil
}
