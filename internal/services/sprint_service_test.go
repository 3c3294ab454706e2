package services

import (
	"testing"
	"time"

	"planora-api/internal/cache"
	"planora-api/internal/models"
	"planora-api/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSprintFixture(t *testing.T) (*gorm.DB, *SprintService, *TaskService) {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	stats := cache.New[string, models.SprintStats](cache.Options{ConcurrencySafe: true})
	return db, NewSprintService(db, stats), NewTaskService(db, stats)
}

func seedTask(t *testing.T, db *gorm.DB, projectID string, number int, status models.TaskStatus, points *int) models.Task {
	t.Helper()
	task := models.Task{
		ID:          uuid.NewString(),
		TaskNumber:  number,
		Title:       "task",
		Type:        models.TypeTask,
		Status:      status,
		Priority:    models.PriorityMedium,
		ProjectID:   projectID,
		ReporterID:  "u-1",
		StoryPoints: points,
	}
	require.NoError(t, db.Create(&task).Error)
	return task
}

func intPtr(v int) *int { return &v }

func TestCreateSprint_RejectsSecondActive(t *testing.T) {
	db, sprints, _ := newSprintFixture(t)

	_, err := sprints.Create("p-1", CreateSprintInput{Name: "Sprint 1"})
	require.NoError(t, err)

	_, err = sprints.Create("p-1", CreateSprintInput{Name: "Sprint 2"})
	require.ErrorIs(t, err, ErrSprintAlreadyActive)

	// the rejected create must not leave a row behind
	var count int64
	require.NoError(t, db.Model(&models.Sprint{}).Where("project_id = ?", "p-1").Count(&count).Error)
	require.EqualValues(t, 1, count)

	// a different project is unaffected
	_, err = sprints.Create("p-2", CreateSprintInput{Name: "Sprint 1"})
	require.NoError(t, err)
}

func TestCreateSprint_AllowedAfterEnd(t *testing.T) {
	_, sprints, _ := newSprintFixture(t)

	first, err := sprints.Create("p-1", CreateSprintInput{Name: "Sprint 1"})
	require.NoError(t, err)
	_, err = sprints.End(first.ID, true)
	require.NoError(t, err)

	_, err = sprints.Create("p-1", CreateSprintInput{Name: "Sprint 2"})
	require.NoError(t, err)
}

func TestCreateSprint_PullsTasksInAsTodo(t *testing.T) {
	db, sprints, _ := newSprintFixture(t)
	t1 := seedTask(t, db, "p-1", 1, models.StatusBacklog, nil)
	t2 := seedTask(t, db, "p-1", 2, models.StatusDone, nil)
	other := seedTask(t, db, "p-other", 1, models.StatusBacklog, nil)

	sprint, err := sprints.Create("p-1", CreateSprintInput{
		Name:    "Sprint 1",
		TaskIDs: []string{t1.ID, t2.ID, other.ID},
	})
	require.NoError(t, err)
	require.Equal(t, models.SprintActive, sprint.Status)
	require.Len(t, sprint.Tasks, 2)

	for _, task := range sprint.Tasks {
		require.Equal(t, models.StatusTodo, task.Status)
		require.Equal(t, sprint.ID, *task.SprintID)
	}

	// tasks from other projects must not be captured
	var untouched models.Task
	require.NoError(t, db.First(&untouched, "id = ?", other.ID).Error)
	require.Nil(t, untouched.SprintID)
}

func TestCreateSprint_EmptyName(t *testing.T) {
	_, sprints, _ := newSprintFixture(t)
	_, err := sprints.Create("p-1", CreateSprintInput{Name: "   "})
	require.ErrorIs(t, err, ErrValidation)
}

func TestEndSprint_DetachmentRules(t *testing.T) {
	db, sprints, _ := newSprintFixture(t)

	sprint, err := sprints.Create("p-1", CreateSprintInput{Name: "Sprint 1"})
	require.NoError(t, err)

	todoTask := seedTask(t, db, "p-1", 1, models.StatusTodo, nil)
	doneTask := seedTask(t, db, "p-1", 2, models.StatusDone, nil)
	inProgress := seedTask(t, db, "p-1", 3, models.StatusInProgress, nil)
	for _, id := range []string{todoTask.ID, doneTask.ID, inProgress.ID} {
		require.NoError(t, db.Model(&models.Task{}).Where("id = ?", id).Update("sprint_id", sprint.ID).Error)
	}

	ended, err := sprints.End(sprint.ID, true)
	require.NoError(t, err)
	require.Equal(t, models.SprintCompleted, ended.Status)
	require.NotNil(t, ended.EndDate)

	var task models.Task
	require.NoError(t, db.First(&task, "id = ?", todoTask.ID).Error)
	require.Nil(t, task.SprintID)
	require.Equal(t, models.StatusBacklog, task.Status)

	task = models.Task{}
	require.NoError(t, db.First(&task, "id = ?", inProgress.ID).Error)
	require.Nil(t, task.SprintID)
	require.Equal(t, models.StatusBacklog, task.Status)

	// done work is detached but never reclassified
	task = models.Task{}
	require.NoError(t, db.First(&task, "id = ?", doneTask.ID).Error)
	require.Nil(t, task.SprintID)
	require.Equal(t, models.StatusDone, task.Status)
}

func TestEndSprint_KeepIncompleteFlag(t *testing.T) {
	db, sprints, _ := newSprintFixture(t)

	sprint, err := sprints.Create("p-1", CreateSprintInput{Name: "Sprint 1"})
	require.NoError(t, err)

	todoTask := seedTask(t, db, "p-1", 1, models.StatusTodo, nil)
	doneTask := seedTask(t, db, "p-1", 2, models.StatusDone, nil)
	for _, id := range []string{todoTask.ID, doneTask.ID} {
		require.NoError(t, db.Model(&models.Task{}).Where("id = ?", id).Update("sprint_id", sprint.ID).Error)
	}

	_, err = sprints.End(sprint.ID, false)
	require.NoError(t, err)

	// non-done tasks keep both sprint and status
	var task models.Task
	require.NoError(t, db.First(&task, "id = ?", todoTask.ID).Error)
	require.NotNil(t, task.SprintID)
	require.Equal(t, models.StatusTodo, task.Status)

	// done tasks are detached regardless of the flag
	task = models.Task{}
	require.NoError(t, db.First(&task, "id = ?", doneTask.ID).Error)
	require.Nil(t, task.SprintID)
	require.Equal(t, models.StatusDone, task.Status)
}

func TestEndSprint_OneWay(t *testing.T) {
	_, sprints, _ := newSprintFixture(t)

	sprint, err := sprints.Create("p-1", CreateSprintInput{Name: "Sprint 1"})
	require.NoError(t, err)

	_, err = sprints.End(sprint.ID, true)
	require.NoError(t, err)
	_, err = sprints.End(sprint.ID, true)
	require.ErrorIs(t, err, ErrSprintCompleted)
}

func TestEndSprint_NotFound(t *testing.T) {
	_, sprints, _ := newSprintFixture(t)
	_, err := sprints.End("missing", true)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddTasks_AlwaysResetsToTodo(t *testing.T) {
	db, sprints, _ := newSprintFixture(t)

	sprint, err := sprints.Create("p-1", CreateSprintInput{Name: "Sprint 1"})
	require.NoError(t, err)

	statuses := []models.TaskStatus{
		models.StatusBacklog, models.StatusTodo, models.StatusInProgress, models.StatusDone,
	}
	var ids []string
	for i, status := range statuses {
		task := seedTask(t, db, "p-1", i+1, status, nil)
		ids = append(ids, task.ID)
	}

	updated, err := sprints.AddTasks(sprint.ID, ids)
	require.NoError(t, err)
	require.Len(t, updated.Tasks, len(statuses))
	for _, task := range updated.Tasks {
		require.Equal(t, models.StatusTodo, task.Status)
	}
}

func TestRemoveTasks_ScopedToSprint(t *testing.T) {
	db, sprints, _ := newSprintFixture(t)

	sprint, err := sprints.Create("p-1", CreateSprintInput{Name: "Sprint 1"})
	require.NoError(t, err)

	inSprint := seedTask(t, db, "p-1", 1, models.StatusInProgress, nil)
	require.NoError(t, db.Model(&models.Task{}).Where("id = ?", inSprint.ID).Update("sprint_id", sprint.ID).Error)
	// a task that already left the sprint must be untouched
	elsewhere := seedTask(t, db, "p-1", 2, models.StatusInProgress, nil)

	_, err = sprints.RemoveTasks(sprint.ID, []string{inSprint.ID, elsewhere.ID})
	require.NoError(t, err)

	var task models.Task
	require.NoError(t, db.First(&task, "id = ?", inSprint.ID).Error)
	require.Nil(t, task.SprintID)
	require.Equal(t, models.StatusBacklog, task.Status)

	task = models.Task{}
	require.NoError(t, db.First(&task, "id = ?", elsewhere.ID).Error)
	require.Equal(t, models.StatusInProgress, task.Status)
}

func TestDeleteSprint_ReleasesAllTasks(t *testing.T) {
	db, sprints, _ := newSprintFixture(t)

	sprint, err := sprints.Create("p-1", CreateSprintInput{Name: "Sprint 1"})
	require.NoError(t, err)

	doneTask := seedTask(t, db, "p-1", 1, models.StatusDone, nil)
	todoTask := seedTask(t, db, "p-1", 2, models.StatusTodo, nil)
	for _, id := range []string{doneTask.ID, todoTask.ID} {
		require.NoError(t, db.Model(&models.Task{}).Where("id = ?", id).Update("sprint_id", sprint.ID).Error)
	}

	require.NoError(t, sprints.Delete(sprint.ID))

	// unlike End, done tasks get no carve-out here
	for _, id := range []string{doneTask.ID, todoTask.ID} {
		var task models.Task
		require.NoError(t, db.First(&task, "id = ?", id).Error)
		require.Nil(t, task.SprintID)
		require.Equal(t, models.StatusBacklog, task.Status)
	}

	_, err = sprints.Get(sprint.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSprintStats(t *testing.T) {
	db, sprints, _ := newSprintFixture(t)

	sprint, err := sprints.Create("p-1", CreateSprintInput{Name: "Sprint 1"})
	require.NoError(t, err)

	assign := func(task models.Task) {
		require.NoError(t, db.Model(&models.Task{}).Where("id = ?", task.ID).Update("sprint_id", sprint.ID).Error)
	}
	assign(seedTask(t, db, "p-1", 1, models.StatusTodo, intPtr(3)))
	assign(seedTask(t, db, "p-1", 2, models.StatusInProgress, intPtr(5)))
	assign(seedTask(t, db, "p-1", 3, models.StatusDone, intPtr(8)))
	assign(seedTask(t, db, "p-1", 4, models.StatusDone, nil))
	// unknown status: out of every bucket, still in the totals
	assign(seedTask(t, db, "p-1", 5, models.TaskStatus("blocked"), intPtr(2)))

	// soft-deleted tasks are excluded entirely
	deleted := seedTask(t, db, "p-1", 6, models.StatusTodo, intPtr(13))
	assign(deleted)
	require.NoError(t, db.Delete(&models.Task{}, "id = ?", deleted.ID).Error)

	stats, err := sprints.Stats(sprint.ID)
	require.NoError(t, err)
	require.Equal(t, 5, stats.Total)
	require.Equal(t, 0, stats.Backlog)
	require.Equal(t, 1, stats.Todo)
	require.Equal(t, 1, stats.InProgress)
	require.Equal(t, 2, stats.Done)
	require.Equal(t, 18, stats.TotalPoints)
	require.Equal(t, 8, stats.CompletedPoints)

	// idempotent without intervening writes (second call is cached)
	again, err := sprints.Stats(sprint.ID)
	require.NoError(t, err)
	require.Equal(t, stats, again)
}

func TestSprintStats_InvalidatedByTaskWrites(t *testing.T) {
	db, sprints, tasks := newSprintFixture(t)

	sprint, err := sprints.Create("p-1", CreateSprintInput{Name: "Sprint 1"})
	require.NoError(t, err)
	task := seedTask(t, db, "p-1", 1, models.StatusTodo, intPtr(3))
	require.NoError(t, db.Model(&models.Task{}).Where("id = ?", task.ID).Update("sprint_id", sprint.ID).Error)

	before, err := sprints.Stats(sprint.ID)
	require.NoError(t, err)
	require.Equal(t, 0, before.Done)

	_, err = tasks.Move(task.ID, models.StatusDone, nil)
	require.NoError(t, err)

	after, err := sprints.Stats(sprint.ID)
	require.NoError(t, err)
	require.Equal(t, 1, after.Done)
	require.Equal(t, 3, after.CompletedPoints)
}

// Mirrors the full create -> conflict -> end walkthrough: two tasks
// enter the sprint as todo, one finishes, the sprint ends, and the
// incomplete one lands back in the backlog while the done one keeps its
// status.
func TestSprintLifecycle_EndToEnd(t *testing.T) {
	db, sprints, tasks := newSprintFixture(t)

	t1 := seedTask(t, db, "p-1", 1, models.StatusBacklog, nil)
	t2 := seedTask(t, db, "p-1", 2, models.StatusBacklog, nil)

	sprint, err := sprints.Create("p-1", CreateSprintInput{
		Name:    "Sprint 1",
		TaskIDs: []string{t1.ID, t2.ID},
	})
	require.NoError(t, err)
	for _, task := range sprint.Tasks {
		require.Equal(t, models.StatusTodo, task.Status)
	}

	_, err = sprints.Create("p-1", CreateSprintInput{Name: "Sprint 2"})
	require.ErrorIs(t, err, ErrSprintAlreadyActive)

	_, err = tasks.Move(t2.ID, models.StatusDone, nil)
	require.NoError(t, err)

	_, err = sprints.End(sprint.ID, true)
	require.NoError(t, err)

	var task models.Task
	require.NoError(t, db.First(&task, "id = ?", t1.ID).Error)
	require.Nil(t, task.SprintID)
	require.Equal(t, models.StatusBacklog, task.Status)

	task = models.Task{}
	require.NoError(t, db.First(&task, "id = ?", t2.ID).Error)
	require.Nil(t, task.SprintID)
	require.Equal(t, models.StatusDone, task.Status)
}

func TestCreateSprint_DefaultStartDate(t *testing.T) {
	_, sprints, _ := newSprintFixture(t)

	before := time.Now().Add(-time.Second)
	sprint, err := sprints.Create("p-1", CreateSprintInput{Name: "Sprint 1"})
	require.NoError(t, err)
	require.True(t, sprint.StartDate.After(before))
	require.Nil(t, sprint.EndDate)
}
