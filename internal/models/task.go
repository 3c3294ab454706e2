package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskStatus represents the board column a task sits in.
type TaskStatus string

const (
	StatusBacklog    TaskStatus = "backlog"
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
)

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// TaskType distinguishes plain tasks from user stories.
type TaskType string

const (
	TypeTask      TaskType = "task"
	TypeUserStory TaskType = "user-story"
)

// Task represents a single work item on a project board.
//
// SprintID is nil for backlog tasks. ParentID links a subtask to its
// parent; the hierarchy is single-level in practice but not enforced.
type Task struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	TaskNumber   int            `json:"taskNumber" gorm:"column:task_number;not null"`
	Title        string         `json:"title" gorm:"not null"`
	Description  string         `json:"description"`
	Type         TaskType       `json:"type" gorm:"not null;default:'task'"`
	Status       TaskStatus     `json:"status" gorm:"not null;default:'backlog'"`
	Priority     TaskPriority   `json:"priority" gorm:"not null;default:'medium'"`
	StoryPoints  *int           `json:"storyPoints" gorm:"column:story_points"`
	TimeEstimate *int           `json:"timeEstimate" gorm:"column:time_estimate"`
	TimeSpent    *int           `json:"timeSpent" gorm:"column:time_spent"`
	DueDate      *time.Time     `json:"dueDate" gorm:"column:due_date"`
	Position     int            `json:"position" gorm:"not null;default:0"`
	ProjectID    string         `json:"projectId" gorm:"column:project_id;index;not null"`
	SprintID     *string        `json:"sprintId" gorm:"column:sprint_id;index"`
	ParentID     *string        `json:"parentId" gorm:"column:parent_id;index"`
	ReporterID   string         `json:"reporterId" gorm:"column:reporter_id;not null"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"deletedAt" gorm:"index"`

	Assignees []User  `json:"assignees,omitempty" gorm:"-"`
	Labels    []Label `json:"labels,omitempty" gorm:"-"`
}

// TableName specifies the table name for the Task model
func (Task) TableName() string {
	return "tasks"
}

// TaskAssignee links a task to an assignee. Assignee sets are always
// replaced wholesale on update, never diffed, so callers must send the
// complete desired set.
type TaskAssignee struct {
	ID         uint      `json:"-" gorm:"primaryKey"`
	TaskID     string    `json:"taskId" gorm:"column:task_id;uniqueIndex:idx_task_assignee;not null"`
	UserID     string    `json:"userId" gorm:"column:user_id;uniqueIndex:idx_task_assignee;not null"`
	AssignedBy string    `json:"assignedBy" gorm:"column:assigned_by;not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName specifies the table name for the TaskAssignee model
func (TaskAssignee) TableName() string {
	return "task_assignees"
}

// TaskLabel links a task to a label. Same replace-wholesale contract as
// TaskAssignee.
type TaskLabel struct {
	ID      uint   `json:"-" gorm:"primaryKey"`
	TaskID  string `json:"taskId" gorm:"column:task_id;uniqueIndex:idx_task_label;not null"`
	LabelID string `json:"labelId" gorm:"column:label_id;uniqueIndex:idx_task_label;not null"`
}

// TableName specifies the table name for the TaskLabel model
func (TaskLabel) TableName() string {
	return "task_labels"
}
