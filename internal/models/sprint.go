package models

import (
	"time"
)

// SprintStatus is the lifecycle state of a sprint. The only transition is
// active -> completed; there is no planning state.
type SprintStatus string

const (
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
)

// Sprint is a time-boxed grouping of tasks for a project. At most one
// sprint per project may be active at a time; the store enforces this
// with a partial unique index on (project_id) where status='active'.
type Sprint struct {
	ID        string       `json:"id" gorm:"primaryKey"`
	ProjectID string       `json:"projectId" gorm:"column:project_id;index;not null"`
	Name      string       `json:"name" gorm:"not null"`
	Goal      string       `json:"goal"`
	Status    SprintStatus `json:"status" gorm:"not null;default:'active'"`
	StartDate time.Time    `json:"startDate" gorm:"column:start_date;not null"`
	EndDate   *time.Time   `json:"endDate" gorm:"column:end_date"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`

	Tasks []Task `json:"tasks,omitempty" gorm:"-"`
}

// TableName specifies the table name for the Sprint model
func (Sprint) TableName() string {
	return "sprints"
}

// SprintStats aggregates a sprint's tasks by status bucket. Tasks whose
// status maps to no bucket are excluded from the buckets but still count
// toward Total and TotalPoints.
type SprintStats struct {
	Total           int `json:"total"`
	Backlog         int `json:"backlog"`
	Todo            int `json:"todo"`
	InProgress      int `json:"inProgress"`
	Done            int `json:"done"`
	TotalPoints     int `json:"totalPoints"`
	CompletedPoints int `json:"completedPoints"`
}
