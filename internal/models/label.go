package models

import (
	"time"
)

// Label is a per-project tag attachable to tasks.
type Label struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	ProjectID string    `json:"projectId" gorm:"column:project_id;uniqueIndex:idx_project_label;not null"`
	Name      string    `json:"name" gorm:"uniqueIndex:idx_project_label;not null"`
	Color     string    `json:"color" gorm:"not null;default:'#808080'"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for the Label model
func (Label) TableName() string {
	return "labels"
}
