package models

import (
	"time"
)

// NotificationType names the event a notification describes.
type NotificationType string

const (
	NotifyTaskAssigned NotificationType = "task_assigned"
	NotifyCommentAdded NotificationType = "comment_added"
)

// Notification is a per-user inbox entry, also pushed over the user's
// private realtime channel at creation time.
type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey"`
	UserID    string           `json:"userId" gorm:"column:user_id;index;not null"`
	Type      NotificationType `json:"type" gorm:"not null"`
	Message   string           `json:"message" gorm:"not null"`
	ProjectID string           `json:"projectId" gorm:"column:project_id"`
	TaskID    string           `json:"taskId" gorm:"column:task_id"`
	Read      bool             `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time        `json:"createdAt"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
