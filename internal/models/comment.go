package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a user note on a task. Deletion is soft (timestamp only).
type Comment struct {
	ID        string         `json:"id" gorm:"primaryKey"`
	TaskID    string         `json:"taskId" gorm:"column:task_id;index;not null"`
	AuthorID  string         `json:"authorId" gorm:"column:author_id;not null"`
	Body      string         `json:"body" gorm:"not null"`
	Edited    bool           `json:"edited" gorm:"not null;default:false"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for the Comment model
func (Comment) TableName() string {
	return "comments"
}
