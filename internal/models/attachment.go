package models

import (
	"time"
)

// Attachment is file metadata for a blob stored on disk; the row points
// at the stored path, the bytes live outside the database.
type Attachment struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	TaskID      string    `json:"taskId" gorm:"column:task_id;index;not null"`
	UploaderID  string    `json:"uploaderId" gorm:"column:uploader_id;not null"`
	FileName    string    `json:"fileName" gorm:"column:file_name;not null"`
	StoredPath  string    `json:"-" gorm:"column:stored_path;not null"`
	Size        int64     `json:"size" gorm:"not null"`
	ContentType string    `json:"contentType" gorm:"column:content_type"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the table name for the Attachment model
func (Attachment) TableName() string {
	return "attachments"
}
