package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectRole is a member's role within a single project.
type ProjectRole string

const (
	ProjectRoleManager ProjectRole = "manager"
	ProjectRoleMember  ProjectRole = "member"
)

// Project groups tasks, sprints and labels under one board.
type Project struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	Key         string         `json:"key" gorm:"not null"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	OwnerID     string         `json:"ownerId" gorm:"column:owner_id;index;not null"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for the Project model
func (Project) TableName() string {
	return "projects"
}

// ProjectMember links a user to a project with a per-project role.
type ProjectMember struct {
	ID        uint        `json:"-" gorm:"primaryKey"`
	ProjectID string      `json:"projectId" gorm:"column:project_id;uniqueIndex:idx_project_member;not null"`
	UserID    string      `json:"userId" gorm:"column:user_id;uniqueIndex:idx_project_member;not null"`
	Role      ProjectRole `json:"role" gorm:"not null;default:'member'"`
	CreatedAt time.Time   `json:"createdAt"`
}

// TableName specifies the table name for the ProjectMember model
func (ProjectMember) TableName() string {
	return "project_members"
}
