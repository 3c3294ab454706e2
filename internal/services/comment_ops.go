package services

import (
	"errors"
	"fmt"
	"strings"

	"planora-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AddComment attaches a comment to a task. The task must exist and not
// be soft-deleted.
func (s *TaskService) AddComment(taskID, authorID, body string) (*models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: comment body is required", ErrValidation)
	}

	var task models.Task
	if err := s.db.Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch task: %w", err)
	}

	comment := models.Comment{
		ID:       uuid.NewString(),
		TaskID:   task.ID,
		AuthorID: authorID,
		Body:     body,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &comment, nil
}

// UpdateComment replaces the body and stamps the edited flag.
func (s *TaskService) UpdateComment(commentID, body string) (*models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: comment body is required", ErrValidation)
	}

	var comment models.Comment
	if err := s.db.Where("id = ?", commentID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch comment: %w", err)
	}

	comment.Body = body
	comment.Edited = true
	if err := s.db.Save(&comment).Error; err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return &comment, nil
}

// DeleteComment soft-deletes a comment (timestamp only).
func (s *TaskService) DeleteComment(commentID string) error {
	var comment models.Comment
	if err := s.db.Where("id = ?", commentID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("fetch comment: %w", err)
	}
	if err := s.db.Delete(&comment).Error; err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// ListComments returns a task's live comments oldest first.
func (s *TaskService) ListComments(taskID string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := s.db.Where("task_id = ?", taskID).
		Order("created_at asc").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
