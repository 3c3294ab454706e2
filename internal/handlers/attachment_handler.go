package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"planora-api/internal/config"
	"planora-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttachmentHandler stores uploaded files on disk and their metadata in
// the database.
type AttachmentHandler struct {
	db      *gorm.DB
	uploads config.Uploads
}

func NewAttachmentHandler(db *gorm.DB, uploads config.Uploads) *AttachmentHandler {
	return &AttachmentHandler{db: db, uploads: uploads}
}

// List handles GET /api/tasks/:id/attachments.
func (h *AttachmentHandler) List(c *gin.Context) {
	var attachments []models.Attachment
	if err := h.db.Where("task_id = ?", c.Param("id")).
		Order("created_at asc").
		Find(&attachments).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, attachments)
}

// Upload handles POST /api/tasks/:id/attachments (multipart form, field
// name "file"). The blob lands under the uploads dir keyed by a fresh
// uuid; the original filename survives only in the metadata row.
func (h *AttachmentHandler) Upload(c *gin.Context) {
	taskID := c.Param("id")

	var task models.Task
	if err := h.db.Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c)
			return
		}
		respondServiceError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "file field is required")
		return
	}
	if file.Size > h.uploads.MaxSizeBytes {
		respondBadRequest(c, "file exceeds the maximum allowed size")
		return
	}

	if err := os.MkdirAll(h.uploads.Dir, 0o755); err != nil {
		respondServiceError(c, err)
		return
	}

	attachment := models.Attachment{
		ID:          uuid.NewString(),
		TaskID:      task.ID,
		UploaderID:  c.GetString("user_id"),
		FileName:    filepath.Base(file.Filename),
		Size:        file.Size,
		ContentType: file.Header.Get("Content-Type"),
	}
	attachment.StoredPath = filepath.Join(h.uploads.Dir, attachment.ID+filepath.Ext(attachment.FileName))

	if err := c.SaveUploadedFile(file, attachment.StoredPath); err != nil {
		respondServiceError(c, err)
		return
	}
	if err := h.db.Create(&attachment).Error; err != nil {
		_ = os.Remove(attachment.StoredPath)
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, attachment)
}

// Download handles GET /api/attachments/:id and streams the blob.
func (h *AttachmentHandler) Download(c *gin.Context) {
	var attachment models.Attachment
	if err := h.db.Where("id = ?", c.Param("id")).First(&attachment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c)
			return
		}
		respondServiceError(c, err)
		return
	}

	c.FileAttachment(attachment.StoredPath, attachment.FileName)
}

// Delete handles DELETE /api/attachments/:id. The blob removal is
// best-effort; a missing file does not fail the request.
func (h *AttachmentHandler) Delete(c *gin.Context) {
	var attachment models.Attachment
	if err := h.db.Where("id = ?", c.Param("id")).First(&attachment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c)
			return
		}
		respondServiceError(c, err)
		return
	}

	if err := h.db.Delete(&attachment).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	_ = os.Remove(attachment.StoredPath)

	respondMessage(c, http.StatusOK, "Attachment deleted successfully")
}
