package handlers

import (
	"errors"
	"net/http"
	"strings"

	"planora-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LabelHandler serves per-project label CRUD.
type LabelHandler struct {
	db *gorm.DB
}

func NewLabelHandler(db *gorm.DB) *LabelHandler {
	return &LabelHandler{db: db}
}

// LabelRequest represents the label creation payload
type LabelRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// List handles GET /api/projects/:id/labels.
func (h *LabelHandler) List(c *gin.Context) {
	var labels []models.Label
	if err := h.db.Where("project_id = ?", c.Param("id")).
		Order("name asc").
		Find(&labels).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, labels)
}

// Create handles POST /api/projects/:id/labels.
func (h *LabelHandler) Create(c *gin.Context) {
	var req LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	label := models.Label{
		ID:        uuid.NewString(),
		ProjectID: c.Param("id"),
		Name:      strings.TrimSpace(req.Name),
		Color:     req.Color,
	}
	if label.Color == "" {
		label.Color = "#808080"
	}
	if err := h.db.Create(&label).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			respondBadRequest(c, "Label already exists in this project")
			return
		}
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, label)
}

// Delete handles DELETE /api/labels/:id. Task links to the label are
// removed alongside it.
func (h *LabelHandler) Delete(c *gin.Context) {
	labelID := c.Param("id")

	var label models.Label
	if err := h.db.Where("id = ?", labelID).First(&label).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c)
			return
		}
		respondServiceError(c, err)
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("label_id = ?", label.ID).Delete(&models.TaskLabel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&label).Error
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Label deleted successfully")
}
