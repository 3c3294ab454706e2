package handlers

import (
	"net/http"
	"time"

	"planora-api/internal/cache"
	"planora-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserResponse is the safe public shape of a user.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

const userListCacheKey = "all-users"
const userListTTL = 30 * time.Second

// UserHandler serves the user directory. The full list is cached
// briefly; registration is rare enough that slight staleness is fine.
type UserHandler struct {
	db        *gorm.DB
	directory cache.Cache[string, []UserResponse]
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{
		db:        db,
		directory: cache.New[string, []UserResponse](cache.Options{ConcurrencySafe: true}),
	}
}

// List handles GET /api/users.
func (h *UserHandler) List(c *gin.Context) {
	if cached, ok := h.directory.Get(userListCacheKey); ok {
		respondData(c, http.StatusOK, cached)
		return
	}

	var users []models.User
	if err := h.db.Order("username asc").Find(&users).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, UserResponse{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
		})
	}

	h.directory.Set(userListCacheKey, resp, userListTTL)
	respondData(c, http.StatusOK, resp)
}
