package handlers

import (
	"errors"
	"log"
	"net/http"

	"planora-api/internal/services"

	"github.com/gin-gonic/gin"
)

// All endpoints answer with the same envelope:
// {success: bool, data?, message?, error?}.

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   message,
	})
}

func respondNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error":   "Resource not found",
	})
}

// respondServiceError maps the lifecycle services' sentinel errors onto
// the HTTP taxonomy. Unexpected store failures are logged and surface as
// a generic 500; the cause never reaches the client.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondNotFound(c)
	case errors.Is(err, services.ErrValidation):
		respondBadRequest(c, err.Error())
	case errors.Is(err, services.ErrSprintAlreadyActive):
		respondBadRequest(c, "There is already an active sprint for this project")
	case errors.Is(err, services.ErrSprintCompleted):
		respondBadRequest(c, "Sprint is already completed")
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Operation failed",
		})
	}
}
