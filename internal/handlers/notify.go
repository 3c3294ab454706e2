package handlers

import (
	"fmt"
	"log"

	"planora-api/internal/models"
	"planora-api/internal/realtime"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// notify stores a notification row and pushes it to the user's private
// channel. Failures are logged, never surfaced: notifications are
// fire-and-forget and must not fail the triggering request.
func notify(db *gorm.DB, hub *realtime.Hub, n models.Notification) {
	n.ID = uuid.NewString()
	if err := db.Create(&n).Error; err != nil {
		log.Printf("store notification: %v", err)
		return
	}
	hub.BroadcastUser(n.UserID, realtime.Event{
		Type:      "notification",
		ProjectID: n.ProjectID,
		TaskID:    n.TaskID,
		Payload:   n,
	})
}

// notifyAssigned tells each assignee about their assignment, skipping
// the actor assigning themselves.
func notifyAssigned(db *gorm.DB, hub *realtime.Hub, task *models.Task, assigneeIDs []string, actorID string) {
	for _, userID := range assigneeIDs {
		if userID == actorID {
			continue
		}
		notify(db, hub, models.Notification{
			UserID:    userID,
			Type:      models.NotifyTaskAssigned,
			Message:   fmt.Sprintf("You were assigned to task #%d: %s", task.TaskNumber, task.Title),
			ProjectID: task.ProjectID,
			TaskID:    task.ID,
		})
	}
}
