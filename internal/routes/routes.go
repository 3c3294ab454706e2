package routes

import (
	"planora-api/internal/auth"
	"planora-api/internal/cache"
	"planora-api/internal/config"
	"planora-api/internal/handlers"
	"planora-api/internal/middleware"
	"planora-api/internal/models"
	"planora-api/internal/realtime"
	"planora-api/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires every handler onto a gin engine. All dependencies are
// injected; nothing touches global state.
func Setup(cfg config.Config, db *gorm.DB, hub *realtime.Hub) *gin.Engine {
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.Server.CORSAllowOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"success": true,
			"message": "Planora API is running",
		})
	})

	tokens := auth.NewManager(cfg.Auth)
	statsCache := cache.New[string, models.SprintStats](cache.Options{ConcurrencySafe: true})
	taskService := services.NewTaskService(db, statsCache)
	sprintService := services.NewSprintService(db, statsCache)

	authHandler := handlers.NewAuthHandler(db, tokens)
	userHandler := handlers.NewUserHandler(db)
	projectHandler := handlers.NewProjectHandler(db, hub)
	taskHandler := handlers.NewTaskHandler(taskService, db, hub)
	sprintHandler := handlers.NewSprintHandler(sprintService, hub)
	commentHandler := handlers.NewCommentHandler(taskService, db, hub)
	labelHandler := handlers.NewLabelHandler(db)
	attachmentHandler := handlers.NewAttachmentHandler(db, cfg.Uploads)
	notificationHandler := handlers.NewNotificationHandler(db)
	adminHandler := handlers.NewAdminHandler(db)
	wsHandler := handlers.NewWSHandler(hub)

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes (authentication required)
	protected := api.Group("")
	protected.Use(middleware.JWTAuth(tokens))
	{
		protected.GET("/me", authHandler.Me)
		protected.GET("/users", userHandler.List)

		protected.GET("/projects", projectHandler.List)
		protected.POST("/projects", projectHandler.Create)
		protected.GET("/projects/:id", projectHandler.Get)
		protected.PATCH("/projects/:id", projectHandler.Update)
		protected.DELETE("/projects/:id", projectHandler.Delete)
		protected.GET("/projects/:id/members", projectHandler.ListMembers)
		protected.POST("/projects/:id/members", projectHandler.AddMember)
		protected.DELETE("/projects/:id/members/:userId", projectHandler.RemoveMember)

		protected.GET("/projects/:id/tasks", taskHandler.ListByProject)
		protected.POST("/projects/:id/tasks", taskHandler.Create)
		protected.GET("/tasks/:id", taskHandler.Get)
		protected.PATCH("/tasks/:id", taskHandler.Update)
		protected.PATCH("/tasks/:id/move", taskHandler.Move)
		protected.DELETE("/tasks/:id", taskHandler.Delete)
		protected.POST("/tasks/:id/restore", taskHandler.Restore)
		protected.DELETE("/tasks/:id/permanent", taskHandler.PermanentlyDelete)

		protected.GET("/projects/:id/sprints", sprintHandler.ListByProject)
		protected.POST("/projects/:id/sprints", sprintHandler.Create)
		protected.GET("/sprints/:id", sprintHandler.Get)
		protected.PATCH("/sprints/:id/end", sprintHandler.End)
		protected.POST("/sprints/:id/tasks", sprintHandler.AddTasks)
		protected.DELETE("/sprints/:id/tasks", sprintHandler.RemoveTasks)
		protected.DELETE("/sprints/:id", sprintHandler.Delete)
		protected.GET("/sprints/:id/stats", sprintHandler.Stats)

		protected.GET("/tasks/:id/comments", commentHandler.List)
		protected.POST("/tasks/:id/comments", commentHandler.Create)
		protected.PATCH("/comments/:id", commentHandler.Update)
		protected.DELETE("/comments/:id", commentHandler.Delete)

		protected.GET("/projects/:id/labels", labelHandler.List)
		protected.POST("/projects/:id/labels", labelHandler.Create)
		protected.DELETE("/labels/:id", labelHandler.Delete)

		protected.GET("/tasks/:id/attachments", attachmentHandler.List)
		protected.POST("/tasks/:id/attachments", attachmentHandler.Upload)
		protected.GET("/attachments/:id", attachmentHandler.Download)
		protected.DELETE("/attachments/:id", attachmentHandler.Delete)

		protected.GET("/notifications", notificationHandler.List)
		protected.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)

		protected.GET("/ws", wsHandler.Serve)
	}

	// Admin console (authentication + admin role required)
	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly())
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.PATCH("/users/:id/ban", adminHandler.BanUser)
		admin.PATCH("/users/:id/unban", adminHandler.UnbanUser)
		admin.GET("/overview", adminHandler.Overview)
	}

	return ginRouter
}
