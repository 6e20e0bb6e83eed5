package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/okan/urcp/internal/app/controllers"
	"github.com/okan/urcp/internal/app/models"
	"github.com/okan/urcp/internal/app/models/dto"
	"github.com/okan/urcp/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	projectController *controllers.ProjectController,
	userController *controllers.UserController,
	notificationController *controllers.NotificationController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// Project browsing is public; everything that mutates requires auth
	v1.GET("/projects", projectController.GetAllProjects)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		projects := authenticated.Group("/projects")
		{
			projects.POST("", projectController.CreateProject)
			projects.GET("/my", projectController.GetMyProjects)
			projects.GET("/pending", authMiddleware.RoleRequired(models.RoleFaculty), projectController.GetPendingProjects)
			projects.PUT("/:id", projectController.UpdateProject)
			projects.DELETE("/:id", projectController.DeleteProject)
			projects.PUT("/:id/status", projectController.SetProjectStatus)
			projects.POST("/:id/approve-as-mentor", projectController.ApproveAsMentor)
			projects.PUT("/:id/progress", projectController.UpdateProgress)
			projects.POST("/:id/participation", projectController.Participate)
			projects.POST("/:id/comments", projectController.AddComment)
			projects.POST("/:id/attachments", projectController.AddAttachment)
			projects.DELETE("/:id/attachments/:attachmentId", projectController.DeleteAttachment)
		}

		users := authenticated.Group("/users")
		{
			users.GET("", userController.GetAllUsers)
			users.GET("/me", userController.GetMe)
			users.PUT("/me", userController.UpdateMe)
		}

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("", notificationController.GetNotifications)
			notifications.GET("/unread-count", notificationController.GetUnreadCount)
			notifications.PUT("/:id/read", notificationController.MarkRead)
			notifications.PUT("/read-all", notificationController.MarkAllRead)
		}
	}

	// Project detail is public but must come after the static /my and
	// /pending registrations above
	v1.GET("/projects/:id", projectController.GetProjectByID)

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})
}
