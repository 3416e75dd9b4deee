package routes

import (
	"courtside/internal/handlers"
	"courtside/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupNotificationRoutes sets up routes for reading notifications
func SetupNotificationRoutes(r *gin.RouterGroup, notificationHandler *handlers.NotificationHandler, jwtSecret string) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthRequired(jwtSecret))
	{
		notifications.GET("/me", notificationHandler.GetMyNotifications)
	}
}
