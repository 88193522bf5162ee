package router

import (
	"github.com/labstack/echo/v4"

	"masterhub/internal/adapter/api/handler"
	"masterhub/internal/adapter/api/middleware"
)

func SetupNotificationRouter(v1 *echo.Group, notificationHandler *handler.NotificationHandler, authMiddleware *middleware.AuthMiddleware) {
	notificationGroup := v1.Group("/notifications")
	notificationGroup.Use(authMiddleware.Authenticate)

	notificationGroup.GET("", notificationHandler.List)
	notificationGroup.GET("/unread-count", notificationHandler.UnreadCount)
	notificationGroup.PUT("/read-all", notificationHandler.MarkAllRead)
	notificationGroup.PUT("/:id/read", notificationHandler.MarkRead)
	notificationGroup.DELETE("", notificationHandler.DeleteAll)
	notificationGroup.DELETE("/:id", notificationHandler.Delete)
	notificationGroup.POST("/devices", notificationHandler.RegisterDevice)
}
