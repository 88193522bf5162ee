package router

import (
	"github.com/labstack/echo/v4"

	"masterhub/internal/adapter/api/handler"
	"masterhub/internal/adapter/api/middleware"
)

func SetupChatRouter(v1 *echo.Group, chatHandler *handler.ChatHandler, profileHandler *handler.ProfileHandler, authMiddleware *middleware.AuthMiddleware) {
	chatGroup := v1.Group("/chats")
	chatGroup.Use(authMiddleware.Authenticate)

	chatGroup.POST("", chatHandler.CreateRoom)
	chatGroup.GET("", chatHandler.ListRooms)
	chatGroup.GET("/unread", chatHandler.UnreadSummary)
	chatGroup.GET("/:id", chatHandler.GetRoom)
	chatGroup.PUT("/:id/read", chatHandler.MarkRoomRead)

	chatGroup.POST("/:id/messages", chatHandler.SendMessage)
	chatGroup.GET("/:id/messages", chatHandler.ListMessages)
	chatGroup.POST("/:id/attachments/presign", profileHandler.PresignAttachment)

	messageGroup := v1.Group("/messages")
	messageGroup.Use(authMiddleware.Authenticate)
	messageGroup.PUT("/:id/read", chatHandler.MarkMessageRead)
}
