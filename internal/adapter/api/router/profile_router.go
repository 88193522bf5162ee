package router

import (
	"github.com/labstack/echo/v4"

	"masterhub/internal/adapter/api/handler"
	"masterhub/internal/adapter/api/middleware"
)

func SetupProfileRouter(v1 *echo.Group, profileHandler *handler.ProfileHandler, authMiddleware *middleware.AuthMiddleware) {
	profileGroup := v1.Group("/profile")
	profileGroup.Use(authMiddleware.Authenticate)

	profileGroup.POST("", profileHandler.CreateProfile)
	profileGroup.GET("", profileHandler.GetProfile)
	profileGroup.PUT("", profileHandler.UpdateProfile)
	profileGroup.POST("/avatar", profileHandler.UploadAvatar)

	v1.GET("/users/:id", profileHandler.GetUser, authMiddleware.Authenticate)
}
