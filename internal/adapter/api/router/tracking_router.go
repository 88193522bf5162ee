package router

import (
	"github.com/labstack/echo/v4"

	"masterhub/internal/adapter/api/handler"
	"masterhub/internal/adapter/api/middleware"
)

func SetupTrackingRouter(v1 *echo.Group, trackingHandler *handler.TrackingHandler, authMiddleware *middleware.AuthMiddleware) {
	// Share links may be opened without an account.
	v1.GET("/tracking/:id/share/:code", trackingHandler.ResolveShareLink, authMiddleware.OptionalAuth)

	trackingGroup := v1.Group("/tracking")
	trackingGroup.Use(authMiddleware.Authenticate)

	trackingGroup.POST("", trackingHandler.Start)
	trackingGroup.GET("/:id", trackingHandler.Get)
	trackingGroup.POST("/:id/locations", trackingHandler.RecordLocation)
	trackingGroup.GET("/:id/locations", trackingHandler.History)
	trackingGroup.PUT("/:id/pause", trackingHandler.Pause)
	trackingGroup.PUT("/:id/resume", trackingHandler.Resume)
	trackingGroup.PUT("/:id/stop", trackingHandler.Stop)

	trackingGroup.POST("/:id/share", trackingHandler.CreateShareLink)
	trackingGroup.GET("/:id/share", trackingHandler.ListShareLinks)
	trackingGroup.DELETE("/share/:code", trackingHandler.RevokeShareLink)
}
