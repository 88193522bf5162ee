package router

import (
	"github.com/labstack/echo/v4"

	"masterhub/internal/adapter/api/handler"
	"masterhub/internal/adapter/api/middleware"
)

type Handlers struct {
	Chat         *handler.ChatHandler
	Notification *handler.NotificationHandler
	Tracking     *handler.TrackingHandler
	Review       *handler.ReviewHandler
	Matching     *handler.MatchingHandler
	Profile      *handler.ProfileHandler
	WebSocket    *handler.WebSocketHandler
	Health       *handler.HealthHandler
	DevToken     *handler.DevTokenHandler
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware, rateLimit *middleware.RateLimitMiddleware) {
	v1 := e.Group("/v1")
	if rateLimit != nil {
		v1.Use(rateLimit.Limit)
	}

	SetupChatRouter(v1, h.Chat, h.Profile, authMiddleware)
	SetupNotificationRouter(v1, h.Notification, authMiddleware)
	SetupTrackingRouter(v1, h.Tracking, authMiddleware)
	SetupReviewRouter(v1, h.Review, authMiddleware)
	SetupMatchingRouter(v1, h.Matching, authMiddleware)
	SetupProfileRouter(v1, h.Profile, authMiddleware)
	SetupWebSocketRouter(e, h.WebSocket, authMiddleware)
	SetupHealthRouter(e, h.Health)
	if h.DevToken != nil {
		SetupDevRouter(e, h.DevToken)
	}
}
