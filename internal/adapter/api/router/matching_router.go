package router

import (
	"github.com/labstack/echo/v4"

	"masterhub/internal/adapter/api/handler"
	"masterhub/internal/adapter/api/middleware"
)

func SetupMatchingRouter(v1 *echo.Group, matchingHandler *handler.MatchingHandler, authMiddleware *middleware.AuthMiddleware) {
	v1.GET("/masters/match", matchingHandler.MatchMasters, authMiddleware.Authenticate)
}
