package router

import (
	"github.com/labstack/echo/v4"

	"masterhub/internal/adapter/api/handler"
	"masterhub/internal/adapter/api/middleware"
)

func SetupReviewRouter(v1 *echo.Group, reviewHandler *handler.ReviewHandler, authMiddleware *middleware.AuthMiddleware) {
	v1.POST("/reviews", reviewHandler.CreateReview, authMiddleware.Authenticate)

	v1.GET("/users/:id/reviews", reviewHandler.ListForUser, authMiddleware.Authenticate)
	v1.GET("/users/:id/reviews/stats", reviewHandler.Stats, authMiddleware.Authenticate)
}
