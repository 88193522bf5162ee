package router

import (
	"github.com/labstack/echo/v4"

	"masterhub/internal/adapter/api/handler"
)

// SetupDevRouter is only called outside production.
func SetupDevRouter(e *echo.Echo, devTokenHandler *handler.DevTokenHandler) {
	e.GET("/_dev/token/:role", devTokenHandler.GenerateToken)
}
