package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"masterhub/internal/usecase"
	"masterhub/pkg/response"
)

type MatchingHandler struct {
	matchingUseCase *usecase.MatchingUseCase
}

func NewMatchingHandler(matchingUseCase *usecase.MatchingUseCase) *MatchingHandler {
	return &MatchingHandler{
		matchingUseCase: matchingUseCase,
	}
}

// MatchMasters ranks masters by proximity to the requested city, falling
// back to the caller's own city.
func (h *MatchingHandler) MatchMasters(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	matches, err := h.matchingUseCase.RankMasters(c.Request().Context(), currentUser(c), usecase.RankMastersInput{
		City:     c.QueryParam("city"),
		Category: c.QueryParam("category"),
		Limit:    limit,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, matches)
}
