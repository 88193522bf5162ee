package handler

import (
	"github.com/labstack/echo/v4"

	"masterhub/internal/usecase"
	"masterhub/pkg/response"
	"masterhub/pkg/utils"
)

type ReviewHandler struct {
	reviewUseCase *usecase.ReviewUseCase
}

func NewReviewHandler(reviewUseCase *usecase.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{
		reviewUseCase: reviewUseCase,
	}
}

type createReviewRequest struct {
	TargetID string `json:"target_id" validate:"required"`
	OrderID  string `json:"order_id" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment" validate:"max=2000"`
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	var req createReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	review, err := h.reviewUseCase.Create(c.Request().Context(), currentUser(c), usecase.CreateReviewInput{
		TargetID: req.TargetID,
		OrderID:  req.OrderID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, review)
}

func (h *ReviewHandler) ListForUser(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	reviews, total, err := h.reviewUseCase.ListForUser(c.Request().Context(), c.Param("id"), pagination)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, reviews, total, pagination.Page, pagination.PageSize)
}

func (h *ReviewHandler) Stats(c echo.Context) error {
	stats, err := h.reviewUseCase.Stats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stats)
}
