package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"masterhub/internal/usecase"
	"masterhub/pkg/response"
	"masterhub/pkg/utils"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

type registerDeviceRequest struct {
	Token string `json:"token" validate:"required"`
}

func (h *NotificationHandler) List(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)
	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread_only"))

	notifications, total, err := h.notificationUseCase.List(c.Request().Context(), currentUser(c), usecase.ListNotificationsInput{
		UnreadOnly: unreadOnly,
		Pagination: pagination,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, notifications, total, pagination.Page, pagination.PageSize)
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	count, err := h.notificationUseCase.UnreadCount(c.Request().Context(), currentUser(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, count)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	notification, err := h.notificationUseCase.MarkRead(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, notification)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	updated, err := h.notificationUseCase.MarkAllRead(c.Request().Context(), currentUser(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int{"updated": updated})
}

func (h *NotificationHandler) Delete(c echo.Context) error {
	if err := h.notificationUseCase.Delete(c.Request().Context(), currentUser(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Notification deleted"})
}

func (h *NotificationHandler) DeleteAll(c echo.Context) error {
	deleted, err := h.notificationUseCase.DeleteAll(c.Request().Context(), currentUser(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int{"deleted": deleted})
}

func (h *NotificationHandler) RegisterDevice(c echo.Context) error {
	var req registerDeviceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	if err := h.notificationUseCase.RegisterDevice(c.Request().Context(), currentUser(c), req.Token); err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]string{"message": "Device registered"})
}
