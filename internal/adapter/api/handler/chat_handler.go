package handler

import (
	"github.com/labstack/echo/v4"

	"masterhub/internal/domain/entity"
	"masterhub/internal/usecase"
	"masterhub/pkg/response"
	"masterhub/pkg/utils"
)

const defaultMessagePage = 50

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type createRoomRequest struct {
	ParticipantID string `json:"participant_id" validate:"required"`
	OrderID       string `json:"order_id"`
}

type sendMessageRequest struct {
	Content       string `json:"content" validate:"max=4000"`
	Type          string `json:"type" validate:"omitempty,oneof=TEXT IMAGE FILE"`
	AttachmentURL string `json:"attachment_url,omitempty" validate:"omitempty,url"`
}

// CreateRoom opens a room with another user or returns the existing one.
func (h *ChatHandler) CreateRoom(c echo.Context) error {
	var req createRoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	room, err := h.chatUseCase.CreateRoom(c.Request().Context(), currentUser(c), usecase.CreateRoomInput{
		ParticipantID: req.ParticipantID,
		OrderID:       req.OrderID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, room)
}

func (h *ChatHandler) ListRooms(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	rooms, total, err := h.chatUseCase.ListRooms(c.Request().Context(), currentUser(c), pagination)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, rooms, total, pagination.Page, pagination.PageSize)
}

func (h *ChatHandler) GetRoom(c echo.Context) error {
	room, err := h.chatUseCase.GetRoom(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, room)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	messageType := entity.MessageType(req.Type)
	if messageType == "" {
		messageType = entity.MessageTypeText
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), currentUser(c), c.Param("id"), usecase.SendMessageInput{
		Content:       req.Content,
		Type:          messageType,
		AttachmentURL: req.AttachmentURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	limit, offset := limitOffset(c, defaultMessagePage)

	messages, total, err := h.chatUseCase.ListMessages(c.Request().Context(), currentUser(c), c.Param("id"), limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, offset/limit+1, limit)
}

func (h *ChatHandler) MarkMessageRead(c echo.Context) error {
	result, err := h.chatUseCase.MarkMessageRead(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *ChatHandler) MarkRoomRead(c echo.Context) error {
	result, err := h.chatUseCase.MarkRoomRead(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

// UnreadSummary returns per-room counters and their total.
func (h *ChatHandler) UnreadSummary(c echo.Context) error {
	summary, err := h.chatUseCase.UnreadSummary(c.Request().Context(), currentUser(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, summary)
}
