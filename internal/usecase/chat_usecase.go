package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"masterhub/internal/domain/entity"
	"masterhub/internal/domain/repository"
	"masterhub/internal/infrastructure/metrics"
	ws "masterhub/internal/infrastructure/websocket"
	"masterhub/pkg/errors"
	"masterhub/pkg/logger"
	"masterhub/pkg/utils"
)

const previewLength = 100

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	notifier    Notifier
	publisher   RealtimePublisher
	rateLimiter RateLimiter
	now         Clock
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	publisher RealtimePublisher,
	rateLimiter RateLimiter,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		publisher:   publisher,
		rateLimiter: rateLimiter,
		now:         time.Now,
	}
}

func (uc *ChatUseCase) SetClock(now Clock) {
	uc.now = now
}

type CreateRoomInput struct {
	ParticipantID string
	OrderID       string
}

type SendMessageInput struct {
	Content       string
	Type          entity.MessageType
	AttachmentURL string
}

type RoomResponse struct {
	*entity.ChatRoom
	UnreadCount int          `json:"unread_count"`
	OtherUser   *entity.User `json:"other_user,omitempty"`
}

type MarkMessageReadResponse struct {
	Message     *entity.Message `json:"message"`
	Changed     bool            `json:"changed"`
	UnreadCount int             `json:"unread_count"`
}

type MarkRoomReadResponse struct {
	RoomID      string `json:"room_id"`
	MarkedCount int    `json:"marked_count"`
	UnreadCount int    `json:"unread_count"`
}

type RoomUnread struct {
	RoomID      string `json:"room_id"`
	UnreadCount int    `json:"unread_count"`
	// Recomputed counts unread messages directly; it differs from
	// UnreadCount only if the counter drifted.
	Recomputed int `json:"recomputed"`
}

type UnreadSummary struct {
	TotalUnread int          `json:"total_unread"`
	Rooms       []RoomUnread `json:"rooms"`
}

func (uc *ChatUseCase) CreateRoom(ctx context.Context, userID string, input CreateRoomInput) (*RoomResponse, error) {
	if allowed, wait := uc.rateLimiter.Allow(userID, "create_chat"); !allowed {
		logger.Warn("CreateRoom Rate Limited: user %s must wait %v", userID, wait)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another chat")
	}

	if input.ParticipantID == "" {
		return nil, errors.Validation("participant_id is required")
	}
	if input.ParticipantID == userID {
		logger.Error("CreateRoom Error: user %s attempted to create chat with themselves", userID)
		return nil, errors.Validation("You cannot create a chat with yourself")
	}

	other, err := uc.userRepo.GetByID(ctx, input.ParticipantID)
	if err != nil {
		logger.Error("CreateRoom Error: participant %s: %v", input.ParticipantID, err)
		return nil, err
	}

	existing, err := uc.chatRepo.FindRoom(ctx, userID, input.ParticipantID, input.OrderID)
	if err == nil {
		return uc.withReadState(ctx, userID, existing, other), nil
	}
	if !errors.IsNotFound(err) {
		logger.Error("CreateRoom Error: failed to search for existing chat: %v", err)
		return nil, err
	}

	now := uc.now()
	room := &entity.ChatRoom{
		ID:             uuid.New().String(),
		ParticipantIDs: []string{userID, input.ParticipantID},
		OrderID:        input.OrderID,
		LastMessageAt:  now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	participants := make([]*entity.Participant, 0, len(room.ParticipantIDs))
	for _, id := range room.ParticipantIDs {
		participants = append(participants, &entity.Participant{
			RoomID:      room.ID,
			UserID:      id,
			UnreadCount: 0,
			LastSeen:    now,
			JoinedAt:    now,
		})
	}

	if err := uc.chatRepo.CreateRoom(ctx, room, participants); err != nil {
		logger.Error("CreateRoom Error: %v", err)
		return nil, err
	}

	return &RoomResponse{ChatRoom: room, OtherUser: other}, nil
}

func (uc *ChatUseCase) withReadState(ctx context.Context, userID string, room *entity.ChatRoom, other *entity.User) *RoomResponse {
	resp := &RoomResponse{ChatRoom: room, OtherUser: other}
	participant, err := uc.chatRepo.GetParticipant(ctx, room.ID, userID)
	if err != nil {
		logger.Warn("chat %s: cannot load read state for %s: %v", room.ID, userID, err)
		return resp
	}
	resp.UnreadCount = participant.UnreadCount
	return resp
}

func (uc *ChatUseCase) ListRooms(ctx context.Context, userID string, p utils.PaginationParams) ([]*RoomResponse, int64, error) {
	rooms, total, err := uc.chatRepo.ListRoomsByUser(ctx, userID, p.PageSize, p.Offset)
	if err != nil {
		logger.Error("ListRooms Error: %v", err)
		return nil, 0, err
	}

	out := make([]*RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, uc.withReadState(ctx, userID, room, nil))
	}
	return out, total, nil
}

// loadRoomFor returns the room if userID participates in it.
func (uc *ChatUseCase) loadRoomFor(ctx context.Context, userID, roomID string) (*entity.ChatRoom, error) {
	room, err := uc.chatRepo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, errors.Forbidden("User is not a participant in this chat", nil)
	}
	return room, nil
}

func (uc *ChatUseCase) GetRoom(ctx context.Context, userID, roomID string) (*RoomResponse, error) {
	room, err := uc.loadRoomFor(ctx, userID, roomID)
	if err != nil {
		logger.Error("GetRoom Error: %v", err)
		return nil, err
	}
	return uc.withReadState(ctx, userID, room, nil), nil
}

// SendMessage stores the message and bumps every other participant's
// unread counter.
func (uc *ChatUseCase) SendMessage(ctx context.Context, userID, roomID string, input SendMessageInput) (*entity.Message, error) {
	if allowed, wait := uc.rateLimiter.Allow(userID, "send_message"); !allowed {
		logger.Warn("SendMessage Rate Limited: user %s must wait %v", userID, wait)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please slow down")
	}

	if input.Type == "" {
		input.Type = entity.MessageTypeText
	}
	if !input.Type.Valid() {
		return nil, errors.Validation("type must be one of: TEXT IMAGE FILE")
	}
	content := strings.TrimSpace(input.Content)
	if content == "" && input.AttachmentURL == "" {
		return nil, errors.Validation("content or attachment_url is required")
	}
	if input.Type != entity.MessageTypeText && input.AttachmentURL == "" {
		return nil, errors.Validation("attachment_url is required for " + string(input.Type) + " messages")
	}

	room, err := uc.loadRoomFor(ctx, userID, roomID)
	if err != nil {
		logger.Error("SendMessage Error: %v", err)
		return nil, err
	}

	now := uc.now()
	message := &entity.Message{
		ID:            uuid.New().String(),
		RoomID:        room.ID,
		SenderID:      userID,
		Content:       content,
		Type:          input.Type,
		AttachmentURL: input.AttachmentURL,
		IsRead:        false,
		CreatedAt:     now,
	}
	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		logger.Error("SendMessage Error: failed to store message: %v", err)
		return nil, err
	}

	preview := previewOf(message)
	if err := uc.chatRepo.UpdateLastMessage(ctx, room.ID, preview, now); err != nil {
		logger.Error("SendMessage Error: failed to update room %s: %v", room.ID, err)
	}

	for _, recipientID := range room.ParticipantIDs {
		if recipientID == userID {
			continue
		}
		if err := uc.chatRepo.IncrementUnread(ctx, room.ID, recipientID); err != nil {
			logger.Error("SendMessage Error: failed to increment unread for %s: %v", recipientID, err)
		}
		publish(uc.publisher, "chat", recipientID, ws.EventNewMessage, message)
		notify(ctx, uc.notifier, "chat", SendNotificationInput{
			UserID:            recipientID,
			Type:              entity.NotificationNewMessage,
			Title:             "New message",
			Message:           preview,
			Priority:          entity.PriorityNormal,
			RelatedObjectType: "chat_room",
			RelatedObjectID:   room.ID,
			Data: map[string]interface{}{
				"room_id":    room.ID,
				"message_id": message.ID,
				"sender_id":  userID,
			},
		})
	}

	return message, nil
}

func previewOf(message *entity.Message) string {
	if message.Content == "" {
		switch message.Type {
		case entity.MessageTypeImage:
			return "[image]"
		default:
			return "[file]"
		}
	}
	runes := []rune(message.Content)
	if len(runes) > previewLength {
		return string(runes[:previewLength]) + "..."
	}
	return message.Content
}

// ListMessages returns the newest messages first and records that the
// caller has looked at the room.
func (uc *ChatUseCase) ListMessages(ctx context.Context, userID, roomID string, limit, offset int) ([]*entity.Message, int64, error) {
	if _, err := uc.loadRoomFor(ctx, userID, roomID); err != nil {
		logger.Error("ListMessages Error: %v", err)
		return nil, 0, err
	}

	messages, total, err := uc.chatRepo.ListMessages(ctx, roomID, limit, offset)
	if err != nil {
		logger.Error("ListMessages Error: %v", err)
		return nil, 0, err
	}

	if err := uc.chatRepo.TouchLastSeen(ctx, roomID, userID, uc.now()); err != nil {
		logger.Warn("ListMessages: failed to update last seen for %s: %v", userID, err)
	}
	return messages, total, nil
}

// MarkMessageRead flips one message to read. The caller's counter drops by
// one only when this call made the unread -> read transition, so repeats
// and own messages change nothing.
func (uc *ChatUseCase) MarkMessageRead(ctx context.Context, userID, messageID string) (*MarkMessageReadResponse, error) {
	message, err := uc.chatRepo.GetMessage(ctx, messageID)
	if err != nil {
		logger.Error("MarkMessageRead Error: %v", err)
		return nil, err
	}

	room, err := uc.loadRoomFor(ctx, userID, message.RoomID)
	if err != nil {
		logger.Error("MarkMessageRead Error: %v", err)
		return nil, err
	}

	resp := &MarkMessageReadResponse{Message: message}

	if message.SenderID != userID && !message.IsRead {
		now := uc.now()
		changed, err := uc.chatRepo.MarkMessageRead(ctx, message.ID, now)
		if err != nil {
			logger.Error("MarkMessageRead Error: %v", err)
			return nil, err
		}

		if changed {
			remaining, err := uc.chatRepo.DecrementUnread(ctx, room.ID, userID)
			if err != nil {
				logger.Error("MarkMessageRead Error: failed to decrement unread for %s: %v", userID, err)
				return nil, err
			}
			metrics.ChatReadOperations.WithLabelValues("message").Inc()

			message.IsRead = true
			message.ReadAt = &now
			resp.Changed = true
			resp.UnreadCount = remaining

			publish(uc.publisher, "chat", message.SenderID, ws.EventMessageRead, map[string]interface{}{
				"room_id":    room.ID,
				"message_id": message.ID,
				"reader_id":  userID,
				"read_at":    now,
			})
			return resp, nil
		}

		// Lost a race with another reader of the same message.
		if latest, err := uc.chatRepo.GetMessage(ctx, message.ID); err == nil {
			resp.Message = latest
		}
	}

	if participant, err := uc.chatRepo.GetParticipant(ctx, room.ID, userID); err == nil {
		resp.UnreadCount = participant.UnreadCount
	}
	return resp, nil
}

// MarkRoomRead marks every unread message from others as read and resets
// the caller's counter to zero.
func (uc *ChatUseCase) MarkRoomRead(ctx context.Context, userID, roomID string) (*MarkRoomReadResponse, error) {
	room, err := uc.loadRoomFor(ctx, userID, roomID)
	if err != nil {
		logger.Error("MarkRoomRead Error: %v", err)
		return nil, err
	}

	unread, err := uc.chatRepo.ListUnreadMessages(ctx, room.ID, userID)
	if err != nil {
		logger.Error("MarkRoomRead Error: %v", err)
		return nil, err
	}

	now := uc.now()
	marked := 0
	for _, message := range unread {
		changed, err := uc.chatRepo.MarkMessageRead(ctx, message.ID, now)
		if err != nil {
			logger.Error("MarkRoomRead Error: failed to mark message %s: %v", message.ID, err)
			continue
		}
		if changed {
			marked++
		}
	}

	if err := uc.chatRepo.ResetUnread(ctx, room.ID, userID, now); err != nil {
		logger.Error("MarkRoomRead Error: failed to reset unread for %s: %v", userID, err)
		return nil, err
	}
	metrics.ChatReadOperations.WithLabelValues("room").Inc()

	for _, id := range room.ParticipantIDs {
		if id == userID {
			continue
		}
		publish(uc.publisher, "chat", id, ws.EventRoomRead, map[string]interface{}{
			"room_id":      room.ID,
			"reader_id":    userID,
			"marked_count": marked,
			"read_at":      now,
		})
	}

	return &MarkRoomReadResponse{RoomID: room.ID, MarkedCount: marked, UnreadCount: 0}, nil
}

func (uc *ChatUseCase) UnreadSummary(ctx context.Context, userID string) (*UnreadSummary, error) {
	rooms, _, err := uc.chatRepo.ListRoomsByUser(ctx, userID, 0, 0)
	if err != nil {
		logger.Error("UnreadSummary Error: %v", err)
		return nil, err
	}

	summary := &UnreadSummary{Rooms: make([]RoomUnread, 0, len(rooms))}
	for _, room := range rooms {
		participant, err := uc.chatRepo.GetParticipant(ctx, room.ID, userID)
		if err != nil {
			logger.Warn("UnreadSummary: room %s: %v", room.ID, err)
			continue
		}
		unread, err := uc.chatRepo.ListUnreadMessages(ctx, room.ID, userID)
		if err != nil {
			logger.Error("UnreadSummary Error: %v", err)
			return nil, err
		}

		summary.TotalUnread += participant.UnreadCount
		summary.Rooms = append(summary.Rooms, RoomUnread{
			RoomID:      room.ID,
			UnreadCount: participant.UnreadCount,
			Recomputed:  len(unread),
		})
	}
	return summary, nil
}
