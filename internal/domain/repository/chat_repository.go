package repository

import (
	"context"
	"time"

	"masterhub/internal/domain/entity"
)

type ChatRepository interface {
	// Rooms
	CreateRoom(ctx context.Context, room *entity.ChatRoom, participants []*entity.Participant) error
	GetRoom(ctx context.Context, id string) (*entity.ChatRoom, error)
	FindRoom(ctx context.Context, userID, otherUserID, orderID string) (*entity.ChatRoom, error)
	ListRoomsByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatRoom, int64, error)
	UpdateLastMessage(ctx context.Context, roomID, content string, at time.Time) error

	// Participant read state
	GetParticipant(ctx context.Context, roomID, userID string) (*entity.Participant, error)
	IncrementUnread(ctx context.Context, roomID, userID string) error
	// DecrementUnread lowers the counter by one, never below zero, and
	// returns the stored value.
	DecrementUnread(ctx context.Context, roomID, userID string) (int, error)
	ResetUnread(ctx context.Context, roomID, userID string, at time.Time) error
	TouchLastSeen(ctx context.Context, roomID, userID string, at time.Time) error

	// Messages
	CreateMessage(ctx context.Context, message *entity.Message) error
	GetMessage(ctx context.Context, id string) (*entity.Message, error)
	ListMessages(ctx context.Context, roomID string, limit, offset int) ([]*entity.Message, int64, error)
	// MarkMessageRead flips isRead and reports whether this call made the
	// transition. A message that is already read is left untouched.
	MarkMessageRead(ctx context.Context, messageID string, at time.Time) (bool, error)
	ListUnreadMessages(ctx context.Context, roomID, excludeSenderID string) ([]*entity.Message, error)
}
