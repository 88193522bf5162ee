package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"masterhub/internal/domain/entity"
	"masterhub/pkg/errors"
	"masterhub/pkg/utils"
)

// ChatRepository is an in-memory repository.ChatRepository.
type ChatRepository struct {
	mu           sync.Mutex
	rooms        map[string]*entity.ChatRoom
	participants map[string]*entity.Participant
	messages     map[string]*entity.Message
}

func NewChatRepository() *ChatRepository {
	return &ChatRepository{
		rooms:        make(map[string]*entity.ChatRoom),
		participants: make(map[string]*entity.Participant),
		messages:     make(map[string]*entity.Message),
	}
}

func participantKey(roomID, userID string) string {
	return roomID + "/" + userID
}

func (r *ChatRepository) CreateRoom(ctx context.Context, room *entity.ChatRoom, participants []*entity.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *room
	cp.ParticipantIDs = append([]string(nil), room.ParticipantIDs...)
	r.rooms[room.ID] = &cp
	for _, p := range participants {
		pc := *p
		r.participants[participantKey(p.RoomID, p.UserID)] = &pc
	}
	return nil
}

func (r *ChatRepository) GetRoom(ctx context.Context, id string) (*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, errors.NotFound("Chat room", nil)
	}
	cp := *room
	return &cp, nil
}

func (r *ChatRepository) FindRoom(ctx context.Context, userID, otherUserID, orderID string) (*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.rooms {
		if room.OrderID == orderID && room.HasParticipant(userID) && room.HasParticipant(otherUserID) {
			cp := *room
			return &cp, nil
		}
	}
	return nil, errors.NotFound("Chat room", nil)
}

func (r *ChatRepository) ListRoomsByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatRoom, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rooms []*entity.ChatRoom
	for _, room := range r.rooms {
		if room.HasParticipant(userID) {
			cp := *room
			rooms = append(rooms, &cp)
		}
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].LastMessageAt.After(rooms[j].LastMessageAt)
	})

	start, end := utils.Window(len(rooms), offset, limit)
	return rooms[start:end], int64(len(rooms)), nil
}

func (r *ChatRepository) UpdateLastMessage(ctx context.Context, roomID, content string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return errors.NotFound("Chat room", nil)
	}
	room.LastMessage = content
	room.LastMessageAt = at
	room.UpdatedAt = at
	return nil
}

func (r *ChatRepository) GetParticipant(ctx context.Context, roomID, userID string) (*entity.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantKey(roomID, userID)]
	if !ok {
		return nil, errors.NotFound("Participant", nil)
	}
	cp := *p
	return &cp, nil
}

func (r *ChatRepository) IncrementUnread(ctx context.Context, roomID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantKey(roomID, userID)]
	if !ok {
		return errors.NotFound("Participant", nil)
	}
	p.UnreadCount++
	return nil
}

func (r *ChatRepository) DecrementUnread(ctx context.Context, roomID, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantKey(roomID, userID)]
	if !ok {
		return 0, errors.NotFound("Participant", nil)
	}
	if p.UnreadCount > 0 {
		p.UnreadCount--
	}
	return p.UnreadCount, nil
}

func (r *ChatRepository) ResetUnread(ctx context.Context, roomID, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantKey(roomID, userID)]
	if !ok {
		return errors.NotFound("Participant", nil)
	}
	p.UnreadCount = 0
	p.LastSeen = at
	return nil
}

func (r *ChatRepository) TouchLastSeen(ctx context.Context, roomID, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantKey(roomID, userID)]
	if !ok {
		return errors.NotFound("Participant", nil)
	}
	p.LastSeen = at
	return nil
}

// SetUnread forces a counter value, for seeding drifted state in tests.
func (r *ChatRepository) SetUnread(roomID, userID string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.participants[participantKey(roomID, userID)]; ok {
		p.UnreadCount = n
	}
}

func (r *ChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *message
	r.messages[message.ID] = &cp
	return nil
}

func (r *ChatRepository) GetMessage(ctx context.Context, id string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[id]
	if !ok {
		return nil, errors.NotFound("Message", nil)
	}
	cp := *m
	return &cp, nil
}

func (r *ChatRepository) ListMessages(ctx context.Context, roomID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var messages []*entity.Message
	for _, m := range r.messages {
		if m.RoomID == roomID {
			cp := *m
			messages = append(messages, &cp)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})

	start, end := utils.Window(len(messages), offset, limit)
	return messages[start:end], int64(len(messages)), nil
}

func (r *ChatRepository) MarkMessageRead(ctx context.Context, messageID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[messageID]
	if !ok {
		return false, errors.NotFound("Message", nil)
	}
	if m.IsRead {
		return false, nil
	}
	readAt := at
	m.IsRead = true
	m.ReadAt = &readAt
	return true, nil
}

func (r *ChatRepository) ListUnreadMessages(ctx context.Context, roomID, excludeSenderID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var messages []*entity.Message
	for _, m := range r.messages {
		if m.RoomID == roomID && !m.IsRead && m.SenderID != excludeSenderID {
			cp := *m
			messages = append(messages, &cp)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

// CountUnreadFor recomputes the unread count for userID in a room.
func (r *ChatRepository) CountUnreadFor(roomID, userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, m := range r.messages {
		if m.RoomID == roomID && !m.IsRead && m.SenderID != userID {
			n++
		}
	}
	return n
}
