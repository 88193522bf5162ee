package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"masterhub/internal/domain/entity"
	"masterhub/internal/domain/repository"
	"masterhub/pkg/errors"
	"masterhub/pkg/logger"
	"masterhub/pkg/utils"
)

const (
	chatRoomsCollection    = "chatRooms"
	participantsCollection = "participants"
	messagesCollection     = "messages"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) roomRef(roomID string) *firestore.DocumentRef {
	return r.client.Collection(chatRoomsCollection).Doc(roomID)
}

func (r *firestoreChatRepository) participantRef(roomID, userID string) *firestore.DocumentRef {
	return r.roomRef(roomID).Collection(participantsCollection).Doc(userID)
}

func (r *firestoreChatRepository) messageRef(messageID string) *firestore.DocumentRef {
	return r.client.Collection(messagesCollection).Doc(messageID)
}

// CreateRoom writes the room and its participant documents atomically.
func (r *firestoreChatRepository) CreateRoom(ctx context.Context, room *entity.ChatRoom, participants []*entity.Participant) error {
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(r.roomRef(room.ID), room); err != nil {
			return err
		}
		for _, p := range participants {
			if err := tx.Set(r.participantRef(p.RoomID, p.UserID), p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storeError(err, "Chat room", "create")
	}
	return nil
}

func (r *firestoreChatRepository) GetRoom(ctx context.Context, id string) (*entity.ChatRoom, error) {
	doc, err := r.roomRef(id).Get(ctx)
	if err != nil {
		return nil, storeError(err, "Chat room", "get")
	}

	var room entity.ChatRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse chat room data", err)
	}
	return &room, nil
}

func (r *firestoreChatRepository) roomsOf(ctx context.Context, userID string) ([]*entity.ChatRoom, error) {
	iter := r.client.Collection(chatRoomsCollection).
		Where("participantIds", "array-contains", userID).
		Documents(ctx)
	defer iter.Stop()

	var rooms []*entity.ChatRoom
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate chat rooms", err)
		}

		var room entity.ChatRoom
		if err := doc.DataTo(&room); err != nil {
			logger.Error("Error parsing chat room %s: %v", doc.Ref.ID, err)
			continue
		}
		rooms = append(rooms, &room)
	}
	return rooms, nil
}

// FindRoom filters in memory; a user has few rooms and orderId is optional.
func (r *firestoreChatRepository) FindRoom(ctx context.Context, userID, otherUserID, orderID string) (*entity.ChatRoom, error) {
	rooms, err := r.roomsOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, room := range rooms {
		if room.OrderID == orderID && room.HasParticipant(otherUserID) {
			return room, nil
		}
	}
	return nil, errors.NotFound("Chat room", nil)
}

func (r *firestoreChatRepository) ListRoomsByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatRoom, int64, error) {
	rooms, err := r.roomsOf(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].LastMessageAt.After(rooms[j].LastMessageAt)
	})

	start, end := utils.Window(len(rooms), offset, limit)
	return rooms[start:end], int64(len(rooms)), nil
}

func (r *firestoreChatRepository) UpdateLastMessage(ctx context.Context, roomID, content string, at time.Time) error {
	_, err := r.roomRef(roomID).Update(ctx, []firestore.Update{
		{Path: "lastMessage", Value: content},
		{Path: "lastMessageAt", Value: at},
		{Path: "updatedAt", Value: at},
	})
	if err != nil {
		return storeError(err, "Chat room", "update")
	}
	return nil
}

func (r *firestoreChatRepository) GetParticipant(ctx context.Context, roomID, userID string) (*entity.Participant, error) {
	doc, err := r.participantRef(roomID, userID).Get(ctx)
	if err != nil {
		return nil, storeError(err, "Participant", "get")
	}

	var p entity.Participant
	if err := doc.DataTo(&p); err != nil {
		return nil, errors.Internal("Failed to parse participant data", err)
	}
	return &p, nil
}

func (r *firestoreChatRepository) IncrementUnread(ctx context.Context, roomID, userID string) error {
	_, err := r.participantRef(roomID, userID).Update(ctx, []firestore.Update{
		{Path: "unreadCount", Value: firestore.Increment(1)},
	})
	if err != nil {
		return storeError(err, "Participant", "update")
	}
	return nil
}

// DecrementUnread reads and writes the counter in one transaction so the
// clamp at zero holds under concurrent readers.
func (r *firestoreChatRepository) DecrementUnread(ctx context.Context, roomID, userID string) (int, error) {
	ref := r.participantRef(roomID, userID)
	var remaining int

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}

		var p entity.Participant
		if err := doc.DataTo(&p); err != nil {
			return err
		}

		remaining = p.UnreadCount - 1
		if remaining < 0 {
			remaining = 0
		}
		return tx.Update(ref, []firestore.Update{{Path: "unreadCount", Value: remaining}})
	})
	if err != nil {
		return 0, storeError(err, "Participant", "update")
	}
	return remaining, nil
}

func (r *firestoreChatRepository) ResetUnread(ctx context.Context, roomID, userID string, at time.Time) error {
	_, err := r.participantRef(roomID, userID).Update(ctx, []firestore.Update{
		{Path: "unreadCount", Value: 0},
		{Path: "lastSeen", Value: at},
	})
	if err != nil {
		return storeError(err, "Participant", "update")
	}
	return nil
}

func (r *firestoreChatRepository) TouchLastSeen(ctx context.Context, roomID, userID string, at time.Time) error {
	_, err := r.participantRef(roomID, userID).Update(ctx, []firestore.Update{
		{Path: "lastSeen", Value: at},
	})
	if err != nil {
		return storeError(err, "Participant", "update")
	}
	return nil
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if _, err := r.messageRef(message.ID).Create(ctx, message); err != nil {
		return storeError(err, "Message", "create")
	}
	return nil
}

func (r *firestoreChatRepository) GetMessage(ctx context.Context, id string) (*entity.Message, error) {
	doc, err := r.messageRef(id).Get(ctx)
	if err != nil {
		return nil, storeError(err, "Message", "get")
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return &message, nil
}

func (r *firestoreChatRepository) ListMessages(ctx context.Context, roomID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.client.Collection(messagesCollection).Where("roomId", "==", roomID)

	total, err := count(ctx, query)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count messages", err)
	}

	messages, err := r.collectMessages(ctx, page(query.OrderBy("createdAt", firestore.Desc), limit, offset))
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// MarkMessageRead checks and flips isRead in one transaction, so exactly
// one caller observes the transition.
func (r *firestoreChatRepository) MarkMessageRead(ctx context.Context, messageID string, at time.Time) (bool, error) {
	ref := r.messageRef(messageID)
	var changed bool

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		changed = false

		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		isRead, err := doc.DataAt("isRead")
		if err != nil {
			return err
		}
		if read, _ := isRead.(bool); read {
			return nil
		}

		changed = true
		return tx.Update(ref, []firestore.Update{
			{Path: "isRead", Value: true},
			{Path: "readAt", Value: at},
		})
	})
	if err != nil {
		return false, storeError(err, "Message", "update")
	}
	return changed, nil
}

func (r *firestoreChatRepository) ListUnreadMessages(ctx context.Context, roomID, excludeSenderID string) ([]*entity.Message, error) {
	query := r.client.Collection(messagesCollection).
		Where("roomId", "==", roomID).
		Where("isRead", "==", false).
		OrderBy("createdAt", firestore.Asc)

	messages, err := r.collectMessages(ctx, query)
	if err != nil {
		return nil, err
	}

	out := messages[:0]
	for _, m := range messages {
		if m.SenderID != excludeSenderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *firestoreChatRepository) collectMessages(ctx context.Context, query firestore.Query) ([]*entity.Message, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var messages []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		messages = append(messages, &message)
	}
	return messages, nil
}
