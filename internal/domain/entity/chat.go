package entity

import "time"

// ChatRoom is a conversation between the parties of an order.
type ChatRoom struct {
	ID             string    `json:"id" firestore:"id"`
	ParticipantIDs []string  `json:"participant_ids" firestore:"participantIds"`
	OrderID        string    `json:"order_id,omitempty" firestore:"orderId,omitempty"`
	LastMessage    string    `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageAt  time.Time `json:"last_message_at" firestore:"lastMessageAt"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt      time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (r *ChatRoom) HasParticipant(userID string) bool {
	for _, id := range r.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Participant holds one user's read state in a room. UnreadCount never
// goes below zero.
type Participant struct {
	RoomID      string    `json:"room_id" firestore:"roomId"`
	UserID      string    `json:"user_id" firestore:"userId"`
	UnreadCount int       `json:"unread_count" firestore:"unreadCount"`
	LastSeen    time.Time `json:"last_seen" firestore:"lastSeen"`
	JoinedAt    time.Time `json:"joined_at" firestore:"joinedAt"`
}
