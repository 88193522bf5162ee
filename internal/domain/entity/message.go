package entity

import "time"

type MessageType string

const (
	MessageTypeText  MessageType = "TEXT"
	MessageTypeImage MessageType = "IMAGE"
	MessageTypeFile  MessageType = "FILE"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile:
		return true
	}
	return false
}

// Message belongs to exactly one room. IsRead only ever moves false -> true.
type Message struct {
	ID            string      `json:"id" firestore:"id"`
	RoomID        string      `json:"room_id" firestore:"roomId"`
	SenderID      string      `json:"sender_id" firestore:"senderId"`
	Content       string      `json:"content" firestore:"content"`
	Type          MessageType `json:"type" firestore:"type"`
	AttachmentURL string      `json:"attachment_url,omitempty" firestore:"attachmentUrl,omitempty"`
	IsRead        bool        `json:"is_read" firestore:"isRead"`
	ReadAt        *time.Time  `json:"read_at,omitempty" firestore:"readAt,omitempty"`
	CreatedAt     time.Time   `json:"created_at" firestore:"createdAt"`
}
