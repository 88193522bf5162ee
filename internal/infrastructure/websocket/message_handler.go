package websocket

import (
	"encoding/json"
	"time"
)

const (
	MessageTypePing = "ping"
	MessageTypePong = "pong"

	EventNewMessage   = "new_message"
	EventMessageRead  = "message_read"
	EventRoomRead     = "room_read"
	EventNotification = "notification"
)

// Event is the frame pushed to clients.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type inboundFrame struct {
	Type string `json:"type"`
}

// HandleInbound answers a client frame. Only ping is understood; anything
// else is ignored and yields nil.
func HandleInbound(raw []byte) []byte {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil
	}
	if frame.Type != MessageTypePing {
		return nil
	}

	reply, err := json.Marshal(Event{
		Type:      MessageTypePong,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil
	}
	return reply
}
