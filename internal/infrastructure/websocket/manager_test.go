package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushDeliversToRegisteredClient(t *testing.T) {
	m := NewManager()
	client := &Client{UserID: "u1", Send: make(chan []byte, 1)}
	m.add(client)

	require.NoError(t, m.Push("u1", Event{Type: EventRoomRead, Data: map[string]string{"room_id": "r1"}}))

	var got Event
	require.NoError(t, json.Unmarshal(<-client.Send, &got))
	assert.Equal(t, EventRoomRead, got.Type)
	assert.NotEmpty(t, got.Timestamp)
}

func TestPushToOfflineUserIsNoop(t *testing.T) {
	m := NewManager()
	assert.NoError(t, m.Push("nobody", Event{Type: EventNotification}))
	assert.False(t, connected(m, "nobody"))
}

func TestSlowClientIsDropped(t *testing.T) {
	m := NewManager()
	client := &Client{UserID: "u1", Send: make(chan []byte, 1)}
	m.add(client)

	require.NoError(t, m.Push("u1", Event{Type: EventNewMessage}))
	require.NoError(t, m.Push("u1", Event{Type: EventNewMessage}))

	assert.False(t, connected(m, "u1"))
	<-client.Send
	_, open := <-client.Send
	assert.False(t, open)
}

func TestNewerConnectionReplacesOld(t *testing.T) {
	m := NewManager()
	first := &Client{UserID: "u1", Send: make(chan []byte, 1)}
	second := &Client{UserID: "u1", Send: make(chan []byte, 1)}
	m.add(first)
	m.add(second)

	_, open := <-first.Send
	assert.False(t, open)

	// unregistering the stale client leaves the new one in place
	m.remove(first)
	assert.True(t, connected(m, "u1"))
}

func TestHandleInbound(t *testing.T) {
	reply := HandleInbound([]byte(`{"type":"ping"}`))
	require.NotNil(t, reply)

	var got Event
	require.NoError(t, json.Unmarshal(reply, &got))
	assert.Equal(t, MessageTypePong, got.Type)

	assert.Nil(t, HandleInbound([]byte(`{"type":"send_message"}`)))
	assert.Nil(t, HandleInbound([]byte(`not json`)))
}

func connected(m *Manager, userID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

func TestUnregisterAfterShutdownReturns(t *testing.T) {
	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)

	client := NewClient("u1", nil)
	m.Register <- client
	cancel()

	_, open := <-client.Send
	assert.False(t, open)

	returned := make(chan struct{})
	go func() {
		m.unregister(client)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked after the manager stopped")
	}
	assert.False(t, connected(m, "u1"))
}
