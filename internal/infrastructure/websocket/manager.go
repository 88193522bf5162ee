package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"masterhub/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one connected user.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// Manager keeps the connected clients by user ID. A user has at most one
// live connection; a newer one replaces the old.
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Start runs the register/unregister loop until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.add(client)
			case client := <-m.Unregister:
				m.remove(client)
			case <-ctx.Done():
				m.closeAll()
				close(m.done)
				return
			}
		}
	}()
}

func (m *Manager) add(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if old, ok := m.clients[client.UserID]; ok && old != client {
		close(old.Send)
	}
	m.clients[client.UserID] = client
	logger.Debug("websocket client registered: %s", client.UserID)
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if current, ok := m.clients[client.UserID]; ok && current == client {
		delete(m.clients, client.UserID)
		close(client.Send)
		logger.Debug("websocket client unregistered: %s", client.UserID)
	}
}

// unregister hands c to the loop, or drops it once the loop has stopped.
func (m *Manager) unregister(c *Client) {
	select {
	case m.Unregister <- c:
	case <-m.done:
	}
}

func (m *Manager) closeAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for id, client := range m.clients {
		close(client.Send)
		delete(m.clients, id)
	}
}

// Push delivers an event to a user if connected. Offline users are skipped;
// a client whose buffer is full is disconnected.
func (m *Manager) Push(userID string, event Event) error {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	client, ok := m.clients[userID]
	if !ok {
		return nil
	}

	select {
	case client.Send <- payload:
	default:
		logger.Warn("websocket client %s is too slow, dropping connection", userID)
		delete(m.clients, userID)
		close(client.Send)
	}
	return nil
}

// ReadPump consumes inbound frames until the connection closes.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error for %s: %v", c.UserID, err)
			}
			return
		}

		if reply := HandleInbound(message); reply != nil {
			m.reply(c, reply)
		}
	}
}

func (m *Manager) reply(c *Client, payload []byte) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.clients[c.UserID] != c {
		return
	}
	select {
	case c.Send <- payload:
	default:
	}
}

// WritePump drains Send and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("websocket write error for %s: %v", c.UserID, err)
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
