package testutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"masterhub/internal/domain/entity"
	"masterhub/internal/domain/service"
	ws "masterhub/internal/infrastructure/websocket"
	"masterhub/internal/usecase"
)

// ErrUnavailable is a generic downstream failure.
var ErrUnavailable = errors.New("downstream unavailable")

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Notifier records every dispatch. Err makes Send fail after recording.
type Notifier struct {
	mu   sync.Mutex
	Sent []usecase.SendNotificationInput
	Err  error
}

func (n *Notifier) Send(ctx context.Context, input usecase.SendNotificationInput) (*entity.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.Sent = append(n.Sent, input)
	if n.Err != nil {
		return nil, n.Err
	}
	return &entity.Notification{
		ID:               uuid.New().String(),
		UserID:           input.UserID,
		Title:            input.Title,
		Message:          input.Message,
		NotificationType: input.Type,
	}, nil
}

func (n *Notifier) Recipients() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]string, 0, len(n.Sent))
	for _, s := range n.Sent {
		out = append(out, s.UserID)
	}
	return out
}

type PushedEvent struct {
	UserID string
	Event  ws.Event
}

// Publisher records realtime pushes.
type Publisher struct {
	mu     sync.Mutex
	Events []PushedEvent
	Err    error
}

func (p *Publisher) Push(userID string, event ws.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Events = append(p.Events, PushedEvent{UserID: userID, Event: event})
	return p.Err
}

// Types lists pushed event types for a user in order.
func (p *Publisher) Types(userID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []string
	for _, e := range p.Events {
		if e.UserID == userID {
			out = append(out, e.Event.Type)
		}
	}
	return out
}

type PushCall struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

// PushSender records mobile pushes.
type PushSender struct {
	mu    sync.Mutex
	Calls []PushCall
	Err   error
}

func (p *PushSender) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Calls = append(p.Calls, PushCall{Tokens: tokens, Title: title, Body: body, Data: data})
	return p.Err
}

// StatsCache is a map-backed cache with hit/miss counters.
type StatsCache struct {
	mu          sync.Mutex
	entries     map[string]service.ReviewStats
	Hits        int
	Misses      int
	Invalidated []string
	Err         error
}

func NewStatsCache() *StatsCache {
	return &StatsCache{entries: make(map[string]service.ReviewStats)}
}

func (c *StatsCache) Get(ctx context.Context, userID string) (*service.ReviewStats, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, false, c.Err
	}
	stats, ok := c.entries[userID]
	if !ok {
		c.Misses++
		return nil, false, nil
	}
	c.Hits++
	return &stats, true, nil
}

func (c *StatsCache) Set(ctx context.Context, userID string, stats *service.ReviewStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return c.Err
	}
	c.entries[userID] = *stats
	return nil
}

func (c *StatsCache) Invalidate(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Invalidated = append(c.Invalidated, userID)
	if c.Err != nil {
		return c.Err
	}
	delete(c.entries, userID)
	return nil
}

// ObjectStore is an in-memory service.FileUploadService.
type ObjectStore struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Deleted   []string
	DeleteErr error
}

func NewObjectStore() *ObjectStore {
	return &ObjectStore{Objects: make(map[string][]byte)}
}

const objectURLPrefix = "https://objects.test/"

func (s *ObjectStore) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[key] = buf.Bytes()
	return objectURLPrefix + key, nil
}

func (s *ObjectStore) DeleteFile(ctx context.Context, fileURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Deleted = append(s.Deleted, fileURL)
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.Objects, strings.TrimPrefix(fileURL, objectURLPrefix))
	return nil
}

func (s *ObjectStore) GenerateSignedUploadURL(ctx context.Context, key, contentType string) (string, error) {
	return objectURLPrefix + key + "?signature=test", nil
}

// Limiter allows everything unless Deny is set.
type Limiter struct {
	Deny bool
}

func (l *Limiter) Allow(key, action string) (bool, time.Duration) {
	if l.Deny {
		return false, time.Minute
	}
	return true, 0
}

// RoleAssigner records role assignments.
type RoleAssigner struct {
	mu    sync.Mutex
	Roles map[string]string
}

func (r *RoleAssigner) SetRole(ctx context.Context, uid, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Roles == nil {
		r.Roles = make(map[string]string)
	}
	r.Roles[uid] = role
	return nil
}
