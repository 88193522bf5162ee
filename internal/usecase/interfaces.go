package usecase

import (
	"context"
	"time"

	"masterhub/internal/domain/entity"
	"masterhub/internal/domain/service"
	ws "masterhub/internal/infrastructure/websocket"
)

// Notifier is the dispatch contract other usecases depend on. Callers treat
// it as fire-and-forget: an error is logged, never returned to the user.
type Notifier interface {
	Send(ctx context.Context, input SendNotificationInput) (*entity.Notification, error)
}

// RealtimePublisher pushes an event to a connected user.
type RealtimePublisher interface {
	Push(userID string, event ws.Event) error
}

// PushSender delivers mobile push to device tokens.
type PushSender interface {
	Send(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// StatsCache holds computed review statistics per user.
type StatsCache interface {
	Get(ctx context.Context, userID string) (*service.ReviewStats, bool, error)
	Set(ctx context.Context, userID string, stats *service.ReviewStats) error
	Invalidate(ctx context.Context, userID string) error
}

// RateLimiter reports whether key may perform action now.
type RateLimiter interface {
	Allow(key, action string) (bool, time.Duration)
}

// RoleAssigner records a user's role with the identity provider.
type RoleAssigner interface {
	SetRole(ctx context.Context, uid, role string) error
}

// Clock returns the current time; tests pin it.
type Clock func() time.Time
