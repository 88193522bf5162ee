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

type NotificationRepository struct {
	mu            sync.Mutex
	notifications map[string]*entity.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{notifications: make(map[string]*entity.Notification)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *n
	r.notifications[n.ID] = &cp
	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok {
		return nil, errors.NotFound("Notification", nil)
	}
	cp := *n
	return &cp, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Notification
	for _, n := range r.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	start, end := utils.Window(len(out), offset, limit)
	return out[start:end], int64(len(out)), nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, item := range r.notifications {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok {
		return errors.NotFound("Notification", nil)
	}
	if !n.IsRead {
		readAt := at
		n.IsRead = true
		n.ReadAt = &readAt
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			readAt := at
			n.IsRead = true
			n.ReadAt = &readAt
			changed++
		}
	}
	return changed, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notifications[id]; !ok {
		return errors.NotFound("Notification", nil)
	}
	delete(r.notifications, id)
	return nil
}

func (r *NotificationRepository) DeleteAllByUser(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, n := range r.notifications {
		if n.UserID == userID {
			delete(r.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}
