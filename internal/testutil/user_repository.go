package testutil

import (
	"context"
	"sort"
	"sync"

	"masterhub/internal/domain/entity"
	"masterhub/pkg/errors"
)

type UserRepository struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func NewUserRepository(users ...*entity.User) *UserRepository {
	r := &UserRepository{users: make(map[string]*entity.User)}
	for _, u := range users {
		_ = r.Create(context.Background(), u)
	}
	return r
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return errors.Conflict("User already exists")
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	cp := *u
	cp.DeviceTokens = append([]string(nil), u.DeviceTokens...)
	return &cp, nil
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return errors.NotFound("User", nil)
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role string, limit int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.User
	for _, u := range r.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *UserRepository) AddDeviceToken(ctx context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return errors.NotFound("User", nil)
	}
	for _, t := range u.DeviceTokens {
		if t == token {
			return nil
		}
	}
	u.DeviceTokens = append(u.DeviceTokens, token)
	return nil
}
