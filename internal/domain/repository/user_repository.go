package repository

import (
	"context"

	"masterhub/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	ListByRole(ctx context.Context, role string, limit int) ([]*entity.User, error)
	AddDeviceToken(ctx context.Context, userID, token string) error
}
