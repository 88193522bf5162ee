package repository

import (
	"context"

	"masterhub/internal/domain/entity"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	GetByReviewerAndOrder(ctx context.Context, reviewerID, orderID string) (*entity.Review, error)
	ListByTarget(ctx context.Context, targetID string, limit, offset int) ([]*entity.Review, int64, error)
	RatingsForTarget(ctx context.Context, targetID string) ([]int, error)
}
