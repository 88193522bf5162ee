package testutil

import (
	"context"
	"sort"
	"sync"

	"masterhub/internal/domain/entity"
	"masterhub/pkg/errors"
	"masterhub/pkg/utils"
)

type ReviewRepository struct {
	mu      sync.Mutex
	reviews map[string]*entity.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{reviews: make(map[string]*entity.Review)}
}

func (r *ReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *review
	r.reviews[review.ID] = &cp
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	review, ok := r.reviews[id]
	if !ok {
		return nil, errors.NotFound("Review", nil)
	}
	cp := *review
	return &cp, nil
}

func (r *ReviewRepository) GetByReviewerAndOrder(ctx context.Context, reviewerID, orderID string) (*entity.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, review := range r.reviews {
		if review.ReviewerID == reviewerID && review.OrderID == orderID {
			cp := *review
			return &cp, nil
		}
	}
	return nil, errors.NotFound("Review", nil)
}

func (r *ReviewRepository) ListByTarget(ctx context.Context, targetID string, limit, offset int) ([]*entity.Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Review
	for _, review := range r.reviews {
		if review.TargetID == targetID {
			cp := *review
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	start, end := utils.Window(len(out), offset, limit)
	return out[start:end], int64(len(out)), nil
}

func (r *ReviewRepository) RatingsForTarget(ctx context.Context, targetID string) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ratings []int
	for _, review := range r.reviews {
		if review.TargetID == targetID {
			ratings = append(ratings, review.Rating)
		}
	}
	return ratings, nil
}
