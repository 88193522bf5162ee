package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"masterhub/internal/domain/entity"
	"masterhub/internal/domain/repository"
	"masterhub/internal/domain/service"
	"masterhub/internal/infrastructure/metrics"
	"masterhub/pkg/errors"
	"masterhub/pkg/logger"
	"masterhub/pkg/utils"
)

type ReviewUseCase struct {
	reviewRepo repository.ReviewRepository
	userRepo   repository.UserRepository
	statsCache StatsCache
	notifier   Notifier
	now        Clock
}

// NewReviewUseCase wires the usecase. statsCache may be nil, in which case
// stats are computed on every call.
func NewReviewUseCase(
	reviewRepo repository.ReviewRepository,
	userRepo repository.UserRepository,
	statsCache StatsCache,
	notifier Notifier,
) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
		statsCache: statsCache,
		notifier:   notifier,
		now:        time.Now,
	}
}

func (uc *ReviewUseCase) SetClock(now Clock) {
	uc.now = now
}

type CreateReviewInput struct {
	TargetID string
	OrderID  string
	Rating   int
	Comment  string
}

func (uc *ReviewUseCase) Create(ctx context.Context, reviewerID string, input CreateReviewInput) (*entity.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, errors.Validation("rating must be between 1 and 5")
	}
	if input.OrderID == "" || input.TargetID == "" {
		return nil, errors.Validation("target_id and order_id are required")
	}
	if input.TargetID == reviewerID {
		return nil, errors.Validation("You cannot review yourself")
	}

	if _, err := uc.userRepo.GetByID(ctx, input.TargetID); err != nil {
		logger.Error("CreateReview Error: target %s: %v", input.TargetID, err)
		return nil, err
	}

	_, err := uc.reviewRepo.GetByReviewerAndOrder(ctx, reviewerID, input.OrderID)
	if err == nil {
		return nil, errors.Conflict("Review for this order already exists")
	}
	if !errors.IsNotFound(err) {
		logger.Error("CreateReview Error: %v", err)
		return nil, err
	}

	now := uc.now()
	review := &entity.Review{
		ID:         uuid.New().String(),
		OrderID:    input.OrderID,
		ReviewerID: reviewerID,
		TargetID:   input.TargetID,
		Rating:     input.Rating,
		Comment:    strings.TrimSpace(input.Comment),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.reviewRepo.Create(ctx, review); err != nil {
		logger.Error("CreateReview Error: %v", err)
		return nil, err
	}

	if uc.statsCache != nil {
		if err := uc.statsCache.Invalidate(ctx, review.TargetID); err != nil {
			logger.Warn("CreateReview: failed to invalidate stats for %s: %v", review.TargetID, err)
		}
	}

	notify(ctx, uc.notifier, "CreateReview", SendNotificationInput{
		UserID:            review.TargetID,
		Type:              entity.NotificationNewReview,
		Title:             "New review",
		Message:           "You received a new review",
		Priority:          entity.PriorityNormal,
		RelatedObjectType: "review",
		RelatedObjectID:   review.ID,
		Data:              map[string]interface{}{"rating": review.Rating},
	})

	return review, nil
}

func (uc *ReviewUseCase) ListForUser(ctx context.Context, targetID string, p utils.PaginationParams) ([]*entity.Review, int64, error) {
	reviews, total, err := uc.reviewRepo.ListByTarget(ctx, targetID, p.PageSize, p.Offset)
	if err != nil {
		logger.Error("ListReviews Error: %v", err)
		return nil, 0, err
	}
	return reviews, total, nil
}

// Stats is cache-aside: a cache failure is logged and the stats are
// computed from the store.
func (uc *ReviewUseCase) Stats(ctx context.Context, targetID string) (*service.ReviewStats, error) {
	if uc.statsCache != nil {
		stats, found, err := uc.statsCache.Get(ctx, targetID)
		switch {
		case err != nil:
			metrics.StatsCacheRequests.WithLabelValues("error").Inc()
			logger.Warn("ReviewStats: cache read for %s failed: %v", targetID, err)
		case found:
			metrics.StatsCacheRequests.WithLabelValues("hit").Inc()
			return stats, nil
		default:
			metrics.StatsCacheRequests.WithLabelValues("miss").Inc()
		}
	}

	ratings, err := uc.reviewRepo.RatingsForTarget(ctx, targetID)
	if err != nil {
		logger.Error("ReviewStats Error: %v", err)
		return nil, err
	}
	stats := service.ComputeReviewStats(ratings)

	if uc.statsCache != nil {
		if err := uc.statsCache.Set(ctx, targetID, &stats); err != nil {
			logger.Warn("ReviewStats: cache write for %s failed: %v", targetID, err)
		}
	}
	return &stats, nil
}
