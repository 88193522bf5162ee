package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"masterhub/internal/domain/entity"
	"masterhub/internal/domain/repository"
	"masterhub/pkg/errors"
)

const reviewsCollection = "reviews"

type firestoreReviewRepository struct {
	client *firestore.Client
}

func NewFirestoreReviewRepository(client *firestore.Client) repository.ReviewRepository {
	return &firestoreReviewRepository{
		client: client,
	}
}

func (r *firestoreReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	_, err := r.client.Collection(reviewsCollection).Doc(review.ID).Create(ctx, review)
	if err != nil {
		return storeError(err, "Review", "create")
	}
	return nil
}

func (r *firestoreReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	doc, err := r.client.Collection(reviewsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, storeError(err, "Review", "get")
	}

	var review entity.Review
	if err := doc.DataTo(&review); err != nil {
		return nil, errors.Internal("Failed to parse review data", err)
	}
	return &review, nil
}

func (r *firestoreReviewRepository) GetByReviewerAndOrder(ctx context.Context, reviewerID, orderID string) (*entity.Review, error) {
	iter := r.client.Collection(reviewsCollection).
		Where("reviewerId", "==", reviewerID).
		Where("orderId", "==", orderID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("Review", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to query reviews", err)
	}

	var review entity.Review
	if err := doc.DataTo(&review); err != nil {
		return nil, errors.Internal("Failed to parse review data", err)
	}
	return &review, nil
}

func (r *firestoreReviewRepository) ListByTarget(ctx context.Context, targetID string, limit, offset int) ([]*entity.Review, int64, error) {
	query := r.client.Collection(reviewsCollection).Where("targetId", "==", targetID)

	total, err := count(ctx, query)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count reviews", err)
	}

	iter := page(query.OrderBy("createdAt", firestore.Desc), limit, offset).Documents(ctx)
	defer iter.Stop()

	var reviews []*entity.Review
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate reviews", err)
		}

		var review entity.Review
		if err := doc.DataTo(&review); err != nil {
			return nil, 0, errors.Internal("Failed to parse review data", err)
		}
		reviews = append(reviews, &review)
	}

	return reviews, total, nil
}

// RatingsForTarget reads only the rating field of every review.
func (r *firestoreReviewRepository) RatingsForTarget(ctx context.Context, targetID string) ([]int, error) {
	iter := r.client.Collection(reviewsCollection).
		Where("targetId", "==", targetID).
		Select("rating").
		Documents(ctx)
	defer iter.Stop()

	var ratings []int
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate reviews", err)
		}

		value, err := doc.DataAt("rating")
		if err != nil {
			continue
		}
		if rating, ok := value.(int64); ok {
			ratings = append(ratings, int(rating))
		}
	}
	return ratings, nil
}
