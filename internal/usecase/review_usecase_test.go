package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterhub/internal/domain/entity"
	"masterhub/internal/testutil"
	"masterhub/internal/usecase"
	"masterhub/pkg/errors"
	"masterhub/pkg/utils"
)

type reviewFixture struct {
	uc       *usecase.ReviewUseCase
	reviews  *testutil.ReviewRepository
	cache    *testutil.StatsCache
	notifier *testutil.Notifier
	clock    *testutil.Clock
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		reviews:  testutil.NewReviewRepository(),
		cache:    testutil.NewStatsCache(),
		notifier: &testutil.Notifier{},
		clock:    testutil.NewClock(t0),
	}
	users := testutil.NewUserRepository(
		&entity.User{ID: "master-1", Role: entity.RoleMaster},
		&entity.User{ID: "client-1", Role: entity.RoleClient},
		&entity.User{ID: "client-2", Role: entity.RoleClient},
	)
	f.uc = usecase.NewReviewUseCase(f.reviews, users, f.cache, f.notifier)
	f.uc.SetClock(f.clock.Now)
	return f
}

func (f *reviewFixture) review(t *testing.T, reviewer, order string, rating int) {
	t.Helper()
	f.clock.Advance(time.Minute)
	_, err := f.uc.Create(context.Background(), reviewer, usecase.CreateReviewInput{
		TargetID: "master-1",
		OrderID:  order,
		Rating:   rating,
	})
	require.NoError(t, err)
}

func TestCreateReviewRules(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	_, err := f.uc.Create(ctx, "master-1", usecase.CreateReviewInput{TargetID: "master-1", OrderID: "o1", Rating: 5})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = f.uc.Create(ctx, "client-1", usecase.CreateReviewInput{TargetID: "master-1", OrderID: "o1", Rating: 6})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = f.uc.Create(ctx, "client-1", usecase.CreateReviewInput{TargetID: "ghost", OrderID: "o1", Rating: 5})
	assert.True(t, errors.IsNotFound(err))

	f.review(t, "client-1", "o1", 5)
	assert.Equal(t, []string{"master-1"}, f.notifier.Recipients())
	assert.Equal(t, entity.NotificationNewReview, f.notifier.Sent[0].Type)

	_, err = f.uc.Create(ctx, "client-1", usecase.CreateReviewInput{TargetID: "master-1", OrderID: "o1", Rating: 4})
	assert.True(t, errors.Is(err, errors.CodeConflict))
}

func TestStatsCacheAside(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.review(t, "client-1", "o1", 5)
	f.review(t, "client-2", "o2", 4)

	stats, err := f.uc.Stats(ctx, "master-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalReviews)
	assert.Equal(t, 4.5, stats.AverageRating)
	assert.Equal(t, 1, f.cache.Misses)

	_, err = f.uc.Stats(ctx, "master-1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.Hits)

	// a new review invalidates the cached entry
	f.review(t, "client-1", "o3", 3)
	assert.Contains(t, f.cache.Invalidated, "master-1")

	stats, err = f.uc.Stats(ctx, "master-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalReviews)
	assert.Equal(t, 4.0, stats.AverageRating)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 1, 4: 1, 5: 1}, stats.RatingDistribution)
}

func TestStatsFallsThroughBrokenCache(t *testing.T) {
	f := newReviewFixture()
	f.review(t, "client-1", "o1", 2)
	f.cache.Err = testutil.ErrUnavailable

	stats, err := f.uc.Stats(context.Background(), "master-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalReviews)
	assert.Equal(t, 2.0, stats.AverageRating)
}

func TestStatsForUserWithoutReviews(t *testing.T) {
	f := newReviewFixture()

	stats, err := f.uc.Stats(context.Background(), "client-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalReviews)
	assert.Equal(t, 0.0, stats.AverageRating)
	assert.Len(t, stats.RatingDistribution, 5)
}

func TestListReviewsForUser(t *testing.T) {
	f := newReviewFixture()
	f.review(t, "client-1", "o1", 5)
	f.review(t, "client-2", "o2", 3)

	reviews, total, err := f.uc.ListForUser(context.Background(), "master-1", utils.NewPaginationParams(1, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, reviews, 1)
	assert.Equal(t, "o2", reviews[0].OrderID)
}
