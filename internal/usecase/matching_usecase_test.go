package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterhub/internal/domain/entity"
	"masterhub/internal/testutil"
	"masterhub/internal/usecase"
	"masterhub/pkg/errors"
)

func TestRankMasters(t *testing.T) {
	ctx := context.Background()
	users := testutil.NewUserRepository(
		&entity.User{ID: "client-1", Role: entity.RoleClient, City: "Bishkek"},
		&entity.User{ID: "m-osh", Role: entity.RoleMaster, City: "Osh", Categories: []string{"plumbing"}},
		&entity.User{ID: "m-kant", Role: entity.RoleMaster, City: "Kant", Categories: []string{"plumbing"}},
		&entity.User{ID: "m-bishkek-a", Role: entity.RoleMaster, City: "bishkek", Categories: []string{"plumbing"}},
		&entity.User{ID: "m-bishkek-b", Role: entity.RoleMaster, City: "Bishkek", Categories: []string{"plumbing", "tiling"}},
		&entity.User{ID: "m-electric", Role: entity.RoleMaster, City: "Bishkek", Categories: []string{"electrical"}},
	)
	reviews := testutil.NewReviewRepository()
	for i, r := range []struct {
		target string
		rating int
	}{
		{"m-bishkek-a", 4}, {"m-bishkek-b", 5}, {"m-osh", 5}, {"m-osh", 5},
	} {
		require.NoError(t, reviews.Create(ctx, &entity.Review{
			ID:       string(rune('a' + i)),
			TargetID: r.target,
			Rating:   r.rating,
		}))
	}

	stats := usecase.NewReviewUseCase(reviews, users, testutil.NewStatsCache(), nil)
	uc := usecase.NewMatchingUseCase(users, stats)

	matches, err := uc.RankMasters(ctx, "client-1", usecase.RankMastersInput{Category: "plumbing"})
	require.NoError(t, err)
	require.Len(t, matches, 4)

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.Master.ID)
	}
	assert.Equal(t, []string{"m-bishkek-b", "m-bishkek-a", "m-kant", "m-osh"}, ids)
	assert.Equal(t, 100, matches[0].LocationScore)
	assert.Equal(t, 80, matches[2].LocationScore)
	assert.Equal(t, 20, matches[3].LocationScore)
	for _, m := range matches {
		assert.False(t, m.ApproximateDistance, m.Master.ID)
	}

	limited, err := uc.RankMasters(ctx, "", usecase.RankMastersInput{City: "Osh", Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "m-osh", limited[0].Master.ID)
}

func TestRankMastersFlagsUnknownCity(t *testing.T) {
	users := testutil.NewUserRepository(
		&entity.User{ID: "m-known", Role: entity.RoleMaster, City: "Bishkek"},
		&entity.User{ID: "m-unknown", Role: entity.RoleMaster, City: "Atlantis"},
	)
	uc := usecase.NewMatchingUseCase(users, usecase.NewReviewUseCase(testutil.NewReviewRepository(), users, nil, nil))

	matches, err := uc.RankMasters(context.Background(), "", usecase.RankMastersInput{City: "bishkek"})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "m-known", matches[0].Master.ID)
	assert.False(t, matches[0].ApproximateDistance)
	assert.Equal(t, "m-unknown", matches[1].Master.ID)
	assert.True(t, matches[1].ApproximateDistance)
	assert.Equal(t, 100.0, matches[1].DistanceKm)
}

func TestRankMastersNeedsCity(t *testing.T) {
	users := testutil.NewUserRepository(&entity.User{ID: "client-1", Role: entity.RoleClient})
	uc := usecase.NewMatchingUseCase(users, usecase.NewReviewUseCase(testutil.NewReviewRepository(), users, nil, nil))

	_, err := uc.RankMasters(context.Background(), "client-1", usecase.RankMastersInput{})
	assert.True(t, errors.Is(err, errors.CodeValidation))
}
