package usecase

import (
	"context"
	"sort"
	"strings"

	"masterhub/internal/domain/entity"
	"masterhub/internal/domain/repository"
	"masterhub/internal/domain/service"
	"masterhub/pkg/errors"
	"masterhub/pkg/logger"
)

const (
	maxLocationScore   = 100
	defaultMatchLimit  = 20
	maxMatchLimit      = 100
	matchCandidatePool = 500
)

// ReviewStatsProvider supplies (usually cached) review stats per user.
type ReviewStatsProvider interface {
	Stats(ctx context.Context, userID string) (*service.ReviewStats, error)
}

type MatchingUseCase struct {
	userRepo repository.UserRepository
	stats    ReviewStatsProvider
}

func NewMatchingUseCase(userRepo repository.UserRepository, stats ReviewStatsProvider) *MatchingUseCase {
	return &MatchingUseCase{
		userRepo: userRepo,
		stats:    stats,
	}
}

type RankMastersInput struct {
	City     string
	Category string
	Limit    int
}

// MasterMatch is one ranked candidate. ApproximateDistance is set when either
// city has no coordinates and the fallback distance was used.
type MasterMatch struct {
	Master              *entity.User         `json:"master"`
	LocationScore       int                  `json:"location_score"`
	DistanceKm          float64              `json:"distance_km"`
	ApproximateDistance bool                 `json:"approximate_distance"`
	Stats               *service.ReviewStats `json:"stats"`
}

// RankMasters orders masters by location score, then average rating, then
// number of reviews. The client's city defaults to their profile city.
func (uc *MatchingUseCase) RankMasters(ctx context.Context, clientID string, input RankMastersInput) ([]*MasterMatch, error) {
	city := strings.TrimSpace(input.City)
	if city == "" && clientID != "" {
		client, err := uc.userRepo.GetByID(ctx, clientID)
		if err != nil && !errors.IsNotFound(err) {
			logger.Error("RankMasters Error: %v", err)
			return nil, err
		}
		if client != nil {
			city = client.City
		}
	}
	if city == "" {
		return nil, errors.Validation("city is required")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultMatchLimit
	}
	if limit > maxMatchLimit {
		limit = maxMatchLimit
	}

	masters, err := uc.userRepo.ListByRole(ctx, entity.RoleMaster, matchCandidatePool)
	if err != nil {
		logger.Error("RankMasters Error: %v", err)
		return nil, err
	}

	matches := make([]*MasterMatch, 0, len(masters))
	for _, master := range masters {
		if master.ID == clientID {
			continue
		}
		if input.Category != "" && !master.OffersCategory(input.Category) {
			continue
		}

		stats, err := uc.stats.Stats(ctx, master.ID)
		if err != nil {
			logger.Warn("RankMasters: stats for %s unavailable: %v", master.ID, err)
			empty := service.ComputeReviewStats(nil)
			stats = &empty
		}

		matches = append(matches, &MasterMatch{
			Master:        master,
			LocationScore: service.LocationScore(city, master.City, maxLocationScore),
			DistanceKm:    service.CityDistanceKm(city, master.City),
			Stats:         stats,

			ApproximateDistance: !service.KnownCity(city) || !service.KnownCity(master.City),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.LocationScore != b.LocationScore {
			return a.LocationScore > b.LocationScore
		}
		if a.Stats.AverageRating != b.Stats.AverageRating {
			return a.Stats.AverageRating > b.Stats.AverageRating
		}
		return a.Stats.TotalReviews > b.Stats.TotalReviews
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
