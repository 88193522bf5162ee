package service

import "math"

// ReviewStats summarises the ratings received by one user.
type ReviewStats struct {
	TotalReviews       int         `json:"total_reviews"`
	AverageRating      float64     `json:"average_rating"`
	RatingDistribution map[int]int `json:"rating_distribution"`
}

// ComputeReviewStats aggregates 1-5 star ratings. Values outside that range
// are ignored. The average is rounded to one decimal; with no ratings it is 0.
func ComputeReviewStats(ratings []int) ReviewStats {
	stats := ReviewStats{
		RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	sum := 0
	for _, r := range ratings {
		if r < 1 || r > 5 {
			continue
		}
		stats.TotalReviews++
		stats.RatingDistribution[r]++
		sum += r
	}

	if stats.TotalReviews == 0 {
		return stats
	}

	avg := float64(sum) / float64(stats.TotalReviews)
	stats.AverageRating = math.Round(avg*10) / 10
	return stats
}
