package places

import (
	"sort"

	"github.com/harapeko-bot/harapeko/internal/models"
)

// Rank orders candidates descending by rating and truncates to max entries.
// A nil rating sorts after every numeric rating, including 0.0. The sort is
// stable: candidates with equal ratings keep their provider order.
func Rank(candidates []models.VenueCandidate, max int) models.RankedResult {
	ranked := make(models.RankedResult, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		left, right := ranked[i].Rating, ranked[j].Rating
		switch {
		case left == nil:
			return false
		case right == nil:
			return true
		default:
			return *left > *right
		}
	})

	if max >= 0 && len(ranked) > max {
		ranked = ranked[:max]
	}

	return ranked
}
