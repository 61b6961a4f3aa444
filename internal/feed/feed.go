// Package feed implements the content ranking and personalization engine.
// Everything here is pure: no I/O, no clock reads, no global randomness.
package feed

import (
	"math/rand"
	"sort"
	"time"

	"silenceboost/internal/models"
)

const (
	baseScore        = 1.0
	recencyWindowHrs = 10.0
	recencyFactor    = 0.5
	affinityFactor   = 0.5
	engagementFactor = 0.1

	// CandidatePoolSize is how many newest posts are fetched for re-ranking
	// when the feed is personalized.
	CandidatePoolSize = 50
)

// Score computes the relevance score of a post for a user's interest weights.
// weights maps category -> accumulated interest level; a nil map yields only
// the recency and engagement components.
func Score(post *models.Post, weights map[string]int, now time.Time) float64 {
	score := baseScore

	// Recency boost: strictly decreasing, zero from 10 hours old onward.
	hoursOld := now.Sub(post.CreatedAt).Hours()
	if boost := recencyWindowHrs - hoursOld; boost > 0 {
		score += boost * recencyFactor
	}

	// Affinity boost: each matching category contributes independently.
	for _, cat := range post.Categories {
		if w, ok := weights[cat]; ok {
			score += float64(w) * affinityFactor
		}
	}

	// Engagement boost (social proof).
	score += float64(post.Likes) * engagementFactor

	return score
}

// Assemble turns a raw candidate list into a personalized page.
//
// With no interest weights (anonymous caller, or a category filter active)
// the candidates pass through unscored, truncated to pageSize.
//
// Otherwise every candidate is scored, sorted descending by score, and the
// entire sorted result is run through a Fisher–Yates shuffle before
// truncation, trading strict rank ordering for variety between refreshes.
func Assemble(candidates []*models.Post, weights map[string]int, pageSize int, now time.Time, rng *rand.Rand) []*models.Post {
	if pageSize < 0 {
		pageSize = 0
	}

	if len(weights) == 0 {
		return truncate(candidates, pageSize)
	}

	ranked := make([]*models.Post, len(candidates))
	copy(ranked, candidates)

	for _, p := range ranked {
		p.RecommendationScore = Score(p, weights, now)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RecommendationScore > ranked[j].RecommendationScore
	})

	// Full-slice Fisher–Yates over the already-sorted result.
	for i := len(ranked) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		ranked[i], ranked[j] = ranked[j], ranked[i]
	}

	return truncate(ranked, pageSize)
}

func truncate(posts []*models.Post, n int) []*models.Post {
	if len(posts) > n {
		return posts[:n]
	}
	return posts
}
