// Package prom computes comparison badges for vendor quotes collected
// while planning an end-of-year event.
package prom

import "github.com/vaadly/vaadly/internal/store"

// bestValueMinRating is the 1-5 rating floor for the best-value badge.
const bestValueMinRating = 4.0

// Badges are the derived comparison labels for one quote.
type Badges struct {
	Cheapest     bool `json:"cheapest"`
	HighestRated bool `json:"highest_rated"`
	BestValue    bool `json:"best_value"`
}

// ComputeBadges scores quote against all quotes of the same event.
// Only quotes sharing the category are compared; comparisons never cross
// categories. The function is pure and never fails: degenerate input
// (empty peer set, quote not in the list) yields all-false badges.
func ComputeBadges(quote *store.PromQuote, eventQuotes []*store.PromQuote) Badges {
	var peers []*store.PromQuote
	for _, q := range eventQuotes {
		if q.Category == quote.Category {
			peers = append(peers, q)
		}
	}
	if len(peers) == 0 {
		return Badges{}
	}

	var (
		minPrice    = peers[0].TotalPrice
		priceSum    float64
		maxRating   float64
		ratedPeers  int
		hasAnyRated bool
	)
	for _, q := range peers {
		if q.TotalPrice < minPrice {
			minPrice = q.TotalPrice
		}
		priceSum += q.TotalPrice
		if q.Rating != nil {
			ratedPeers++
			if !hasAnyRated || *q.Rating > maxRating {
				maxRating = *q.Rating
				hasAnyRated = true
			}
		}
	}
	meanPrice := priceSum / float64(len(peers))

	var b Badges

	// A lone quote has nothing to be cheaper than.
	b.Cheapest = len(peers) >= 2 && quote.TotalPrice == minPrice

	// Unrated quotes never win and don't count toward the two-peer minimum.
	b.HighestRated = quote.Rating != nil && ratedPeers >= 2 && *quote.Rating == maxRating

	// No peer-count gate here: mean of one is itself.
	b.BestValue = quote.Rating != nil && *quote.Rating >= bestValueMinRating &&
		quote.TotalPrice <= meanPrice

	return b
}

// ComputeAllBadges returns the badges for every quote in eventQuotes,
// keyed by quote id.
func ComputeAllBadges(eventQuotes []*store.PromQuote) map[string]Badges {
	out := make(map[string]Badges, len(eventQuotes))
	for _, q := range eventQuotes {
		out[q.ID] = ComputeBadges(q, eventQuotes)
	}
	return out
}
