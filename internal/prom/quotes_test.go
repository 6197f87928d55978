package prom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vaadly/vaadly/internal/store"
)

func rating(v float64) *float64 { return &v }

func quote(id, category string, price float64, r *float64) *store.PromQuote {
	return &store.PromQuote{
		ID:         id,
		EventID:    "prom-2026",
		Category:   category,
		TotalPrice: price,
		Rating:     r,
	}
}

func TestCheapestWithTies(t *testing.T) {
	quotes := []*store.PromQuote{
		quote("a", store.QuoteCategoryCatering, 100, nil),
		quote("b", store.QuoteCategoryCatering, 100, nil),
		quote("c", store.QuoteCategoryCatering, 200, nil),
	}

	assert.True(t, ComputeBadges(quotes[0], quotes).Cheapest)
	assert.True(t, ComputeBadges(quotes[1], quotes).Cheapest)
	assert.False(t, ComputeBadges(quotes[2], quotes).Cheapest)
}

func TestCheapestRequiresPeers(t *testing.T) {
	quotes := []*store.PromQuote{
		quote("solo", store.QuoteCategoryVenue, 100, nil),
	}

	b := ComputeBadges(quotes[0], quotes)
	assert.False(t, b.Cheapest)
	assert.False(t, b.HighestRated)
}

func TestBestValueIndependentOfPeerCount(t *testing.T) {
	quotes := []*store.PromQuote{
		quote("solo", store.QuoteCategoryVenue, 100, rating(5)),
	}

	b := ComputeBadges(quotes[0], quotes)
	assert.True(t, b.BestValue, "mean of one value equals itself")
	assert.False(t, b.Cheapest)
	assert.False(t, b.HighestRated)
}

func TestBestValueRequiresRatingFloor(t *testing.T) {
	quotes := []*store.PromQuote{
		quote("cheap", store.QuoteCategoryDecoration, 100, rating(3.5)),
		quote("pricey", store.QuoteCategoryDecoration, 300, rating(4.5)),
	}

	assert.False(t, ComputeBadges(quotes[0], quotes).BestValue, "rating below 4")
	assert.False(t, ComputeBadges(quotes[1], quotes).BestValue, "price above mean")
}

func TestHighestRatedExcludesUnrated(t *testing.T) {
	quotes := []*store.PromQuote{
		quote("five", store.QuoteCategoryPhotographer, 500, rating(5)),
		quote("three", store.QuoteCategoryPhotographer, 400, rating(3)),
		quote("unrated", store.QuoteCategoryPhotographer, 300, nil),
	}

	assert.True(t, ComputeBadges(quotes[0], quotes).HighestRated)
	assert.False(t, ComputeBadges(quotes[1], quotes).HighestRated)
	assert.False(t, ComputeBadges(quotes[2], quotes).HighestRated)
}

func TestHighestRatedRequiresTwoRatedPeers(t *testing.T) {
	quotes := []*store.PromQuote{
		quote("rated", store.QuoteCategoryHost, 500, rating(5)),
		quote("unrated", store.QuoteCategoryHost, 400, nil),
	}

	assert.False(t, ComputeBadges(quotes[0], quotes).HighestRated,
		"a single rated quote has no rated peer to beat")
}

func TestBadgesNeverCrossCategories(t *testing.T) {
	quotes := []*store.PromQuote{
		quote("dj", store.QuoteCategoryDJ, 100, rating(5)),
		quote("venue", store.QuoteCategoryVenue, 5000, rating(5)),
	}

	b := ComputeBadges(quotes[0], quotes)
	assert.False(t, b.Cheapest, "the venue quote is not a dj peer")
	assert.False(t, b.HighestRated)
}

func TestEmptyPeerSet(t *testing.T) {
	q := quote("orphan", store.QuoteCategoryOther, 100, rating(5))

	b := ComputeBadges(q, nil)
	assert.Equal(t, Badges{}, b)
}

func TestEndToEndDJScenario(t *testing.T) {
	q1 := quote("q1", store.QuoteCategoryDJ, 3000, rating(5))
	q2 := quote("q2", store.QuoteCategoryDJ, 2500, rating(3))
	q3 := quote("q3", store.QuoteCategoryDJ, 2500, nil)
	quotes := []*store.PromQuote{q1, q2, q3}

	badges := ComputeAllBadges(quotes)

	// Mean price is 2666.67, so q1 at 3000 misses best-value despite its rating.
	assert.Equal(t, Badges{Cheapest: false, HighestRated: true, BestValue: false}, badges["q1"])
	assert.Equal(t, Badges{Cheapest: true, HighestRated: false, BestValue: false}, badges["q2"])
	assert.Equal(t, Badges{Cheapest: true, HighestRated: false, BestValue: false}, badges["q3"])
}
