package service

import (
	"math"
	"sort"

	"shopmate/internal/model"
)

// wilsonZ is the z-score for a 95% confidence interval.
const wilsonZ = 1.96

// Rank sorts products by the given criterion and truncates to limit
// (limit <= 0 means no truncation). The input slice is never mutated and
// the sort is stable: equal keys keep their provider (relevance) order.
func Rank(products []model.Product, sortBy model.SortOption, limit int) []model.Product {
	sorted := make([]model.Product, len(products))
	copy(sorted, products)

	switch sortBy {
	case model.SortRating:
		sort.SliceStable(sorted, func(i, j int) bool {
			return ratingKey(sorted[i]) > ratingKey(sorted[j])
		})

	case model.SortRatingCount:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].RatingCount > sorted[j].RatingCount
		})

	case model.SortRatingWeighted:
		sort.SliceStable(sorted, func(i, j int) bool {
			return WilsonScore(sorted[i]) > WilsonScore(sorted[j])
		})

	case model.SortPriceLow:
		sort.SliceStable(sorted, func(i, j int) bool {
			return priceKey(sorted[i], math.Inf(1)) < priceKey(sorted[j], math.Inf(1))
		})

	case model.SortPriceHigh:
		sort.SliceStable(sorted, func(i, j int) bool {
			return priceKey(sorted[i], math.Inf(-1)) > priceKey(sorted[j], math.Inf(-1))
		})

	default:
		// relevance: provider order preserved
	}

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	return sorted
}

// WilsonScore computes the lower-confidence-bound rating score, balancing
// raw rating against review count so a 5.0 rating with one review does
// not outrank a 4.6 rating with hundreds. Products with no rating or no
// reviews score -1 and sort last.
func WilsonScore(p model.Product) float64 {
	if p.Rating == nil || *p.Rating == 0 || p.RatingCount == 0 {
		return -1
	}

	pos := (*p.Rating / 5.0) * float64(p.RatingCount)
	n := float64(p.RatingCount)
	zsqr := wilsonZ * wilsonZ

	numerator := (pos + zsqr/2) / n
	denominator := 1 + zsqr/n

	return numerator / denominator
}

// ratingKey treats a missing rating as lowest
func ratingKey(p model.Product) float64 {
	if p.Rating == nil {
		return -1
	}
	return *p.Rating
}

// priceKey substitutes the sentinel for products without a usable price
// so they sort last under either price order
func priceKey(p model.Product, missing float64) float64 {
	if !p.HasPrice() {
		return missing
	}
	return p.Price
}
