package model

// SortOption enumerates the supported product sort orders.
type SortOption string

const (
	SortRelevance      SortOption = "relevance"       // provider order preserved
	SortRating         SortOption = "rating"          // rating high to low
	SortRatingCount    SortOption = "rating_count"    // review count high to low
	SortRatingWeighted SortOption = "rating_weighted" // Wilson lower bound
	SortPriceLow       SortOption = "price_low"       // price low to high
	SortPriceHigh      SortOption = "price_high"      // price high to low
)

// Valid reports whether s is one of the known sort options.
func (s SortOption) Valid() bool {
	switch s {
	case SortRelevance, SortRating, SortRatingCount, SortRatingWeighted, SortPriceLow, SortPriceHigh:
		return true
	}
	return false
}

// PriceRange represents price constraints; min and max are independently optional.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// SearchFilters represents optional search constraints extracted from the conversation.
type SearchFilters struct {
	PriceRange   *PriceRange `json:"price_range,omitempty"`
	MinRating    *float64    `json:"min_rating,omitempty"` // 0-5
	FreeShipping *bool       `json:"free_shipping,omitempty"`
	FreeReturns  *bool       `json:"free_returns,omitempty"`
}

// SearchParameters is the structured search request produced by the
// parameter extractor. Each extraction reflects the full conversation
// context and fully supersedes the previous one; no field-level merging
// happens downstream.
type SearchParameters struct {
	BaseQuery *string        `json:"base_query"`
	Filters   *SearchFilters `json:"filters,omitempty"`
	SortBy    *SortOption    `json:"sort_by,omitempty"`
}

// EmptySearchParameters returns the fallback value used when extraction fails.
func EmptySearchParameters() *SearchParameters {
	return &SearchParameters{}
}

// Query returns the base search query, or "" when absent.
func (p *SearchParameters) Query() string {
	if p == nil || p.BaseQuery == nil {
		return ""
	}
	return *p.BaseQuery
}

// HasQuery reports whether a non-empty base query is present.
func (p *SearchParameters) HasQuery() bool {
	return p.Query() != ""
}

// Sort returns the requested sort option, defaulting to relevance.
func (p *SearchParameters) Sort() SortOption {
	if p == nil || p.SortBy == nil {
		return SortRelevance
	}
	return *p.SortBy
}
