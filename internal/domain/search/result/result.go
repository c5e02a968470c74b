// Package result holds the per-query search output: scored items and the unified envelope.
package result

import (
	"time"

	"github.com/trebound/catalog-search/internal/domain/catalog"
)

// Tier is the strongest match class that contributed to an item's score.
type Tier int

const (
	// TierNone means nothing matched.
	TierNone Tier = iota
	// TierKeyword means only single keywords matched.
	TierKeyword
	// TierCombination means a multi-word combination matched.
	TierCombination
	// TierExact means the full query phrase matched.
	TierExact
)

func (t Tier) String() string {
	switch t {
	case TierKeyword:
		return "keyword"
	case TierCombination:
		return "combination"
	case TierExact:
		return "exact"
	default:
		return "none"
	}
}

// ScoredItem is a catalog item with its relevance for one query. Never persisted.
type ScoredItem struct {
	catalog.Item
	Score      int
	MatchedVia Tier
}

// SearchResult is the unified response for one query. It is built fresh per
// query and not mutated after it is returned.
type SearchResult struct {
	Answer       string
	Activities   []ScoredItem
	Venues       []ScoredItem
	Destinations []ScoredItem
	Suggestions  []string
	// UsedGenerativeAnswer is false when Answer came from the deterministic template.
	UsedGenerativeAnswer bool
	// Confidence is a coarse proxy derived from the result count, not a calibrated probability.
	Confidence   float64
	TotalResults int
	Elapsed      time.Duration
}
