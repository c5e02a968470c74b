package search

import (
	"sort"

	"github.com/trebound/catalog-search/internal/domain/catalog"
	"github.com/trebound/catalog-search/internal/domain/search/result"
)

// Limits caps the number of results returned per collection.
type Limits struct {
	Activities   int
	Venues       int
	Destinations int
}

// DefaultLimits returns the default per-collection caps.
func DefaultLimits() Limits {
	return Limits{Activities: 10, Venues: 8, Destinations: 6}
}

func (l Limits) of(k catalog.Kind) int {
	switch k {
	case catalog.KindActivity:
		return l.Activities
	case catalog.KindVenue:
		return l.Venues
	case catalog.KindDestination:
		return l.Destinations
	default:
		return 0
	}
}

// Assembled holds the ranked, truncated results of one query.
type Assembled struct {
	Activities   []result.ScoredItem
	Venues       []result.ScoredItem
	Destinations []result.ScoredItem
}

// Total returns the number of results across all collections.
func (a Assembled) Total() int {
	return len(a.Activities) + len(a.Venues) + len(a.Destinations)
}

// Assembler scores every collection of a snapshot and keeps the top results.
type Assembler struct {
	scorer *Scorer
	limits Limits
}

// NewAssembler creates an assembler.
func NewAssembler(scorer *Scorer, limits Limits) *Assembler {
	return &Assembler{scorer: scorer, limits: limits}
}

// Assemble ranks each collection independently. Items without a slug or with a
// zero score are dropped; ties keep snapshot order.
func (a *Assembler) Assemble(combos []string, snap catalog.Snapshot) Assembled {
	return Assembled{
		Activities:   a.rank(snap.Activities, combos, a.limits.of(catalog.KindActivity)),
		Venues:       a.rank(snap.Venues, combos, a.limits.of(catalog.KindVenue)),
		Destinations: a.rank(snap.Destinations, combos, a.limits.of(catalog.KindDestination)),
	}
}

func (a *Assembler) rank(items []catalog.Item, combos []string, limit int) []result.ScoredItem {
	scored := make([]result.ScoredItem, 0, len(items))
	for _, item := range items {
		if !item.Linkable() {
			continue
		}
		score, tier := a.scorer.Score(item, combos)
		if score <= 0 {
			continue
		}
		scored = append(scored, result.ScoredItem{Item: item, Score: score, MatchedVia: tier})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if limit >= 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// Confidence maps a result count to a coarse confidence value.
// It is a proxy for result volume, not a calibrated probability.
func Confidence(total int) float64 {
	switch {
	case total >= 10:
		return 0.95
	case total >= 5:
		return 0.85
	case total >= 2:
		return 0.75
	case total >= 1:
		return 0.65
	default:
		return 0.4
	}
}
