package search

import (
	"strings"
	"unicode/utf8"

	"github.com/trebound/catalog-search/internal/domain/catalog"
	"github.com/trebound/catalog-search/internal/domain/search/result"
)

// Scorer ranks a catalog item against a decomposed query using tiered weights.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer. Weights are expected to be validated by the caller.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score returns the item's relevance for the combinations produced by
// Decompose, and the strongest tier that matched. The score is never negative.
//
// combos[0] is the full phrase and scores in the exact tier. Multi-word entries
// after it score in the combination tier with weight decaying by rank. Single
// words score in the keyword tier.
func (s *Scorer) Score(item catalog.Item, combos []string) (int, result.Tier) {
	if len(combos) == 0 {
		return 0, result.TierNone
	}

	f := lowerFields(item)
	score := 0
	tier := result.TierNone

	if pts := f.hits(combos[0], s.weights.Exact); pts > 0 {
		score += pts + s.weights.ExactBonus
		tier = result.TierExact
	}

	for i, c := range combos {
		if i > 0 && isMultiWord(c) {
			if pts := f.hits(c, s.weights.combination(i-1)); pts > 0 {
				score += pts
				tier = max(tier, result.TierCombination)
			}
			continue
		}
		if isMultiWord(c) || utf8.RuneCountInString(c) < minWordLen {
			continue
		}
		if pts := f.hits(c, s.weights.Keyword); pts > 0 {
			score += pts
			tier = max(tier, result.TierKeyword)
		}
	}

	return score, tier
}

// fields is the lower-cased matchable view of an item.
type fields struct {
	name        string
	description string
	tagline     string
	location    string
	facets      []string
}

func lowerFields(item catalog.Item) fields {
	facets := make([]string, len(item.Facets))
	for i, f := range item.Facets {
		facets[i] = strings.ToLower(f)
	}
	return fields{
		name:        strings.ToLower(item.Name),
		description: strings.ToLower(item.Description),
		tagline:     strings.ToLower(item.Tagline),
		location:    strings.ToLower(item.Location),
		facets:      facets,
	}
}

// hits sums the points for every field containing c. Description and tagline
// share one description-tier hit.
func (f fields) hits(c string, w FieldWeights) int {
	pts := 0
	if strings.Contains(f.name, c) {
		pts += w.Name
	}
	if strings.Contains(f.description, c) || strings.Contains(f.tagline, c) {
		pts += w.Description
	}
	if strings.Contains(f.location, c) {
		pts += w.Location
	}
	for _, facet := range f.facets {
		if strings.Contains(facet, c) {
			pts += w.Facet
		}
	}
	return pts
}
