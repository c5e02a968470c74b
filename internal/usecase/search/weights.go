package search

import (
	"errors"
	"fmt"
)

// FieldWeights assigns points per matched field. Facet points apply once per
// matching facet entry.
type FieldWeights struct {
	Name        int
	Description int
	Location    int
	Facet       int
}

// CombinationWeights scores multi-word combinations. The combination at rank r
// (0 = first after the full phrase) is worth max(Floor, Base-Decay*r), and each
// field receives its percentage share of that value.
type CombinationWeights struct {
	Base  int
	Decay int
	Floor int
	// Share holds per-field percentages of the decayed base.
	Share FieldWeights
}

// Weights holds the three scoring tiers plus the exact-phrase bonus.
type Weights struct {
	Exact       FieldWeights
	Combination CombinationWeights
	Keyword     FieldWeights
	ExactBonus  int
}

// DefaultWeights returns the reference weights.
func DefaultWeights() Weights {
	return Weights{
		Exact: FieldWeights{Name: 50, Description: 40, Location: 35, Facet: 30},
		Combination: CombinationWeights{
			Base:  25,
			Decay: 2,
			Floor: 1,
			Share: FieldWeights{Name: 100, Description: 80, Location: 70, Facet: 60},
		},
		Keyword:    FieldWeights{Name: 10, Description: 6, Location: 5, Facet: 3},
		ExactBonus: 20,
	}
}

// Validate checks that the weights keep the field ordering
// (name > description > location > facet) and the tier ordering
// (exact > combination > keyword).
func (w Weights) Validate() error {
	if err := w.Exact.validate("exact"); err != nil {
		return err
	}
	if err := w.Keyword.validate("keyword"); err != nil {
		return err
	}
	if err := w.Combination.Share.validate("combination.share"); err != nil {
		return err
	}
	if w.Combination.Share.Name > 100 {
		return fmt.Errorf("combination.share.name must be at most 100, got %d", w.Combination.Share.Name)
	}
	if w.Combination.Floor < 1 {
		return fmt.Errorf("combination.floor must be at least 1, got %d", w.Combination.Floor)
	}
	if w.Combination.Decay < 0 {
		return fmt.Errorf("combination.decay must not be negative, got %d", w.Combination.Decay)
	}
	if w.ExactBonus < 0 {
		return fmt.Errorf("exact_bonus must not be negative, got %d", w.ExactBonus)
	}
	if w.Exact.Facet <= w.Combination.Base {
		return errors.New("weakest exact match must outweigh the strongest combination (exact.facet > combination.base)")
	}
	if w.Combination.Base <= w.Keyword.Name {
		return errors.New("strongest combination must outweigh the strongest keyword (combination.base > keyword.name)")
	}
	return nil
}

func (f FieldWeights) validate(tier string) error {
	if f.Facet <= 0 {
		return fmt.Errorf("%s weights must be positive", tier)
	}
	if !(f.Name > f.Description && f.Description > f.Location && f.Location > f.Facet) {
		return fmt.Errorf("%s weights must satisfy name > description > location > facet, got %d/%d/%d/%d",
			tier, f.Name, f.Description, f.Location, f.Facet)
	}
	return nil
}

// combination returns the field weights for the multi-word combination at rank.
func (w Weights) combination(rank int) FieldWeights {
	c := w.Combination
	base := max(c.Floor, c.Base-c.Decay*rank)
	return FieldWeights{
		Name:        base * c.Share.Name / 100,
		Description: base * c.Share.Description / 100,
		Location:    base * c.Share.Location / 100,
		Facet:       base * c.Share.Facet / 100,
	}
}
