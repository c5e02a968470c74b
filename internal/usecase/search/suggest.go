package search

import (
	"strings"

	"github.com/trebound/catalog-search/internal/domain/catalog"
)

const (
	maxSuggestions         = 6
	maxLocationSuggestions = 3
)

var genericSuggestions = []string{
	"Virtual team building games",
	"Outdoor team activities",
	"Corporate team outing venues",
	"Team building workshops",
	"Leadership development programs",
}

// UnavailableSuggestions are offered when the catalog cannot be loaded.
var UnavailableSuggestions = []string{
	"Contact our team directly",
	"Browse activity categories",
	"View our popular options",
}

// Suggest proposes related queries: activity types first, then up to three
// locations, then a generic pool. Terms already present in the query are
// skipped. The result is de-duplicated case-insensitively and holds at most
// six entries.
func Suggest(query string, snap catalog.Snapshot) []string {
	phrase := Phrase(query)
	out := make([]string, 0, maxSuggestions)
	seen := make(map[string]struct{})

	add := func(s string) {
		if len(out) >= maxSuggestions {
			return
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}

	for _, t := range distinct(activityTypes(snap)) {
		if !covered(phrase, t) {
			add(t + " team building activities")
		}
	}

	locs := distinct(locations(snap))
	if len(locs) > maxLocationSuggestions {
		locs = locs[:maxLocationSuggestions]
	}
	for _, l := range locs {
		if !covered(phrase, l) {
			add("Team building in " + l)
		}
	}

	for _, g := range genericSuggestions {
		if phrase != "" && strings.Contains(strings.ToLower(g), phrase) {
			continue
		}
		add(g)
	}

	return out
}

// covered reports whether the query already mentions term.
func covered(phrase, term string) bool {
	return strings.Contains(phrase, strings.ToLower(term))
}

func activityTypes(snap catalog.Snapshot) []string {
	types := make([]string, 0, len(snap.Activities))
	for _, a := range snap.Activities {
		types = append(types, a.ActivityType)
	}
	return types
}

func locations(snap catalog.Snapshot) []string {
	locs := make([]string, 0, len(snap.Venues)+len(snap.Destinations))
	for _, v := range snap.Venues {
		locs = append(locs, v.Location)
	}
	for _, d := range snap.Destinations {
		locs = append(locs, d.Location)
	}
	return locs
}

// distinct drops blanks and repeats, keeping first occurrences in order.
func distinct(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
