package search

import (
	"reflect"
	"strings"
	"testing"

	"github.com/trebound/catalog-search/internal/domain/catalog"
)

func TestSuggest_OrderAndCap(t *testing.T) {
	snap := catalog.Snapshot{
		Activities: []catalog.Item{
			{Name: "Escape Room", ActivityType: "Virtual"},
			{Name: "Trek", ActivityType: "Outdoor"},
			{Name: "Quiz", ActivityType: "Virtual"},
		},
		Venues: []catalog.Item{
			{Name: "Hill Resort", Location: "Coorg"},
		},
		Destinations: []catalog.Item{
			{Name: "Goa", Location: "West India"},
		},
	}

	got := Suggest("offsite ideas", snap)
	want := []string{
		"Virtual team building activities",
		"Outdoor team building activities",
		"Team building in Coorg",
		"Team building in West India",
		"Virtual team building games",
		"Outdoor team activities",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Suggest() =\n%q\nwant\n%q", got, want)
	}
}

func TestSuggest_SkipsTermsInQuery(t *testing.T) {
	snap := catalog.Snapshot{
		Activities: []catalog.Item{{Name: "Escape Room", ActivityType: "Virtual"}},
		Venues:     []catalog.Item{{Name: "Beach Villa", Location: "Goa"}},
	}

	got := Suggest("Virtual games in GOA", snap)
	for _, s := range got {
		if s == "Virtual team building activities" || s == "Team building in Goa" {
			t.Errorf("suggestion %q repeats a query term", s)
		}
	}
}

func TestSuggest_FirstThreeLocations(t *testing.T) {
	snap := catalog.Snapshot{
		Venues: []catalog.Item{
			{Location: "Coorg"},
			{Location: "Coorg"},
			{Location: "Lonavala"},
		},
		Destinations: []catalog.Item{
			{Location: "Himachal"},
			{Location: "Kerala"},
		},
	}

	got := Suggest("retreat", snap)
	var locs []string
	for _, s := range got {
		if rest, ok := strings.CutPrefix(s, "Team building in "); ok {
			locs = append(locs, rest)
		}
	}
	want := []string{"Coorg", "Lonavala", "Himachal"}
	if !reflect.DeepEqual(locs, want) {
		t.Errorf("location suggestions = %q, want %q", locs, want)
	}
}

func TestSuggest_EmptySnapshotUsesGenericPool(t *testing.T) {
	got := Suggest("offsite", catalog.Empty())
	if len(got) != len(genericSuggestions) {
		t.Fatalf("expected %d generic suggestions, got %d: %q", len(genericSuggestions), len(got), got)
	}
	if got[0] != "Virtual team building games" {
		t.Errorf("unexpected first suggestion %q", got[0])
	}
}

func TestSuggest_DeduplicatesCaseInsensitively(t *testing.T) {
	snap := catalog.Snapshot{
		Activities: []catalog.Item{
			{ActivityType: "Outdoor"},
			{ActivityType: "outdoor"},
		},
	}

	got := Suggest("ideas", snap)
	count := 0
	for _, s := range got {
		if strings.EqualFold(s, "outdoor team building activities") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected one outdoor suggestion, got %d in %q", count, got)
	}
}
