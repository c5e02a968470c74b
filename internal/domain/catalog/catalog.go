// Package catalog defines the catalog items searched by the engine and the
// time-stamped snapshot they are served from.
package catalog

import "time"

// Kind identifies the catalog collection an item belongs to.
type Kind string

const (
	// KindActivity is a team building activity.
	KindActivity Kind = "activity"
	// KindVenue is a stay or venue that hosts team events.
	KindVenue Kind = "venue"
	// KindDestination is a destination or region.
	KindDestination Kind = "destination"
)

// Kinds lists the collections in the order they are fetched, scored and rendered.
var Kinds = []Kind{KindActivity, KindVenue, KindDestination}

// Item is one record from the activities, venues or destinations collections.
//
// Name is the primary match field. Tagline and Description are secondary free
// text. Location holds the activity or venue location, or the destination
// region. Facets are multi-valued attributes (amenities, activity tags) checked
// one by one during scoring.
type Item struct {
	ID          string
	Kind        Kind
	Name        string
	Slug        string
	Tagline     string
	Description string
	Location    string
	Facets      []string

	// Activity details.
	ActivityType string
	Duration     string
	GroupSize    string

	Image string
}

// Linkable reports whether the item has a navigation target and may appear in results.
func (i Item) Linkable() bool { return i.Slug != "" }

// Snapshot is an immutable copy of the catalog used to answer queries.
// Slices are never modified after the snapshot is published.
type Snapshot struct {
	Activities   []Item
	Venues       []Item
	Destinations []Item
	FetchedAt    time.Time
	// Partial marks a snapshot assembled while some collections failed to load.
	Partial bool
}

// Empty returns the cold-start snapshot served when no catalog data was ever loaded.
func Empty() Snapshot {
	return Snapshot{Activities: []Item{}, Venues: []Item{}, Destinations: []Item{}}
}

// Available reports whether the snapshot came from a successful load.
func (s Snapshot) Available() bool { return !s.FetchedAt.IsZero() }

// Expired reports whether the snapshot must be refreshed before serving.
// Partial snapshots are always expired so the next read retries the failed collections.
func (s Snapshot) Expired(now time.Time, ttl time.Duration) bool {
	if !s.Available() || s.Partial {
		return true
	}
	return now.Sub(s.FetchedAt) >= ttl
}

// Collection returns the items of the given kind.
func (s Snapshot) Collection(k Kind) []Item {
	switch k {
	case KindActivity:
		return s.Activities
	case KindVenue:
		return s.Venues
	case KindDestination:
		return s.Destinations
	default:
		return nil
	}
}

// Total returns the number of items across all collections.
func (s Snapshot) Total() int {
	return len(s.Activities) + len(s.Venues) + len(s.Destinations)
}
