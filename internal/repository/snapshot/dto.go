package snapshot

import (
	"time"

	domcat "github.com/trebound/catalog-search/internal/domain/catalog"
)

// schemaVersion changes whenever the stored layout changes; older payloads are ignored.
const schemaVersion = 1

type snapshotDoc struct {
	Version      int       `json:"version"`
	FetchedAt    time.Time `json:"fetched_at"`
	Activities   []itemDoc `json:"activities"`
	Venues       []itemDoc `json:"venues"`
	Destinations []itemDoc `json:"destinations"`
}

type itemDoc struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Tagline      string   `json:"tagline,omitempty"`
	Description  string   `json:"description,omitempty"`
	Location     string   `json:"location,omitempty"`
	Facets       []string `json:"facets,omitempty"`
	ActivityType string   `json:"activity_type,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	GroupSize    string   `json:"group_size,omitempty"`
	Image        string   `json:"image,omitempty"`
}

func toDoc(s domcat.Snapshot) snapshotDoc {
	return snapshotDoc{
		Version:      schemaVersion,
		FetchedAt:    s.FetchedAt.UTC(),
		Activities:   toItemDocs(s.Activities),
		Venues:       toItemDocs(s.Venues),
		Destinations: toItemDocs(s.Destinations),
	}
}

func toItemDocs(items []domcat.Item) []itemDoc {
	out := make([]itemDoc, len(items))
	for i, it := range items {
		out[i] = itemDoc{
			ID:           it.ID,
			Name:         it.Name,
			Slug:         it.Slug,
			Tagline:      it.Tagline,
			Description:  it.Description,
			Location:     it.Location,
			Facets:       it.Facets,
			ActivityType: it.ActivityType,
			Duration:     it.Duration,
			GroupSize:    it.GroupSize,
			Image:        it.Image,
		}
	}
	return out
}

func (d snapshotDoc) toDomain() domcat.Snapshot {
	return domcat.Snapshot{
		Activities:   fromItemDocs(domcat.KindActivity, d.Activities),
		Venues:       fromItemDocs(domcat.KindVenue, d.Venues),
		Destinations: fromItemDocs(domcat.KindDestination, d.Destinations),
		FetchedAt:    d.FetchedAt,
	}
}

func fromItemDocs(kind domcat.Kind, docs []itemDoc) []domcat.Item {
	out := make([]domcat.Item, len(docs))
	for i, d := range docs {
		out[i] = domcat.Item{
			ID:           d.ID,
			Kind:         kind,
			Name:         d.Name,
			Slug:         d.Slug,
			Tagline:      d.Tagline,
			Description:  d.Description,
			Location:     d.Location,
			Facets:       d.Facets,
			ActivityType: d.ActivityType,
			Duration:     d.Duration,
			GroupSize:    d.GroupSize,
			Image:        d.Image,
		}
	}
	return out
}
