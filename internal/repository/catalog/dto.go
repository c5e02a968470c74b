package catalog

import (
	"strings"

	domcat "github.com/trebound/catalog-search/internal/domain/catalog"
	"github.com/trebound/catalog-search/internal/textnorm"
)

// activityRow mirrors the columns selected from activities.
type activityRow struct {
	ID           string
	Name         string
	Slug         string
	Tagline      string
	Description  string
	ActivityType string
	MainTag      string
	Duration     string
	GroupSize    string
	Location     string
	Image        string
}

func (r activityRow) toItem() domcat.Item {
	return domcat.Item{
		ID:           r.ID,
		Kind:         domcat.KindActivity,
		Name:         r.Name,
		Slug:         r.Slug,
		Tagline:      r.Tagline,
		Description:  r.Description,
		Location:     r.Location,
		Facets:       nonEmpty(r.ActivityType, r.MainTag),
		ActivityType: strings.TrimSpace(r.ActivityType),
		Duration:     r.Duration,
		GroupSize:    r.GroupSize,
		Image:        r.Image,
	}
}

// stayRow mirrors the columns selected from stays.
type stayRow struct {
	ID          string
	Name        string
	Slug        string
	Tagline     string
	Description string
	Location    string
	Facilities  string
	Image       string
}

func (r stayRow) toItem() domcat.Item {
	return domcat.Item{
		ID:          r.ID,
		Kind:        domcat.KindVenue,
		Name:        r.Name,
		Slug:        r.Slug,
		Tagline:     r.Tagline,
		Description: r.Description,
		Location:    r.Location,
		Facets:      textnorm.SplitList(r.Facilities),
		Image:       r.Image,
	}
}

// destinationRow mirrors the columns selected from destinations.
type destinationRow struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Region      string
	Image       string
}

func (r destinationRow) toItem() domcat.Item {
	return domcat.Item{
		ID:          r.ID,
		Kind:        domcat.KindDestination,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Location:    r.Region,
		Image:       r.Image,
	}
}

// nonEmpty returns the distinct non-blank values, in order.
func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		dup := false
		for _, o := range out {
			if strings.EqualFold(o, v) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}
