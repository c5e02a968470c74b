package catalog

import (
	"context"

	domcat "github.com/trebound/catalog-search/internal/domain/catalog"
)

// Source loads catalog collections from the catalog data service.
type Source interface {
	ListActivities(ctx context.Context, limit int) ([]domcat.Item, error)
	ListVenues(ctx context.Context, limit int) ([]domcat.Item, error)
	ListDestinations(ctx context.Context, limit int) ([]domcat.Item, error)
}

// Mirror keeps the last complete snapshot outside the process so a cold
// start can survive a data service outage.
type Mirror interface {
	Save(ctx context.Context, snap domcat.Snapshot) error
	Load(ctx context.Context) (domcat.Snapshot, error)
}
