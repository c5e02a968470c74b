package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/trebound/catalog-search/internal/db"
	domcat "github.com/trebound/catalog-search/internal/domain/catalog"
)

const (
	selectActivities = `SELECT id::text, COALESCE(name, ''), COALESCE(slug, ''), COALESCE(tagline, ''),
	COALESCE(description, ''), COALESCE(activity_type, ''), COALESCE(activity_main_tag, ''),
	COALESCE(duration, ''), COALESCE(group_size, ''), COALESCE(location, ''), COALESCE(main_image, '')
FROM activities
ORDER BY id
LIMIT $1`

	selectStays = `SELECT id::text, COALESCE(name, ''), COALESCE(slug, ''), COALESCE(tagline, ''),
	COALESCE(stay_description, ''), COALESCE(location, ''), COALESCE(facilities, ''), COALESCE(stay_image, '')
FROM stays
ORDER BY id
LIMIT $1`

	selectDestinations = `SELECT id::text, COALESCE(name, ''), COALESCE(slug, ''), COALESCE(description, ''),
	COALESCE(region, ''), COALESCE(destination_main_image, destination_image, '')
FROM destinations
ORDER BY id
LIMIT $1`
)

// querier is the consumer interface for the catalog database (ISP).
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Repo implements usecase/catalog.Source over the catalog tables.
type Repo struct {
	q querier
}

// New creates a catalog repository.
func New(q querier) *Repo {
	return &Repo{q: q}
}

// ListActivities returns up to limit activities.
func (r *Repo) ListActivities(ctx context.Context, limit int) ([]domcat.Item, error) {
	return list(ctx, r.q, selectActivities, limit, func(rows *sql.Rows) (domcat.Item, error) {
		var a activityRow
		err := rows.Scan(&a.ID, &a.Name, &a.Slug, &a.Tagline, &a.Description, &a.ActivityType,
			&a.MainTag, &a.Duration, &a.GroupSize, &a.Location, &a.Image)
		return a.toItem(), err
	})
}

// ListVenues returns up to limit stays.
func (r *Repo) ListVenues(ctx context.Context, limit int) ([]domcat.Item, error) {
	return list(ctx, r.q, selectStays, limit, func(rows *sql.Rows) (domcat.Item, error) {
		var s stayRow
		err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.Tagline, &s.Description, &s.Location, &s.Facilities, &s.Image)
		return s.toItem(), err
	})
}

// ListDestinations returns up to limit destinations.
func (r *Repo) ListDestinations(ctx context.Context, limit int) ([]domcat.Item, error) {
	return list(ctx, r.q, selectDestinations, limit, func(rows *sql.Rows) (domcat.Item, error) {
		var d destinationRow
		err := rows.Scan(&d.ID, &d.Name, &d.Slug, &d.Description, &d.Region, &d.Image)
		return d.toItem(), err
	})
}

func list(
	ctx context.Context, q querier, query string, limit int,
	scan func(*sql.Rows) (domcat.Item, error),
) ([]domcat.Item, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	rows, err := q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	items := make([]domcat.Item, 0, limit)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return items, nil
}
