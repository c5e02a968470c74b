package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/trebound/catalog-search/internal/db"
	domcat "github.com/trebound/catalog-search/internal/domain/catalog"
)

// DefaultTTL is how long a mirrored snapshot stays usable.
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned when no usable snapshot is mirrored.
var ErrNotFound = errors.New("catalog snapshot not mirrored")

// store is the consumer interface for the mirror (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Repo implements usecase/catalog.Mirror as a JSON value in Redis.
type Repo struct {
	store store
	key   string
	ttl   time.Duration
}

// New creates a snapshot mirror. keyPrefix namespaces the key, e.g. "catalog-search:".
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, key: keyPrefix + "catalog:snapshot", ttl: DefaultTTL}
}

// WithTTL overrides how long a mirrored snapshot is kept.
func (r *Repo) WithTTL(ttl time.Duration) *Repo {
	if ttl > 0 {
		r.ttl = ttl
	}
	return r
}

// Save stores a complete snapshot. Partial snapshots are rejected.
func (r *Repo) Save(ctx context.Context, snap domcat.Snapshot) error {
	if snap.Partial || !snap.Available() {
		return errors.New("only complete snapshots can be mirrored")
	}
	data, err := json.Marshal(toDoc(snap))
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.store.SetWithTTL(ctx, r.key, data, r.ttl); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Load returns the mirrored snapshot or ErrNotFound.
func (r *Repo) Load(ctx context.Context) (domcat.Snapshot, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domcat.Snapshot{}, ErrNotFound
		}
		return domcat.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return domcat.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if doc.Version != schemaVersion || doc.FetchedAt.IsZero() {
		return domcat.Snapshot{}, ErrNotFound
	}
	return doc.toDomain(), nil
}
