package search

import (
	"context"

	"github.com/trebound/catalog-search/internal/domain"
	"github.com/trebound/catalog-search/internal/domain/catalog"
)

// SnapshotProvider returns the catalog snapshot a query is answered from.
// It never fails: an unavailable catalog yields the empty snapshot.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) catalog.Snapshot
}

// Generator produces free text from an instruction and supporting context.
type Generator interface {
	Generate(ctx context.Context, instruction, facts string) (domain.Generation, error)
}
