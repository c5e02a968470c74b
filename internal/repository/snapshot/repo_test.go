package snapshot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/trebound/catalog-search/internal/db"
	domcat "github.com/trebound/catalog-search/internal/domain/catalog"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	data    map[string][]byte
	ttl     time.Duration
	getErr  error
	setErr  error
	lastKey string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.lastKey = key
	m.ttl = ttl
	m.data[key] = value
	return nil
}

func testSnapshot() domcat.Snapshot {
	return domcat.Snapshot{
		Activities: []domcat.Item{{
			ID: "1", Kind: domcat.KindActivity, Name: "Drum Circle", Slug: "drum-circle",
			ActivityType: "Indoor", Facets: []string{"Indoor"},
		}},
		Venues:       []domcat.Item{{ID: "2", Kind: domcat.KindVenue, Name: "Hill Resort", Slug: "hill-resort"}},
		Destinations: []domcat.Item{},
		FetchedAt:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveLoad(t *testing.T) {
	s := newMockStore()
	repo := New(s, "catalog-search:").WithTTL(time.Hour)

	if err := repo.Save(context.Background(), testSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if s.lastKey != "catalog-search:catalog:snapshot" {
		t.Errorf("unexpected key %q", s.lastKey)
	}
	if s.ttl != time.Hour {
		t.Errorf("expected ttl 1h, got %v", s.ttl)
	}

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.FetchedAt.Equal(testSnapshot().FetchedAt) {
		t.Errorf("fetched_at = %v", got.FetchedAt)
	}
	if len(got.Activities) != 1 || got.Activities[0].Kind != domcat.KindActivity || got.Activities[0].ActivityType != "Indoor" {
		t.Errorf("unexpected activities %+v", got.Activities)
	}
	if len(got.Venues) != 1 || got.Venues[0].Kind != domcat.KindVenue {
		t.Errorf("unexpected venues %+v", got.Venues)
	}
	if got.Destinations == nil {
		t.Error("empty collection must be non-nil")
	}
}

func TestSave_RejectsPartial(t *testing.T) {
	repo := New(newMockStore(), "")
	snap := testSnapshot()
	snap.Partial = true
	if err := repo.Save(context.Background(), snap); err == nil {
		t.Fatal("expected error for partial snapshot")
	}
	if err := repo.Save(context.Background(), domcat.Empty()); err == nil {
		t.Fatal("expected error for empty snapshot")
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := New(newMockStore(), "").Load(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoad_IgnoresOtherVersions(t *testing.T) {
	s := newMockStore()
	s.data["catalog:snapshot"] = []byte(`{"version":99,"fetched_at":"2025-03-01T12:00:00Z"}`)

	_, err := New(s, "").Load(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoad_CorruptPayload(t *testing.T) {
	s := newMockStore()
	s.data["catalog:snapshot"] = []byte(`{not json`)

	_, err := New(s, "").Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unmarshal") {
		t.Errorf("expected unmarshal error, got %v", err)
	}
}

func TestLoad_StoreError(t *testing.T) {
	s := newMockStore()
	s.getErr = &db.Error{Op: db.OpGet, Err: errors.New("connection reset")}

	_, err := New(s, "").Load(context.Background())
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected store error, got %v", err)
	}
}
