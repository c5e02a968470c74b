package catalog

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/trebound/catalog-search/internal/db"
	domcat "github.com/trebound/catalog-search/internal/domain/catalog"
)

func newMockRepo(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return New(sqlDB), mock
}

func TestListActivities(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM activities ORDER BY id LIMIT \$1`).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "slug", "tagline", "description", "activity_type", "activity_main_tag",
			"duration", "group_size", "location", "main_image",
		}).
			AddRow("7", "Virtual Escape Room", "virtual-escape-room", "<p>Solve it</p>", "Puzzles online",
				"Virtual", "Problem Solving", "2 hours", "10-50", "", "escape.jpg").
			AddRow("8", "Drum Circle", "drum-circle", "", "", "Indoor", "indoor", "", "", "Bangalore", ""))

	items, err := repo.ListActivities(context.Background(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.ID != "7" || first.Kind != domcat.KindActivity || first.Slug != "virtual-escape-room" {
		t.Errorf("unexpected item %+v", first)
	}
	if !reflect.DeepEqual(first.Facets, []string{"Virtual", "Problem Solving"}) {
		t.Errorf("unexpected facets %q", first.Facets)
	}
	if first.ActivityType != "Virtual" || first.GroupSize != "10-50" {
		t.Errorf("unexpected activity details %+v", first)
	}
	if !reflect.DeepEqual(items[1].Facets, []string{"Indoor"}) {
		t.Errorf("expected duplicate tag folded, got %q", items[1].Facets)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListVenues_SplitsFacilities(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM stays`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "slug", "tagline", "stay_description", "location", "facilities", "stay_image",
		}).AddRow("3", "Hill Resort", "hill-resort", "", "Stay in the hills",
			"<p>Nandi Hills, Bangalore</p>", "Pool; Wi-Fi, Conference hall.", ""))

	items, err := repo.ListVenues(context.Background(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	v := items[0]
	if v.Kind != domcat.KindVenue || v.Description != "Stay in the hills" {
		t.Errorf("unexpected venue %+v", v)
	}
	want := []string{"Pool", "Wi-Fi", "Conference hall"}
	if !reflect.DeepEqual(v.Facets, want) {
		t.Errorf("facets = %q, want %q", v.Facets, want)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListDestinations_RegionIsLocation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM destinations`).
		WithArgs(30).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "slug", "description", "region", "image",
		}).AddRow("9", "Goa", "goa", "Beaches", "West India", "goa.jpg"))

	items, err := repo.ListDestinations(context.Background(), 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Location != "West India" || items[0].Kind != domcat.KindDestination {
		t.Errorf("unexpected destinations %+v", items)
	}
}

func TestList_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM activities`).WillReturnError(sql.ErrConnDone)

	_, err := repo.ListActivities(context.Background(), 10)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpQuery {
		t.Fatalf("expected query db.Error, got %v", err)
	}
	if !errors.Is(err, sql.ErrConnDone) {
		t.Errorf("expected wrapped ErrConnDone, got %v", err)
	}
}

func TestList_RowError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM destinations`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "description", "region", "image"}).
			AddRow("1", "Goa", "goa", "", "", "").
			RowError(0, errors.New("broken row")))

	if _, err := repo.ListDestinations(context.Background(), 10); err == nil {
		t.Fatal("expected error")
	}
}

func TestList_InvalidLimit(t *testing.T) {
	repo, _ := newMockRepo(t)
	if _, err := repo.ListVenues(context.Background(), 0); err == nil {
		t.Fatal("expected error for zero limit")
	}
}
