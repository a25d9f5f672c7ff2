package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"HeadlineTrends/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRawRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	articles := []domain.Article{
		{SourceID: "abc-news", SourceName: "ABC News", Title: "First", Content: "one"},
		{SourceName: "Blog", Title: "Second", Content: "two", PublishedAt: "2025-01-02T03:04:05Z"},
	}
	if err := store.PutRaw(ctx, "au", articles); err != nil {
		t.Fatalf("PutRaw: %v", err)
	}

	got, err := store.GetRaw(ctx, "au")
	if err != nil {
		t.Fatalf("GetRaw: %v", err)
	}
	if !reflect.DeepEqual(got, articles) {
		t.Fatalf("GetRaw = %+v, want %+v", got, articles)
	}

	if err := store.PutRaw(ctx, "au", articles[:1]); err != nil {
		t.Fatalf("PutRaw overwrite: %v", err)
	}
	got, err = store.GetRaw(ctx, "au")
	if err != nil || len(got) != 1 {
		t.Fatalf("expected overwrite to one row, got %d rows, %v", len(got), err)
	}
}

func TestCleanedRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	published := time.Date(2025, 4, 28, 1, 0, 0, 0, time.UTC)
	rows := []domain.CleanedArticle{
		{
			Article:    domain.Article{Title: "NASA news", Content: "NASA is planning a new Mars mission.", PublishedAt: "2025-04-28T01:00:00Z"},
			ShortTitle: "NASA news",
			Sentiment:  domain.SentimentNeutral,
			Entities:   []string{"NASA", "Mars"},
			Topic:      "Space",
			Published:  &published,
			DayOfWeek:  "Monday",
			Month:      "April",
			TimeOfDay:  "12AM-3AM",
		},
	}
	if err := store.PutCleaned(ctx, "us", rows); err != nil {
		t.Fatalf("PutCleaned: %v", err)
	}

	got, err := store.GetCleaned(ctx, "us")
	if err != nil {
		t.Fatalf("GetCleaned: %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Fatalf("GetCleaned = %+v\nwant %+v", got, rows)
	}
}

func TestEmptyEntryExists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	if err := store.PutCleaned(ctx, "ca", nil); err != nil {
		t.Fatalf("PutCleaned: %v", err)
	}

	ok, err := store.Exists(ctx, domain.TableCleaned, "ca")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}

	got, err := store.GetCleaned(ctx, "ca")
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("GetCleaned = %#v, %v", got, err)
	}
}

func TestMissingAndClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	if _, err := store.GetCleaned(ctx, "gb"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	for _, cc := range []string{"us", "gb"} {
		if err := store.PutCleaned(ctx, cc, []domain.CleanedArticle{{Article: domain.Article{Title: "t", Content: "c"}, Topic: "x"}}); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.PutRaw(ctx, "us", []domain.Article{{Title: "t"}}); err != nil {
		t.Fatal(err)
	}

	countries, err := store.Countries(ctx, domain.TableCleaned)
	if err != nil || !reflect.DeepEqual(countries, []string{"gb", "us"}) {
		t.Fatalf("Countries = %v, %v", countries, err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, table := range []domain.Table{domain.TableRaw, domain.TableCleaned} {
		left, err := store.Countries(ctx, table)
		if err != nil || len(left) != 0 {
			t.Fatalf("%s after clear = %v, %v", table, left, err)
		}
	}
	if _, err := store.GetRaw(ctx, "us"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}

func TestPlaceholderFormat(t *testing.T) {
	t.Parallel()

	pg := New(nil, DriverPostgres)
	query, _, err := pg.sb.Select("1").From(entriesTable).Where("country = ?", "us").ToSql()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(query, "$1") {
		t.Fatalf("expected dollar placeholders, got %s", query)
	}

	lite := New(nil, DriverSQLite)
	query, _, err = lite.sb.Select("1").From(entriesTable).Where("country = ?", "us").ToSql()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(query, "?") {
		t.Fatalf("expected question placeholders, got %s", query)
	}
}
