package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"HeadlineTrends/internal/config"
	"HeadlineTrends/internal/domain"
	"HeadlineTrends/internal/features"
	"HeadlineTrends/internal/logging"
)

// fakeUpstream serves the headline, sentiment, entity and topic endpoints.
func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/top-headlines", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("country") != "us" {
			t.Errorf("unexpected country %q", r.URL.Query().Get("country"))
		}
		_, _ = w.Write([]byte(`{"status":"ok","totalResults":1,"articles":[{
			"source":{"id":"space-news","name":"Space News"},
			"author":"Jane Doe",
			"title":"NASA announces new Mars mission",
			"description":"Agency plans",
			"url":"https://example.com/nasa",
			"urlToImage":null,
			"publishedAt":"2025-04-28T09:15:00Z",
			"content":"NASA is planning a new Mars mission."
		}]}`))
	})
	mux.HandleFunc("/sentiment", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"documents":[{"sentiment":"positive"}]}}`))
	})
	mux.HandleFunc("/entities", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"documents":[{"entities":[{"text":"NASA"},{"text":"Mars"},{"text":"2025"}]}]}}`))
	})
	mux.HandleFunc("/topic", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"Space Exploration"`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testConfig(upstream string, backend string, dir string) config.Config {
	return config.Config{
		NewsAPI: config.NewsAPIConfig{
			BaseURL:  upstream,
			APIKey:   "news-key",
			PageSize: config.MaxPageSize,
			Language: "en",
			Timeout:  5 * time.Second,
		},
		Enrichment: config.EnrichmentConfig{
			SentimentURL: upstream + "/sentiment",
			EntitiesURL:  upstream + "/entities",
			TopicURL:     upstream + "/topic",
			Timeout:      5 * time.Second,
			Temperature:  0.3,
			Workers:      1,
		},
		Cache:     config.CacheConfig{Backend: backend, Dir: dir},
		Countries: []string{"us"},
	}
}

func TestEndToEnd(t *testing.T) {
	t.Parallel()

	for _, backend := range []string{config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			upstream := fakeUpstream(t)
			dir := t.TempDir()

			application, err := New(ctx, testConfig(upstream.URL, backend, dir), logging.Discard())
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			t.Cleanup(func() { _ = application.Close() })

			rows, err := application.Pipeline().Headlines(ctx, application.Session(), "us")
			if err != nil {
				t.Fatalf("Headlines: %v", err)
			}
			if len(rows) != 1 {
				t.Fatalf("expected 1 row, got %d", len(rows))
			}

			row := rows[0]
			if len(row.Entities) == 0 {
				t.Fatal("expected entities")
			}
			for _, e := range row.Entities {
				if features.IsNumeric(e) {
					t.Fatalf("numeric entity %q kept", e)
				}
			}
			switch row.Sentiment {
			case domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative, "":
			default:
				t.Fatalf("unexpected sentiment %q", row.Sentiment)
			}
			if row.Topic != "Space Exploration" {
				t.Fatalf("topic = %q", row.Topic)
			}
			if row.SourceID != "space-news" || row.TimeOfDay != "9AM-12PM" {
				t.Fatalf("unexpected row %+v", row)
			}

			again, err := application.Pipeline().Cleaned(ctx, "us")
			if err != nil {
				t.Fatalf("Cleaned: %v", err)
			}
			if len(again) != 1 || again[0].Topic != row.Topic {
				t.Fatalf("cached rows = %+v", again)
			}
		})
	}
}

func TestEndToEndFileIsStable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	upstream := fakeUpstream(t)
	dir := t.TempDir()

	application, err := New(ctx, testConfig(upstream.URL, config.BackendFile, dir), logging.Discard())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := application.Pipeline().Headlines(ctx, application.Session(), "us"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "cleaned_headlines_us.csv")
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := application.Pipeline().Transform(ctx, "us"); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("cleaned file changed:\n%s\n---\n%s", first, second)
	}
}

func TestUnknownBackend(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), config.Config{Cache: config.CacheConfig{Backend: "redis"}}, logging.Discard())
	if !errors.Is(err, config.ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}
