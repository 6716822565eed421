package sources_test

import (
	"articlebench/internal/sources"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	return path
}

func TestParseListMergesValueAndFile(t *testing.T) {
	path := writeFile(t, "models.txt", "# local models\nqwen3:1.7b\n\n  llama3:8b  \n#gemma\n")

	got, err := sources.ParseList("phi3, ,mistral", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"phi3", "mistral", "qwen3:1.7b", "llama3:8b"}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected list: got %v want %v", got, want)
	}
}

func TestParseListMissingFile(t *testing.T) {
	if _, err := sources.ParseList("", filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestExtractURLs(t *testing.T) {
	got, err := sources.ExtractURLs([]string{
		"https://example.com/a",
		"see http://example.org/b?x=1 for details",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"https://example.com/a", "http://example.org/b?x=1"}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected urls: got %v want %v", got, want)
	}

	got, err = sources.ExtractURLs([]string{"not a url", "https://example.com/c"})
	if err == nil {
		t.Fatalf("expected error for entry without URL")
	}

	if !slices.Equal(got, []string{"https://example.com/c"}) {
		t.Fatalf("expected valid URLs to survive, got %v", got)
	}
}

func TestFilterGenerativeModels(t *testing.T) {
	kept, dropped := sources.FilterGenerativeModels([]string{"llama3:8b", "nomic-embedding:latest", "Qwen3-Embedding:0.6b"})

	if !slices.Equal(kept, []string{"llama3:8b"}) {
		t.Fatalf("unexpected kept models: %v", kept)
	}

	if len(dropped) != 2 {
		t.Fatalf("unexpected dropped models: %v", dropped)
	}
}

const rssFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>News</title>
<item><title>One</title><link>https://example.com/1</link></item>
<item><title>Dup</title><link>https://example.com/1</link></item>
<item><title>Two</title><guid>https://example.com/2</guid></item>
<item><title>Three</title><link>https://example.com/3</link></item>
</channel></rss>`

func TestFeedReaderURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFeed))
	}))
	defer srv.Close()

	r := sources.NewFeedReader(time.Second, "", slog.Default())

	got, err := r.URLs(context.Background(), srv.URL, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"https://example.com/1", "https://example.com/2"}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected urls: got %v want %v", got, want)
	}
}

func TestLoadPlan(t *testing.T) {
	path := writeFile(t, "plan.yaml", `models:
  - qwen3:1.7b
  - llama3:8b
urls:
  - https://example.com/a
summary_length: 200
repetitions: 2
feed: https://example.com/rss
channel: "@example_news"
feed_limit: 5
schedule: "0 6 * * *"
`)

	plan, err := sources.LoadPlan(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Models) != 2 || plan.URLs[0] != "https://example.com/a" {
		t.Fatalf("unexpected plan lists: %+v", plan)
	}

	if plan.SummaryLength != 200 || plan.Repetitions != 2 || plan.FeedLimit != 5 {
		t.Fatalf("unexpected plan numbers: %+v", plan)
	}

	if plan.Feed != "https://example.com/rss" || plan.Channel != "@example_news" || plan.Schedule != "0 6 * * *" {
		t.Fatalf("unexpected plan feed or schedule: %+v", plan)
	}
}
