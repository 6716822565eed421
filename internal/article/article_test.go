package article_test

import (
	"articlebench/internal/article"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGoqueryReaderPrefersArticle(t *testing.T) {
	html := `<html><head><title>T</title><script>var x = 1;</script></head>
<body><nav>Menu</nav><article><h1>Budget</h1><p>The council <b>approved</b>
the budget.</p><style>.a{}</style></article><footer>Footer</footer></body></html>`

	text, err := article.NewGoqueryReader().Text(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Budget The council approved the budget."
	if text != want {
		t.Fatalf("unexpected text: got %q want %q", text, want)
	}
}

func TestGoqueryReaderFallsBackToBody(t *testing.T) {
	html := `<html><body><div>First</div><noscript>Enable JS</noscript><p>Second</p></body></html>`

	text, err := article.NewGoqueryReader().Text(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if text != "First Second" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestHTTPFetcherSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<p>hello</p>"))
	}))
	defer srv.Close()

	f := article.NewHTTPFetcher(time.Second, "", nil, slog.Default())

	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if body != "<p>hello</p>" {
		t.Fatalf("unexpected body: %q", body)
	}

	if gotUA != article.DefaultUserAgent {
		t.Fatalf("unexpected user agent: %q", gotUA)
	}
}

func TestHTTPFetcherReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := article.NewHTTPFetcher(time.Second, "", nil, slog.Default())

	_, err := f.Fetch(context.Background(), srv.URL)

	var fetchErr *article.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}

	if fetchErr.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status code: %d", fetchErr.StatusCode)
	}
}

func TestHTTPFetcherRejectsUnsupportedScheme(t *testing.T) {
	f := article.NewHTTPFetcher(time.Second, "", nil, slog.Default())

	_, err := f.Fetch(context.Background(), "ftp://example.com/a")

	var fetchErr *article.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}
