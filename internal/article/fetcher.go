package article

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"articlebench/internal/ratelimiter"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

	DefaultFetchTimeout = 10 * time.Second

	maxBodyBytes = 8 << 20
)

// Fetcher retrieves the raw HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// FetchError reports a transport or HTTP failure while retrieving a page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status: %d", e.URL, e.StatusCode)
	}

	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	limiter   *ratelimiter.RateLimiter
	log       *slog.Logger
}

// NewHTTPFetcher builds a fetcher. A nil limiter disables per-host pacing.
func NewHTTPFetcher(
	timeout time.Duration,
	userAgent string,
	limiter *ratelimiter.RateLimiter,
	log *slog.Logger,
) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		limiter:   limiter,
		log:       log,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	pageURL = strings.TrimSpace(pageURL)

	u, err := url.Parse(pageURL)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("parse URL: %w", err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}

	if err = f.limiter.Wait(ctx, u.Host); err != nil {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("wait for host slot: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req) //nolint:gosec // URL is provided by the operator
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("do request: %w", err)}
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", pageURL,
				"operation", "Fetch")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Err:        errors.New(resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("read body: %w", err)}
	}

	return string(body), nil
}
