package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const DefaultFeedTimeout = 20 * time.Second

// FeedReader turns an RSS or Atom feed into benchmark URLs.
type FeedReader struct {
	parser *gofeed.Parser
	log    *slog.Logger
}

func NewFeedReader(timeout time.Duration, userAgent string, log *slog.Logger) *FeedReader {
	if timeout <= 0 {
		timeout = DefaultFeedTimeout
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	if userAgent != "" {
		parser.UserAgent = userAgent
	}

	return &FeedReader{
		parser: parser,
		log:    log,
	}
}

// URLs returns up to limit item links from feedURL, newest first as the
// feed orders them. limit <= 0 means no limit.
func (r *FeedReader) URLs(ctx context.Context, feedURL string, limit int) ([]string, error) {
	feedURL = strings.TrimSpace(feedURL)

	parsed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed (URL = %s): %w", feedURL, err)
	}

	seen := make(map[string]struct{}, len(parsed.Items))
	var urls []string

	for _, item := range parsed.Items {
		if item == nil {
			continue
		}

		link := strings.TrimSpace(item.Link)
		if link == "" && strings.HasPrefix(item.GUID, "http") {
			link = strings.TrimSpace(item.GUID)
		}

		if link == "" {
			r.log.WarnContext(ctx, "Feed item has no link",
				"feedURL", feedURL,
				"title", item.Title)
			continue
		}

		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}

		urls = append(urls, link)
		if limit > 0 && len(urls) == limit {
			break
		}
	}

	r.log.InfoContext(ctx, "Feed is parsed",
		"feedURL", feedURL,
		"title", parsed.Title,
		"items", len(parsed.Items),
		"urls", len(urls))

	return urls, nil
}
