package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"articlebench/internal/article"
	"articlebench/internal/classify"
	"articlebench/internal/domain"
)

// restrictedMarker is stored in place of the body of a restricted page so
// later lookups short-circuit without fetching again.
const restrictedMarker = "[articlebench:restricted]\n"

type ContentCache struct {
	store        Store
	fetcher      article.Fetcher
	reader       article.Reader
	classifier   classify.Classifier
	restrictions *RestrictionLog
	log          *slog.Logger
}

func NewContentCache(
	store Store,
	fetcher article.Fetcher,
	reader article.Reader,
	classifier classify.Classifier,
	restrictions *RestrictionLog,
	log *slog.Logger,
) *ContentCache {
	return &ContentCache{
		store:        store,
		fetcher:      fetcher,
		reader:       reader,
		classifier:   classifier,
		restrictions: restrictions,
		log:          log,
	}
}

// GetOrFetch returns the cached article for pageURL, fetching and storing it
// on a miss. Fetch failures are returned as *article.FetchError and leave the
// cache untouched.
func (c *ContentCache) GetOrFetch(ctx context.Context, pageURL string) (domain.Article, error) {
	key := ContentKey(pageURL)
	path := c.store.Path(key)

	data, ok, err := c.store.Get(key)
	if err != nil {
		return domain.Article{}, fmt.Errorf("get cached article: %w", err)
	}

	if ok {
		body := string(data)
		if body == restrictedMarker {
			return domain.Article{Key: key, Restricted: true, FromCache: true, Path: path}, nil
		}

		c.log.DebugContext(ctx, "Using cached content",
			"url", pageURL,
			"path", path)

		return domain.Article{Key: key, Text: body, FromCache: true, Path: path}, nil
	}

	rawHTML, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return domain.Article{}, err
	}

	text, err := c.reader.Text(rawHTML)
	if err != nil {
		return domain.Article{}, fmt.Errorf("extract text: %w", err)
	}

	switch c.classifier.Classify(rawHTML, text) {
	case classify.Restricted:
		return c.storeRestricted(ctx, pageURL, key, path)
	case classify.Unknown:
		c.log.WarnContext(ctx, "Content matches a restriction signature but looks readable",
			"url", pageURL,
			"textLen", len(text))
	case classify.OK:
	}

	if err = c.store.Put(key, []byte(text)); err != nil {
		return domain.Article{}, fmt.Errorf("put cached article: %w", err)
	}

	return domain.Article{Key: key, Text: text, Path: path}, nil
}

// Path is the location of the cached article for pageURL.
func (c *ContentCache) Path(pageURL string) string {
	return c.store.Path(ContentKey(pageURL))
}

func (c *ContentCache) storeRestricted(
	ctx context.Context,
	pageURL string,
	key string,
	path string,
) (domain.Article, error) {
	added, err := c.restrictions.Record(pageURL)
	if err != nil {
		return domain.Article{}, fmt.Errorf("record restriction: %w", err)
	}

	if added {
		c.log.WarnContext(ctx, "Page requires JavaScript or cookies",
			"url", strings.TrimSpace(pageURL),
			"restrictionLog", c.restrictions.Path())
	}

	if err = c.store.Put(key, []byte(restrictedMarker)); err != nil {
		return domain.Article{}, fmt.Errorf("put restriction marker: %w", err)
	}

	return domain.Article{Key: key, Restricted: true, Path: path}, nil
}
