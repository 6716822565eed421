package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"mvdan.cc/xurls/v2"
)

const (
	telegramHost           = "t.me"
	DefaultChannelTimeout  = 20 * time.Second
	minPartsForPreviewPath = 2
)

var (
	channelSlugRe   = regexp.MustCompile(`^\w{5,32}$`)
	channelAtSignRe = regexp.MustCompile(`^@(\w{5,32})$`)
)

// ChannelReader collects article links posted in a public Telegram channel,
// read from its t.me/s web preview.
type ChannelReader struct {
	client    *http.Client
	userAgent string
	baseURL   string
	log       *slog.Logger
}

func NewChannelReader(timeout time.Duration, userAgent string, log *slog.Logger) *ChannelReader {
	if timeout <= 0 {
		timeout = DefaultChannelTimeout
	}

	return &ChannelReader{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		baseURL:   "https://" + telegramHost,
		log:       log,
	}
}

// ChannelSlug accepts "@slug", "slug", "t.me/slug" or "t.me/s/slug".
func ChannelSlug(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)

	if m := channelAtSignRe.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}

	if channelSlugRe.MatchString(raw) {
		return raw, true
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host != telegramHost {
		return "", false
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")

	slug := parts[0]
	if slug == "s" {
		if len(parts) < minPartsForPreviewPath {
			return "", false
		}
		slug = parts[1]
	}

	if !channelSlugRe.MatchString(slug) {
		return "", false
	}

	return slug, true
}

// URLs returns up to limit external links from the newest channel posts
// first. Links back to Telegram are skipped. limit <= 0 means no limit.
func (r *ChannelReader) URLs(ctx context.Context, channel string, limit int) ([]string, error) {
	slug, ok := ChannelSlug(channel)
	if !ok {
		return nil, fmt.Errorf("invalid channel %q", channel)
	}

	doc, err := r.fetchPreview(ctx, slug)
	if err != nil {
		return nil, err
	}

	linkRe, err := xurls.StrictMatchingScheme("https?://")
	if err != nil {
		return nil, fmt.Errorf("create regexp: %w", err)
	}

	var posts [][]string
	doc.Find(".tgme_widget_message").Each(func(_ int, msg *goquery.Selection) {
		var links []string

		msg.Find(".tgme_widget_message_text a[href]").Each(func(_ int, a *goquery.Selection) {
			links = append(links, a.AttrOr("href", ""))
		})
		links = append(links, linkRe.FindAllString(msg.Find(".tgme_widget_message_text").Text(), -1)...)

		posts = append(posts, links)
	})

	seen := make(map[string]struct{})
	var urls []string

	// The preview lists posts oldest first.
	for i := len(posts) - 1; i >= 0; i-- {
		for _, link := range posts[i] {
			link = strings.TrimSpace(link)
			if !isExternalLink(link) {
				continue
			}

			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}

			urls = append(urls, link)
			if limit > 0 && len(urls) == limit {
				return urls, nil
			}
		}
	}

	r.log.InfoContext(ctx, "Channel is parsed",
		"slug", slug,
		"posts", len(posts),
		"urls", len(urls))

	return urls, nil
}

func (r *ChannelReader) fetchPreview(ctx context.Context, slug string) (*goquery.Document, error) {
	previewURL := fmt.Sprintf("%s/s/%s", r.baseURL, slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, previewURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			r.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"previewURL", previewURL,
				"slug", slug)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("create document from reader: %w", err)
	}

	if doc.Find(".tgme_widget_message").Length() == 0 {
		return nil, errors.New("channel preview has no posts")
	}

	return doc, nil
}

func isExternalLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}

	return u.Host != telegramHost && !strings.HasSuffix(u.Host, ".t.me") && u.Host != "telegram.me"
}
