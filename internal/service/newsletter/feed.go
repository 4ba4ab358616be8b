// internal/service/newsletter/feed.go
package newsletter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	maxFeedItems  = 5
	maxFeedBytes  = 2 << 20
	feedUserAgent = "nichifier-service"
	unknownSource = "Unknown"
)

// Accepted published_at layouts. Anything else falls back to the fetch time.
var publishedLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FeedItem is one entry of a JSON news feed.
type FeedItem struct {
	Title       string
	URL         string
	Summary     string
	Source      string
	PublishedAt time.Time
}

// rawFeedItem keeps published_at as text so one odd date cannot fail the whole feed.
type rawFeedItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Summary     string `json:"summary"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
}

type FeedFetcher struct {
	client *http.Client
	now    func() time.Time
	logger *zap.Logger
}

func NewFeedFetcher(timeout time.Duration, logger *zap.Logger) *FeedFetcher {
	return &FeedFetcher{
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
		logger: logger,
	}
}

// FetchNewsFeed returns up to five items from url. Any failure is logged and yields an
// empty list.
func (f *FeedFetcher) FetchNewsFeed(ctx context.Context, url string) []FeedItem {
	items, err := f.fetch(ctx, url)
	if err != nil {
		f.logger.Warn("failed to fetch news feed", zap.String("url", url), zap.Error(err))
		return []FeedItem{}
	}
	return items
}

func (f *FeedFetcher) fetch(ctx context.Context, url string) ([]FeedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", feedUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var raw []rawFeedItem
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFeedBytes)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	if len(raw) > maxFeedItems {
		raw = raw[:maxFeedItems]
	}
	fetchedAt := f.now().UTC()
	items := make([]FeedItem, 0, len(raw))
	for _, r := range raw {
		item := FeedItem{
			Title:       strings.TrimSpace(r.Title),
			URL:         strings.TrimSpace(r.URL),
			Summary:     strings.TrimSpace(r.Summary),
			Source:      strings.TrimSpace(r.Source),
			PublishedAt: parsePublished(r.PublishedAt, fetchedAt),
		}
		if item.Title == "" {
			item.Title = "Untitled"
		}
		if item.Source == "" {
			item.Source = unknownSource
		}
		items = append(items, item)
	}
	return items, nil
}

func parsePublished(raw string, fallback time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return fallback
}
