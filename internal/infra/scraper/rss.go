// Package scraper downloads RSS and Atom feeds with gofeed and turns their
// entries into plain-text ingestion items.
package scraper

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"amazetimes/internal/resilience/circuitbreaker"
	"amazetimes/internal/resilience/retry"
	"amazetimes/internal/usecase/ingest"

	"github.com/mmcdole/gofeed"
)

// UserAgent identifies the crawler to feed hosts.
const UserAgent = "AmazeTimesBot/1.0 (+https://amazetimes.in)"

// MaxFeedSize bounds a feed download.
const MaxFeedSize = 5 << 20

// RSSFetcher implements ingest.FeedFetcher. Downloads go through a circuit
// breaker and transient failures are retried.
type RSSFetcher struct {
	client  *http.Client
	breaker *circuitbreaker.Breaker
	retry   retry.Config
	logger  *slog.Logger
}

var _ ingest.FeedFetcher = (*RSSFetcher)(nil)

// NewHTTPClient returns the pooled TLS 1.2+ client used for feed downloads.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
	}
}

// NewRSSFetcher returns a fetcher using client.
func NewRSSFetcher(client *http.Client, logger *slog.Logger) *RSSFetcher {
	if client == nil {
		client = NewHTTPClient(30 * time.Second)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RSSFetcher{
		client:  client,
		breaker: circuitbreaker.New(circuitbreaker.FeedConfig(), logger),
		retry:   retry.FeedConfig(),
		logger:  logger,
	}
}

// WithRetry replaces the backoff schedule.
func (f *RSSFetcher) WithRetry(cfg retry.Config) *RSSFetcher {
	f.retry = cfg
	return f
}

// Fetch downloads and parses feedURL.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) ([]ingest.Item, error) {
	var feed *gofeed.Feed
	err := retry.Do(ctx, f.retry, func(ctx context.Context) error {
		var err error
		feed, err = circuitbreaker.Do(f.breaker, func() (*gofeed.Feed, error) {
			return f.download(ctx, feedURL)
		})
		if circuitbreaker.IsOpenError(err) {
			f.logger.Warn("feed circuit open, request rejected", slog.String("url", feedURL))
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}
	return toItems(feed), nil
}

func (f *RSSFetcher) download(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.StatusError{Code: resp.StatusCode, URL: feedURL}
	}

	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, MaxFeedSize))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

func toItems(feed *gofeed.Feed) []ingest.Item {
	items := make([]ingest.Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		// content:encoded を優先し、なければ description
		body := it.Content
		if strings.TrimSpace(body) == "" {
			body = it.Description
		}

		item := ingest.Item{
			Title:   PlainText(it.Title),
			URL:     strings.TrimSpace(it.Link),
			Content: PlainText(body),
			Image:   imageOf(it),
		}
		switch {
		case it.PublishedParsed != nil:
			t := it.PublishedParsed.UTC()
			item.PublishedAt = &t
		case it.UpdatedParsed != nil:
			t := it.UpdatedParsed.UTC()
			item.PublishedAt = &t
		}
		items = append(items, item)
	}
	return items
}

func imageOf(it *gofeed.Item) string {
	if it.Image != nil && it.Image.URL != "" {
		return it.Image.URL
	}
	for _, e := range it.Enclosures {
		if e != nil && strings.HasPrefix(e.Type, "image/") && e.URL != "" {
			return e.URL
		}
	}
	return ""
}
