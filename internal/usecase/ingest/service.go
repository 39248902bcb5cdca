package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/i18n"
	"amazetimes/internal/observability/metrics"
	"amazetimes/internal/repository"
	"amazetimes/internal/usecase/content"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Item is one entry of a feed. Content is plain text; Image is the feed's own
// image for the entry, if any. PublishedAt is nil when the feed gives no date.
type Item struct {
	Title       string
	URL         string
	Content     string
	Image       string
	PublishedAt *time.Time
}

// FeedFetcher downloads and parses a feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]Item, error)
}

// Page is what could be read from an article's own web page.
type Page struct {
	Text  string
	Image string
}

// PageFetcher reads an article page.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (Page, error)
}

// Translator produces the other language variant of a text.
type Translator interface {
	Name() string
	Translate(ctx context.Context, text string, from, to i18n.Language) (string, error)
}

// SeenSet remembers links handled by earlier runs.
type SeenSet interface {
	IsProcessed(ctx context.Context, url string) (bool, error)
	MarkProcessed(ctx context.Context, url string) error
}

// Writer stores an ingested article.
type Writer interface {
	CreateIngested(ctx context.Context, f content.Fields, sourceURL string) (*entity.Article, error)
}

// Existence reports which links are already stored as an article source.
type Existence interface {
	ExistsBySourceURLBatch(ctx context.Context, urls []string) (map[string]bool, error)
}

// Config tunes a crawl.
type Config struct {
	// Parallelism bounds concurrent item processing per source.
	Parallelism int
	// TranslateParallelism bounds concurrent translator calls across the crawl.
	TranslateParallelism int64
	// Threshold is the feed text length in runes below which the article page is read.
	Threshold int
	// MaxItemsPerSource keeps only the first items of each feed; zero keeps all.
	MaxItemsPerSource int
	// MaxAge ignores entries published longer ago; zero keeps all.
	MaxAge time.Duration
}

// DefaultConfig returns the settings used by the worker.
func DefaultConfig() Config {
	return Config{
		Parallelism:          10,
		TranslateParallelism: 3,
		Threshold:            1500,
		MaxItemsPerSource:    20,
		MaxAge:               72 * time.Hour,
	}
}

// Stats summarises one crawl.
type Stats struct {
	Sources    int
	Items      int64
	Inserted   int64
	Duplicated int64
	Stale      int64
	Failed     int64
	Duration   time.Duration
}

// Service crawls every active feed source. Pages and Seen are optional.
type Service struct {
	Sources    repository.FeedSourceRepository
	Existing   Existence
	Writer     Writer
	Feeds      FeedFetcher
	Pages      PageFetcher
	Translator Translator
	Seen       SeenSet
	Config     Config
	Logger     *slog.Logger
	Now        func() time.Time
}

type counters struct {
	items, inserted, duplicated, stale, failed atomic.Int64
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

// Crawl processes all active sources one after another. A source that cannot
// be fetched is skipped; only cancellation and source listing errors abort the crawl.
func (s *Service) Crawl(ctx context.Context) (*Stats, error) {
	if s.Translator == nil {
		return nil, ErrNoTranslator
	}
	start := time.Now()

	sources, err := s.Sources.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active sources: %w", err)
	}

	cfg := s.Config
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = DefaultConfig().Parallelism
	}
	if cfg.TranslateParallelism <= 0 {
		cfg.TranslateParallelism = DefaultConfig().TranslateParallelism
	}
	translateSem := semaphore.NewWeighted(cfg.TranslateParallelism)

	var c counters
	stats := &Stats{Sources: len(sources)}
	for _, src := range sources {
		if err := s.crawlSource(ctx, cfg, translateSem, src, &c); err != nil {
			fill(stats, &c, start)
			return stats, err
		}
	}
	fill(stats, &c, start)

	s.logger().Info("crawl completed",
		slog.Int("sources", stats.Sources),
		slog.Int64("items", stats.Items),
		slog.Int64("inserted", stats.Inserted),
		slog.Int64("duplicated", stats.Duplicated),
		slog.Int64("stale", stats.Stale),
		slog.Int64("failed", stats.Failed),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

func fill(stats *Stats, c *counters, start time.Time) {
	stats.Items = c.items.Load()
	stats.Inserted = c.inserted.Load()
	stats.Duplicated = c.duplicated.Load()
	stats.Stale = c.stale.Load()
	stats.Failed = c.failed.Load()
	stats.Duration = time.Since(start)
}

func (s *Service) crawlSource(ctx context.Context, cfg Config, sem *semaphore.Weighted, src *entity.FeedSource, c *counters) error {
	log := s.logger().With(slog.String("source", src.Name), slog.String("feed_url", src.URL))
	started := time.Now()

	items, err := s.Feeds.Fetch(ctx, src.URL)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("feed fetch failed", slog.Any("error", err))
		metrics.RecordFeedCrawlError(src.Name, "fetch_failed")
		return nil
	}
	if cfg.MaxItemsPerSource > 0 && len(items) > cfg.MaxItemsPerSource {
		items = items[:cfg.MaxItemsPerSource]
	}
	c.items.Add(int64(len(items)))

	recent := items
	if cfg.MaxAge > 0 {
		cutoff := s.now().Add(-cfg.MaxAge)
		recent = make([]Item, 0, len(items))
		for _, it := range items {
			if it.PublishedAt != nil && it.PublishedAt.Before(cutoff) {
				c.stale.Add(1)
				continue
			}
			recent = append(recent, it)
		}
	}

	fresh, dup := s.dedupe(ctx, log, src, recent)
	c.duplicated.Add(int64(dup))

	before := c.inserted.Load()
	beforeFailed := c.failed.Load()

	from := i18n.ParseOrDefault(src.Language)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallelism)
	for _, it := range fresh {
		g.Go(func() error {
			err := s.ingestItem(gctx, sem, from, it)
			switch {
			case err == nil:
				c.inserted.Add(1)
				return nil
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				c.failed.Add(1)
				log.Warn("feed item skipped", slog.String("url", it.URL), slog.Any("error", err))
				return nil
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.Sources.TouchFetchedAt(context.WithoutCancel(ctx), src.ID, s.now()); err != nil {
		log.Warn("update last fetched time failed", slog.Any("error", err))
	}

	inserted := int(c.inserted.Load() - before)
	failed := int(c.failed.Load() - beforeFailed)
	metrics.RecordIngestedItems(src.Name, inserted, dup, failed)
	metrics.RecordFeedCrawl(src.Name, time.Since(started))
	log.Info("source crawled",
		slog.Int("items", len(items)),
		slog.Int("inserted", inserted),
		slog.Int("duplicated", dup),
		slog.Int("failed", failed))
	return nil
}

// dedupe drops items already stored or seen. A failing lookup is logged and
// treated as "not seen"; the unique slug and source checks still apply on insert.
func (s *Service) dedupe(ctx context.Context, log *slog.Logger, src *entity.FeedSource, items []Item) ([]Item, int) {
	urls := make([]string, 0, len(items))
	for _, it := range items {
		urls = append(urls, it.URL)
	}

	stored := map[string]bool{}
	if s.Existing != nil && len(urls) > 0 {
		m, err := s.Existing.ExistsBySourceURLBatch(ctx, urls)
		if err != nil {
			log.Warn("batch source check failed", slog.Any("error", err))
			metrics.RecordFeedCrawlError(src.Name, "batch_check_failed")
		} else {
			stored = m
		}
	}

	fresh := make([]Item, 0, len(items))
	dup := 0
	batch := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := batch[it.URL]; ok || stored[it.URL] {
			dup++
			continue
		}
		batch[it.URL] = struct{}{}
		if s.Seen != nil && it.URL != "" {
			seen, err := s.Seen.IsProcessed(ctx, it.URL)
			if err != nil {
				log.Warn("seen-set lookup failed", slog.String("url", it.URL), slog.Any("error", err))
			} else if seen {
				dup++
				continue
			}
		}
		fresh = append(fresh, it)
	}
	return fresh, dup
}

func (s *Service) ingestItem(ctx context.Context, sem *semaphore.Weighted, from i18n.Language, it Item) error {
	title := strings.TrimSpace(it.Title)
	if title == "" || it.URL == "" {
		return ErrEmptyItem
	}
	body, image := s.enhance(ctx, it)
	if body == "" {
		body = title
	}

	to := i18n.Tamil
	if from == i18n.Tamil {
		to = i18n.English
	}

	if err := sem.Acquire(ctx, 1); err != nil {
		return err
	}
	otherTitle, err := s.translate(ctx, title, from, to)
	var otherBody string
	if err == nil {
		otherBody, err = s.translate(ctx, body, from, to)
	}
	sem.Release(1)
	if err != nil {
		return err
	}

	f := content.Fields{
		Category: entity.CategoryGeneral,
		Status:   entity.StatusDraft,
	}
	if from == i18n.Tamil {
		f.TitleEN, f.TitleTA = otherTitle, title
		f.ContentEN, f.ContentTA = otherBody, body
	} else {
		f.TitleEN, f.TitleTA = title, otherTitle
		f.ContentEN, f.ContentTA = body, otherBody
	}
	if image != "" && entity.ValidateLinkURL("featured_image", image) == nil {
		f.FeaturedImage = &image
	}

	if _, err := s.Writer.CreateIngested(ctx, f, it.URL); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if s.Seen != nil {
		if err := s.Seen.MarkProcessed(ctx, it.URL); err != nil {
			s.logger().Warn("seen-set update failed", slog.String("url", it.URL), slog.Any("error", err))
		}
	}
	return nil
}

func (s *Service) translate(ctx context.Context, text string, from, to i18n.Language) (string, error) {
	start := time.Now()
	out, err := s.Translator.Translate(ctx, text, from, to)
	metrics.RecordTranslation(s.Translator.Name(), err == nil, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("translate %s to %s: %w", from, to, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		// 空の翻訳は保存しない
		return "", fmt.Errorf("translate %s to %s: empty result", from, to)
	}
	return out, nil
}

// enhance returns the text to store and an image link. The article page is
// read only when the feed text is shorter than the threshold; any page error
// falls back to the feed text.
func (s *Service) enhance(ctx context.Context, it Item) (string, string) {
	text := normalize(it.Content)
	if s.Pages == nil {
		return text, it.Image
	}
	if len([]rune(text)) >= s.Config.Threshold {
		metrics.RecordContentFetchSkipped()
		return text, it.Image
	}

	start := time.Now()
	page, err := s.Pages.FetchPage(ctx, it.URL)
	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		s.logger().Debug("article page unavailable, using feed text",
			slog.String("url", it.URL), slog.Any("error", err))
		return text, it.Image
	}
	metrics.RecordContentFetchSuccess(time.Since(start))

	if pageText := normalize(page.Text); len([]rune(pageText)) > len([]rune(text)) {
		text = pageText
	}
	image := it.Image
	if image == "" {
		image = page.Image
	}
	return text, image
}

// normalize trims every line and drops blank ones, so that paragraphs are
// separated by a single newline.
func normalize(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
